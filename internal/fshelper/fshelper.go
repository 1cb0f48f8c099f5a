package fshelper

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Filter decides whether a file found inside a directory is kept
type Filter func(path string) bool

// ExpandPaths turns command line arguments into a list of files. Each
// argument may be a file, a directory or a glob pattern. Directories are
// walked recursively and their files pass through keep; files named
// directly are always returned. Duplicates are dropped.
func ExpandPaths(args []string, keep Filter) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, arg := range args {
		// Check if the path is a glob pattern
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			if _, err := os.Stat(arg); err != nil {
				if os.IsNotExist(err) {
					return nil, fmt.Errorf("path does not exist: %s", arg)
				}
				return nil, fmt.Errorf("error accessing path %s: %w", arg, err)
			}
			matches = []string{arg}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("error accessing path %s: %w", match, err)
			}

			if !info.IsDir() {
				add(match)
				continue
			}

			found, err := walkDir(match, keep)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		}
	}

	return files, nil
}

func walkDir(root string, keep Filter) ([]string, error) {
	var files []string
	err := fs.WalkDir(os.DirFS(root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		full := filepath.Join(root, filepath.FromSlash(path))
		if keep == nil || keep(full) {
			files = append(files, full)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
