// Package staging writes uploaded bytes to uniquely named temporary files
// so the extraction tool can read them from disk.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/bstardust/geometalens/internal/fileinfo"
	"github.com/bstardust/geometalens/internal/logger"
)

// Area is a directory holding staged files.
type Area struct {
	dir string
	now func() time.Time
}

// New creates the directory if needed.
func New(dir string) (*Area, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory %s: %w", dir, err)
	}
	return &Area{dir: dir, now: time.Now}, nil
}

// Dir returns the staging directory.
func (a *Area) Dir() string {
	return a.dir
}

// Name returns a fresh file name of the form
// temp_<unix millis>_<9 random chars><ext>, keeping the extension of
// original.
func (a *Area) Name(original string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	ext := ""
	if e := fileinfo.Ext(original); e != "" {
		ext = "." + e
	}
	return fmt.Sprintf("temp_%d_%s%s", a.now().UnixMilli(), suffix, ext)
}

// Stage writes data to a new file and checks it landed on disk. The
// returned path must be passed to Remove.
func (a *Area) Stage(original string, data []byte) (string, error) {
	path := filepath.Join(a.dir, a.Name(original))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		a.Remove(path)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		a.Remove(path)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("temp file was not created: %w", err)
	}
	if info.Size() != int64(len(data)) {
		a.Remove(path)
		return "", fmt.Errorf("temp file is %d bytes, expected %d", info.Size(), len(data))
	}

	logger.Debug("Staged %s (%s) as %s", original, humanize.Bytes(uint64(len(data))), path)
	return path, nil
}

// Remove deletes a staged file. Failures are logged and otherwise ignored.
func (a *Area) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Debug("Failed to remove temp file %s: %v", path, err)
		return
	}
	logger.Debug("Removed temp file %s", path)
}
