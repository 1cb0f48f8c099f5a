package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/bstardust/geometalens/internal/config"
	"github.com/bstardust/geometalens/internal/exiftool"
	"github.com/bstardust/geometalens/internal/fileinfo"
	"github.com/bstardust/geometalens/internal/fshelper"
	"github.com/bstardust/geometalens/internal/logger"
	"github.com/bstardust/geometalens/internal/metadata"
	"github.com/bstardust/geometalens/internal/progress"
	"github.com/bstardust/geometalens/internal/worker"
)

type fileResult struct {
	File     string           `json:"file"`
	Metadata *metadata.Result `json:"metadata"`
}

func newExtractCommand(opts *rootOptions) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "extract [flags] <file | directory | glob>...",
		Short: "Print normalized metadata for local files as JSON",
		Long: `Extract runs exiftool on each file and prints the normalized result.
A single file prints one object; several files print an array of
{"file", "metadata"} entries. Directories are searched recursively for
files with an allowed extension.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Keep stdout clean for the JSON document.
			logger.SetOutput(cmd.ErrOrStderr())
			return runExtract(cmd.Context(), opts.cfg, args, cmd.OutOrStdout(), pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	cmd.Flags().Int("concurrency", 4, "Maximum number of concurrent exiftool processes")

	return cmd
}

func runExtract(ctx context.Context, cfg *config.Config, args []string, out io.Writer, pretty bool) error {
	allow := fileinfo.NewAllowList(cfg.Upload.AllowedExtensions)
	files, err := fshelper.ExpandPaths(args, allow.Allowed)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files with an allowed extension (%s) found", allow)
	}

	extractor, status := newExtractor(cfg)
	if !status.Ready {
		return status.Err
	}

	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}

	if len(files) == 1 {
		res, err := extractor.Extract(ctx, files[0])
		if err != nil {
			return err
		}
		return enc.Encode(res)
	}

	results, err := extractBatch(ctx, extractor, files, cfg.ExifTool.MaxConcurrent)
	if encErr := enc.Encode(results); encErr != nil {
		return encErr
	}
	return err
}

// extractBatch keeps input order in its output. It returns a setup error if
// the tool became unavailable part way through.
func extractBatch(ctx context.Context, extractor *metadata.Extractor, files []string, concurrency int) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	pool := worker.NewPool(concurrency)
	reporter := progress.New()
	reporter.Start(len(files))

	var (
		mu       sync.Mutex
		setupErr error
	)
	for i, file := range files {
		i, file := i, file
		results[i] = fileResult{File: file}
		err := pool.Submit(ctx, func() {
			res, err := extractor.Extract(ctx, file)
			if err != nil {
				mu.Lock()
				if setupErr == nil && exiftool.IsSetupError(err) {
					setupErr = err
				}
				mu.Unlock()
				res = metadata.Failure(err.Error())
			}
			results[i].Metadata = res
			reporter.Record(file, res.Outcome())
		})
		if err != nil {
			logger.Warn("Batch interrupted: %v", err)
			break
		}
	}
	pool.Wait()
	reporter.Finish()

	for i := range results {
		if results[i].Metadata == nil {
			results[i].Metadata = metadata.Failure("extraction cancelled")
		}
	}
	if setupErr == nil {
		setupErr = ctx.Err()
	}
	return results, setupErr
}
