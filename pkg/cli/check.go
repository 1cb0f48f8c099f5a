package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bstardust/geometalens/internal/exiftool"
	"github.com/bstardust/geometalens/internal/logger"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that exiftool can be found and report its version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.SetOutput(cmd.ErrOrStderr())
			cfg := opts.cfg
			status := exiftool.New(exiftool.Config{Path: cfg.ExifTool.Path, Timeout: cfg.ExifTool.Timeout}).Init()

			out := cmd.OutOrStdout()
			if !status.Ready {
				fmt.Fprintf(out, "exiftool: not ready\npath: %s\n", status.Path)
				return status.Err
			}
			version := status.Version
			if version == "" {
				version = "unknown"
			}
			fmt.Fprintf(out, "exiftool: ready\npath: %s\nversion: %s\n", status.Path, version)
			return nil
		},
	}
}
