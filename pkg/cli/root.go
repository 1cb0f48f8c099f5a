// pkg/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bstardust/geometalens/internal/config"
	"github.com/bstardust/geometalens/internal/exiftool"
	"github.com/bstardust/geometalens/internal/logger"
	"github.com/bstardust/geometalens/internal/metadata"
)

// flagKeys maps command line flags to configuration keys. Only flags present
// on the running command are bound.
var flagKeys = map[string]string{
	"log-level":   "log_level",
	"log-format":  "log_format",
	"exiftool":    "exiftool.path",
	"timeout":     "exiftool.timeout",
	"concurrency": "exiftool.max_concurrent",
	"port":        "server.port",
	"upload-dir":  "upload.dir",
}

type rootOptions struct {
	configFile string
	v          *viper.Viper
	cfg        *config.Config
}

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interruption signals
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logger.Error("Error executing command: %v", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "geometalens",
		Short: "Extract and normalize photo and PDF metadata with exiftool",
		Long: `GeoMetaLens runs exiftool on images and PDFs and turns its output into a
stable structure: GPS coordinates with map links, camera details, UTC
timestamps, technical parameters and PDF document fields.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "Path to a configuration file (yaml, json or toml)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")
	pf.String("exiftool", "exiftool", "Name or path of the exiftool binary")
	pf.Duration("timeout", 0, "Maximum time a single exiftool run may take")

	// Add commands
	rootCmd.AddCommand(
		newServeCommand(opts),
		newExtractCommand(opts),
		newCheckCommand(opts),
	)
	return rootCmd
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := o.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}

	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormat(cfg.LogFormat)
	o.cfg = cfg
	return nil
}

// newExtractor initializes exiftool and wraps it in an Extractor
func newExtractor(cfg *config.Config, opts ...metadata.Option) (*metadata.Extractor, exiftool.Status) {
	tool := exiftool.New(exiftool.Config{
		Path:    cfg.ExifTool.Path,
		Timeout: cfg.ExifTool.Timeout,
	})
	status := tool.Init()

	opts = append([]metadata.Option{metadata.WithMaxConcurrent(cfg.ExifTool.MaxConcurrent)}, opts...)
	return metadata.NewExtractor(tool, opts...), status
}
