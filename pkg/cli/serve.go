package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bstardust/geometalens/internal/config"
	"github.com/bstardust/geometalens/internal/logger"
	"github.com/bstardust/geometalens/internal/metadata"
	"github.com/bstardust/geometalens/internal/metrics"
	"github.com/bstardust/geometalens/internal/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP upload service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts.cfg)
		},
	}

	cmd.Flags().String("port", "5000", "Port to listen on")
	cmd.Flags().String("upload-dir", "uploads", "Directory for temporary upload files")
	cmd.Flags().Int("concurrency", 4, "Maximum number of concurrent exiftool processes")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	extractor, status := newExtractor(cfg, metadata.WithObserver(m))
	if !status.Ready {
		return fmt.Errorf("cannot start server: %w", status.Err)
	}

	srv, err := server.New(cfg, extractor, m)
	if err != nil {
		return err
	}
	httpSrv := srv.HTTPServer(net.JoinHostPort("", cfg.Server.Port))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("GeoMetaLens Backend running on port %s", cfg.Server.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
