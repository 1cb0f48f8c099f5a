// Package server exposes metadata extraction over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/bstardust/geometalens/internal/config"
	"github.com/bstardust/geometalens/internal/exiftool"
	"github.com/bstardust/geometalens/internal/fileinfo"
	"github.com/bstardust/geometalens/internal/logger"
	"github.com/bstardust/geometalens/internal/metadata"
	"github.com/bstardust/geometalens/internal/metrics"
	"github.com/bstardust/geometalens/internal/staging"
)

// Extractor produces metadata for a file on disk.
type Extractor interface {
	Extract(ctx context.Context, path string) (*metadata.Result, error)
	ToolStatus() exiftool.Status
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	cfg       *config.Config
	extractor Extractor
	staging   *staging.Area
	allow     *fileinfo.AllowList
	maxSize   int64
	metrics   *metrics.Metrics
	router    *mux.Router
	now       func() time.Time
}

// New wires a Server. It creates the upload directory.
func New(cfg *config.Config, extractor Extractor, m *metrics.Metrics) (*Server, error) {
	maxSize, err := cfg.Upload.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}
	area, err := staging.New(cfg.Upload.Dir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.New(nil)
	}

	s := &Server{
		cfg:       cfg,
		extractor: extractor,
		staging:   area,
		allow:     fileinfo.NewAllowList(cfg.Upload.AllowedExtensions),
		maxSize:   maxSize,
		metrics:   m,
		router:    mux.NewRouter(),
		now:       time.Now,
	}
	s.routes()
	logger.Debug("Staging uploads in %s (max %s)", area.Dir(), cfg.Upload.MaxFileSize)
	return s, nil
}

func (s *Server) routes() {
	r := s.router
	r.HandleFunc("/health", s.handleRootHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	api.HandleFunc("/analyze-url", s.handleAnalyzeURL).Methods(http.MethodPost)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleNotFound)
}

// Router returns the route table.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the router wrapped with observation, CORS and panic
// recovery.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedHeaders([]string{"Content-Type", "Accept"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedOrigins(s.cfg.Server.AllowedOrigins),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.WithFields(logrus.Fields{"component": "http"})),
		handlers.PrintRecoveryStack(false),
	)
	return s.observe(cors(recovery(s.router)))
}

// HTTPServer builds an *http.Server listening on the configured port.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
	}
}
