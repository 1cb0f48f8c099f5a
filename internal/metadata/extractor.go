package metadata

import (
	"context"
	"time"

	"github.com/bstardust/geometalens/internal/exiftool"
	"github.com/bstardust/geometalens/internal/logger"
	"github.com/bstardust/geometalens/internal/worker"
)

// Invoker runs the extraction tool. *exiftool.Tool implements it.
type Invoker interface {
	Invoke(ctx context.Context, path string) (*exiftool.Output, error)
	Status() exiftool.Status
}

// Observer receives the outcome of every extraction.
type Observer interface {
	ObserveExtraction(outcome string, elapsed time.Duration)
}

// Extractor runs the tool and normalizes its output, with a cap on how many
// tool processes run at once.
type Extractor struct {
	invoker    Invoker
	normalizer *Normalizer
	pool       *worker.Pool
	observer   Observer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxConcurrent caps concurrent tool processes. The default is 4.
func WithMaxConcurrent(n int) Option {
	return func(e *Extractor) {
		e.pool = worker.NewPool(n)
	}
}

// WithObserver reports outcomes to o.
func WithObserver(o Observer) Option {
	return func(e *Extractor) {
		e.observer = o
	}
}

// WithNormalizer replaces the default Normalizer.
func WithNormalizer(n *Normalizer) Option {
	return func(e *Extractor) {
		e.normalizer = n
	}
}

// NewExtractor creates an Extractor around invoker.
func NewExtractor(invoker Invoker, opts ...Option) *Extractor {
	e := &Extractor{
		invoker:    invoker,
		normalizer: NewNormalizer(),
		pool:       worker.NewPool(4),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ToolStatus reports whether the tool is usable.
func (e *Extractor) ToolStatus() exiftool.Status {
	return e.invoker.Status()
}

// Extract returns metadata for the file at path. Every per-file problem is
// reported inside the Result; the error is non-nil only when the tool
// itself is unavailable.
func (e *Extractor) Extract(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	var (
		out *exiftool.Output
		err error
	)
	if perr := e.pool.Do(ctx, func() {
		out, err = e.invoker.Invoke(ctx, path)
	}); perr != nil {
		err = perr
	}

	if exiftool.IsSetupError(err) {
		return nil, err
	}

	var res *Result
	if err != nil {
		logger.Warn("Extraction failed for %s: %v", path, err)
		res = NormalizeError(err)
	} else {
		res = e.normalizer.FromOutput(out, path)
	}

	elapsed := time.Since(start)
	logger.Debug("Extracted %s in %s: %s", path, elapsed.Round(time.Millisecond), res.Outcome())
	if e.observer != nil {
		e.observer.ObserveExtraction(res.Outcome(), elapsed)
	}
	return res, nil
}
