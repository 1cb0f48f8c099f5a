// internal/progress/reporter.go
package progress

import (
	"sync"
	"time"

	"github.com/bstardust/geometalens/internal/logger"
	"github.com/bstardust/geometalens/internal/metadata"
)

// Summary holds the counters of a batch run
type Summary struct {
	Total      int
	OK         int
	NoMetadata int
	Failed     int
	Elapsed    time.Duration
}

// Processed returns how many files have been handled so far
func (s Summary) Processed() int {
	return s.OK + s.NoMetadata + s.Failed
}

// Reporter tracks and reports batch extraction progress
type Reporter struct {
	mu             sync.Mutex
	summary        Summary
	startTime      time.Time
	lastUpdateTime time.Time
	updateInterval time.Duration
}

// New creates a new progress reporter
func New() *Reporter {
	return &Reporter{
		updateInterval: 2 * time.Second,
	}
}

// Start resets the counters for a batch of total files
func (r *Reporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary = Summary{Total: total}
	r.startTime = time.Now()
	r.lastUpdateTime = r.startTime

	logger.Info("Extracting metadata from %d files", total)
}

// Record counts one finished file by its outcome
func (r *Reporter) Record(path, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch outcome {
	case metadata.OutcomeOK:
		r.summary.OK++
	case metadata.OutcomeNoMetadata:
		r.summary.NoMetadata++
		logger.Debug("No metadata in %s", path)
	default:
		r.summary.Failed++
		logger.Debug("Extraction failed for %s", path)
	}
	r.updateProgress()
}

// Finish logs the final counters and returns them
func (r *Reporter) Finish() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary.Elapsed = time.Since(r.startTime)
	s := r.summary

	logger.Info("Extraction complete: %d/%d files with metadata, %d without, %d failed in %s",
		s.OK, s.Total, s.NoMetadata, s.Failed, s.Elapsed.Round(time.Millisecond))
	return s
}

// updateProgress logs progress at most once per update interval
func (r *Reporter) updateProgress() {
	now := time.Now()
	if now.Sub(r.lastUpdateTime) < r.updateInterval {
		return
	}
	r.lastUpdateTime = now

	s := r.summary
	processed := s.Processed()
	if processed == 0 || s.Total == 0 {
		return
	}

	percentage := float64(processed) / float64(s.Total) * 100
	perFile := now.Sub(r.startTime) / time.Duration(processed)
	eta := (perFile * time.Duration(s.Total-processed)).Round(time.Second)

	logger.Info("Progress: %.1f%% (%d/%d, %d with metadata, %d without, %d failed) ETA: %s",
		percentage, processed, s.Total, s.OK, s.NoMetadata, s.Failed, eta)
}
