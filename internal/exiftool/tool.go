// Package exiftool runs the external exiftool binary and decodes its JSON
// output into raw records.
package exiftool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bstardust/geometalens/internal/logger"
)

// Args requests JSON output, numeric values and UTF-8 file names. The input
// path is appended as the only positional argument.
var Args = []string{"-json", "-n", "-charset", "filename=utf8"}

// Config holds the settings for a Tool.
type Config struct {
	Path    string
	Timeout time.Duration
}

// Status is the outcome of Init.
type Status struct {
	Ready   bool   `json:"ready"`
	Path    string `json:"path"`
	Version string `json:"version,omitempty"`
	Err     error  `json:"-"`
}

// Output is the decoded result of one invocation.
type Output struct {
	// Records holds zero or one raw records.
	Records []map[string]interface{}
	Stdout  string
	Stderr  string
}

// Tool invokes exiftool. Init must be called before Invoke.
type Tool struct {
	cfg    Config
	once   sync.Once
	status atomic.Pointer[Status]
}

// New creates a Tool. A zero timeout disables the deadline.
func New(cfg Config) *Tool {
	if cfg.Path == "" {
		cfg.Path = "exiftool"
	}
	return &Tool{cfg: cfg}
}

// Init resolves the binary and probes its version. It runs once; later
// calls return the first result.
func (t *Tool) Init() Status {
	t.once.Do(func() {
		st := t.resolve()
		if st.Ready {
			logger.Info("Using exiftool %s at %s", st.Version, st.Path)
		} else {
			logger.Warn("exiftool unavailable: %v", st.Err)
		}
		t.status.Store(&st)
	})
	return t.Status()
}

// Status returns the result of Init without triggering it. Before Init it
// reports a tool that is not ready.
func (t *Tool) Status() Status {
	if st := t.status.Load(); st != nil {
		return *st
	}
	return Status{Path: t.cfg.Path}
}

func (t *Tool) resolve() Status {
	path, err := exec.LookPath(t.cfg.Path)
	if err != nil {
		return Status{
			Path: t.cfg.Path,
			Err:  NewSetupError("ExifTool not found at %s: %v", t.cfg.Path, err),
		}
	}

	st := Status{Ready: true, Path: path}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if out, err := exec.CommandContext(ctx, path, "-ver").Output(); err == nil {
		st.Version = strings.TrimSpace(string(out))
	} else {
		logger.Debug("exiftool version probe failed: %v", err)
	}
	return st
}

// Invoke runs the tool against path and decodes its output.
func (t *Tool) Invoke(ctx context.Context, path string) (*Output, error) {
	st := t.Status()
	if !st.Ready {
		if st.Err != nil {
			return nil, st.Err
		}
		return nil, NewSetupError("Init has not been called")
	}
	if _, err := os.Stat(st.Path); err != nil {
		return nil, NewSetupError("ExifTool not found at %s", st.Path)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, &InputError{Path: path}
	}

	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, Args...), path)
	cmd := exec.CommandContext(ctx, st.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	logger.Debug("exiftool %s finished in %s", path, time.Since(start).Round(time.Millisecond))
	if stderr.Len() > 0 {
		logger.Debug("exiftool stderr for %s: %s", path, strings.TrimSpace(stderr.String()))
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		logger.Warn("exiftool failed on %s: %v", path, err)
		return nil, &ExecError{Stderr: stderr.String(), Err: err}
	}

	out := &Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if strings.TrimSpace(out.Stdout) == "" {
		return nil, ErrNoOutput
	}

	records, err := decode(stdout.Bytes())
	if err != nil {
		logger.Warn("exiftool output for %s is not valid JSON: %v", path, err)
		return nil, &ParseError{Stdout: out.Stdout, Stderr: out.Stderr, Err: err}
	}
	out.Records = records
	return out, nil
}

func decode(data []byte) ([]map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON array")
	}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("record %d is null", i)
		}
	}
	return records, nil
}
