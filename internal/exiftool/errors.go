package exiftool

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is wrapped by every SetupError.
	ErrNotReady = errors.New("exiftool is not ready")
	// ErrNoOutput means the tool exited cleanly but wrote nothing to stdout.
	ErrNoOutput = errors.New("exiftool produced no output")
)

// SetupError reports that the tool binary cannot be used at all.
type SetupError struct {
	Message string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("ExifTool setup error: %s", e.Message)
}

func (e *SetupError) Unwrap() error {
	return ErrNotReady
}

// InputError reports a missing or unreadable input file.
type InputError struct {
	Path string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("Input file not found: %s", e.Path)
}

// ExecError reports a spawn failure, a non-zero exit or a timeout.
type ExecError struct {
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("exiftool execution failed: %v", e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ParseError reports stdout that is not a JSON array of records.
type ParseError struct {
	Stdout string
	Stderr string
	Err    error
}

func (e *ParseError) Error() string {
	return "Failed to parse exiftool JSON output"
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewSetupError builds a SetupError from a format string.
func NewSetupError(format string, args ...interface{}) error {
	return &SetupError{Message: fmt.Sprintf(format, args...)}
}

// IsSetupError reports whether err means the tool is unavailable.
func IsSetupError(err error) bool {
	return errors.Is(err, ErrNotReady)
}
