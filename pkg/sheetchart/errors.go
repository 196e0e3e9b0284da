package sheetchart

import (
	"errors"
	"fmt"
)

// ErrDecode indicates an encoded payload is not valid base64 text.
var ErrDecode = errors.New("malformed encoded payload")

// ErrFormat indicates the input bytes are not a usable spreadsheet workbook.
var ErrFormat = errors.New("invalid spreadsheet format")

// ErrSelection indicates an axis selection references a column or chart kind
// that does not exist.
var ErrSelection = errors.New("invalid axis selection")

// ErrStorage indicates the persisted history could not be read or written.
var ErrStorage = errors.New("history storage failure")

// ErrSuperseded is returned by a load that finished after a newer load started.
// Callers should ignore it.
var ErrSuperseded = errors.New("load superseded by a newer one")

// ErrNoData indicates there is nothing to render for the current selection.
var ErrNoData = errors.New("no data for this selection")

// PipelineError represents a failure in one stage of the upload pipeline.
type PipelineError struct {
	Stage string // "decode", "parse", "history", "render"
	Name  string // file name, when known
	Err   error
}

func (e *PipelineError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Stage, e.Name, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(stage, name string, err error) *PipelineError {
	return &PipelineError{
		Stage: stage,
		Name:  name,
		Err:   err,
	}
}

// FormatErrorf returns an error wrapping ErrFormat with additional detail.
func FormatErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

// DecodeErrorf returns an error wrapping ErrDecode with additional detail.
func DecodeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}
