package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures and degraded results.
type ErrorKind string

const (
	KindMalformedInput   ErrorKind = "malformed_input"
	KindExtractionEngine ErrorKind = "extraction_engine"
	KindNoHTMLBody       ErrorKind = "no_html_body"
	KindEmptyInput       ErrorKind = "empty_input"
)

var (
	ErrMalformedInput   = errors.New("html cannot be parsed")
	ErrExtractionEngine = errors.New("quotation extraction failed")
	ErrEmptyInput       = errors.New("empty html input")
)

// PipelineError carries the kind of a failure alongside its cause.
type PipelineError struct {
	Kind ErrorKind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps err with a kind and the kind's sentinel.
func NewPipelineError(kind ErrorKind, err error) *PipelineError {
	var sentinel error
	switch kind {
	case KindMalformedInput:
		sentinel = ErrMalformedInput
	case KindExtractionEngine:
		sentinel = ErrExtractionEngine
	case KindEmptyInput:
		sentinel = ErrEmptyInput
	}
	if err == nil {
		err = sentinel
	} else if sentinel != nil && !errors.Is(err, sentinel) {
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	return &PipelineError{Kind: kind, Err: err}
}

// FailedResponse builds the boundary result for a failed invocation.
func FailedResponse(err error, format DetectedFormat) Response {
	resp := Response{Success: false, Error: err.Error()}
	var pe *PipelineError
	if errors.As(err, &pe) {
		resp.ErrorKind = pe.Kind
	}
	resp.FormatDetected = format
	return resp
}
