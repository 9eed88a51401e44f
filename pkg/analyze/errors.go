package analyze

import (
	"errors"

	"promptchart/pkg/extract"
)

// Terminal error kinds. Use errors.Is against these to classify a failed run.
var (
	ErrInvalidInput      = errors.New("prompt is required")
	ErrNoExtractableData = errors.New("could not extract valid data from the prompt")
	ErrUpstreamFailure   = errors.New("failed to analyze prompt")
)

// ErrMalformedResponse never ends a run on its own. It is recorded on
// Result.Malformed (or wrapped in a NoExtractableData error) when the model
// reply could not be read.
var ErrMalformedResponse = extract.ErrMalformedResponse

// Error is a failed run: Kind is one of the sentinels above and Err, when
// set, is the underlying cause.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Details is the cause's message, suitable for showing to a caller.
func (e *Error) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// KindOf returns the terminal kind of err, or nil when err is not a run error.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
