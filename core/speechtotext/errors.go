package speechtotext

import (
	"errors"
	"fmt"
)

// FailureKind enumerates why a capture produced no usable text.
type FailureKind string

const (
	FailureNoSpeech       FailureKind = "no_speech"
	FailureUnintelligible FailureKind = "unintelligible"
	FailureDevice         FailureKind = "device_error"
)

var (
	ErrNoSpeech       = errors.New("no speech detected")
	ErrUnintelligible = errors.New("speech was not intelligible")
	ErrDevice         = errors.New("capture device error")
)

// CaptureError is the only error type returned by capture clients.
type CaptureError struct {
	Kind FailureKind
	Err  error
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind, so errors.Is(err,
// ErrNoSpeech) works regardless of the wrapped cause.
func (e *CaptureError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *CaptureError) sentinel() error {
	switch e.Kind {
	case FailureNoSpeech:
		return ErrNoSpeech
	case FailureUnintelligible:
		return ErrUnintelligible
	default:
		return ErrDevice
	}
}

func NewNoSpeechError(err error) *CaptureError {
	return &CaptureError{Kind: FailureNoSpeech, Err: err}
}

func NewUnintelligibleError(err error) *CaptureError {
	return &CaptureError{Kind: FailureUnintelligible, Err: err}
}

func NewDeviceError(err error) *CaptureError {
	return &CaptureError{Kind: FailureDevice, Err: err}
}

// KindOf classifies err. Errors that did not come from a capture client are
// treated as device errors.
func KindOf(err error) FailureKind {
	var captureErr *CaptureError
	if errors.As(err, &captureErr) {
		switch captureErr.Kind {
		case FailureNoSpeech, FailureUnintelligible:
			return captureErr.Kind
		}
	}
	return FailureDevice
}
