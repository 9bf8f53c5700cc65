package llms

import (
	"context"
	"errors"
	"net"
	"net/url"
)

// FailureKind classifies why a generation did not produce a response.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureNetwork
	FailureQuota
)

func (k FailureKind) String() string {
	switch k {
	case FailureNetwork:
		return "network"
	case FailureQuota:
		return "quota"
	default:
		return "unknown"
	}
}

var (
	ErrNetwork = errors.New("language model unreachable")
	ErrQuota   = errors.New("language model quota exhausted")
	ErrUnknown = errors.New("language model failed")
)

// GenerationError is returned by every Generator implementation.
type GenerationError struct {
	Kind FailureKind
	Err  error
}

func (e *GenerationError) Error() string {
	sentinel := e.sentinel()
	if e.Err == nil {
		return sentinel.Error()
	}
	return sentinel.Error() + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *GenerationError) sentinel() error {
	switch e.Kind {
	case FailureNetwork:
		return ErrNetwork
	case FailureQuota:
		return ErrQuota
	default:
		return ErrUnknown
	}
}

func NewNetworkError(err error) error { return &GenerationError{Kind: FailureNetwork, Err: err} }
func NewQuotaError(err error) error   { return &GenerationError{Kind: FailureQuota, Err: err} }
func NewUnknownError(err error) error { return &GenerationError{Kind: FailureUnknown, Err: err} }

// KindOf reports the failure kind of err. Errors that are not a
// GenerationError are classified as unknown.
func KindOf(err error) FailureKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return FailureUnknown
}

// IsTransportError reports whether err came from the network rather than
// from the provider's answer. Provider packages use it before looking at
// their own API error types.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
