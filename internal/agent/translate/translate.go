// Package translate defines the translation capability consumed by the
// pipeline and its failure taxonomy. The capability is a black box: the
// orchestrator only ever sees a classified Error, never a raw transport
// failure.
package translate

import (
	"context"
	"errors"
	"fmt"
)

// Request is one chunk-sized translation call. Context optionally carries
// the tail of the preceding chunk for terminology consistency; SourceLang is
// a detected-language hint ("urdu", "hindi", ...).
type Request struct {
	Text       string
	Context    string
	SourceLang string
}

// Capability translates one chunk of text to English.
type Capability interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// ErrorKind classifies capability failures.
type ErrorKind int

const (
	KindUnavailable ErrorKind = iota
	KindTimeout
	KindQuota
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindQuota:
		return "quota"
	case KindMalformed:
		return "malformed"
	default:
		return "unavailable"
	}
}

// Error wraps a capability failure with its classification.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("translation %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified capability error.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the classification from err, defaulting to unavailable.
func KindOf(err error) ErrorKind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnavailable
}
