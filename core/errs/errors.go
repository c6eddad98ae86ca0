package errs

import (
	"errors"
	"fmt"
)

// Kind classifies catalog failures so transports can map them without string matching.
type Kind string

const (
	// KindValidation: schema or uniqueness violation, never persisted
	KindValidation Kind = "validation"

	// KindAuthorization: caller is not the recorded owner
	KindAuthorization Kind = "authorization"

	// KindReference: an unknown or unlisted dApp id was referenced
	KindReference Kind = "reference"

	// KindConflict: stale revision marker, caller should re-read and retry
	KindConflict Kind = "conflict"

	// KindIDExhausted: no collision-free canonical id could be derived
	KindIDExhausted Kind = "id_exhausted"

	// KindUpstream: remote fetch failed or timed out
	KindUpstream Kind = "upstream_unavailable"

	// KindNotFound: resource (dApp, store, section, scroll cursor) does not exist
	KindNotFound Kind = "not_found"

	KindInternal Kind = "internal"
)

// Sentinels usable with errors.Is against any *Error of the same kind.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrAuthorization = &Error{Kind: KindAuthorization}
	ErrReference     = &Error{Kind: KindReference}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrIDExhausted   = &Error{Kind: KindIDExhausted}
	ErrUpstream      = &Error{Kind: KindUpstream}
	ErrNotFound      = &Error{Kind: KindNotFound}
)

// Error is the catalog error type. Op names the operation that failed.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
	// Details carries per-field problems, e.g. schema validation issues.
	Details []string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so wrapped errors compare equal to the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// Retryable reports whether the caller may retry after re-reading state.
func (e *Error) Retryable() bool {
	return e.Kind == KindConflict || e.Kind == KindUpstream
}

// E builds an error of the given kind.
func E(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and op to an underlying error.
func Wrap(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithDetails sets Details and returns e.
func (e *Error) WithDetails(details ...string) *Error {
	e.Details = append(e.Details, details...)
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return false
}
