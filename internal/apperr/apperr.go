package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable error code surfaced by the marketplace engine. The
// presentation layer translates kinds into user-facing messages; the engine
// never relies on free-text strings as its primary failure signal.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInvalidTier       Kind = "invalid_tier"
	KindTierMismatch      Kind = "tier_mismatch"
	KindForbidden         Kind = "forbidden"
	KindInsufficientStock Kind = "insufficient_stock"
	KindMinimumOrder      Kind = "minimum_order"
	KindImmutableField    Kind = "immutable_field"
	KindIllegalTransition Kind = "illegal_transition"

	// KindInternal marks data-integrity or infrastructure failures that are not
	// recoverable by the caller, such as an unrecognized tier value reaching the
	// role policy.
	KindInternal Kind = "internal"
)

// Error carries a kind plus an operator-facing message and optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from err. Errors produced outside this package are
// reported as KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the HTTP status the handlers respond with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindMinimumOrder:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTier, KindTierMismatch, KindForbidden, KindImmutableField:
		return http.StatusForbidden
	case KindInsufficientStock, KindIllegalTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
