// Package apperr holds the error kinds shared by the usecases. Handlers map a
// Kind to a response status; nothing here retries.
package apperr

import "errors"

type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindAlreadyValidated
	KindExpired
	KindInvalidState
	KindMissingReason
	KindDelivery
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation error"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	case KindAlreadyValidated:
		return "token already validated"
	case KindExpired:
		return "token expired"
	case KindInvalidState:
		return "invalid state"
	case KindMissingReason:
		return "rejection reason is required"
	case KindDelivery:
		return "notification delivery failed"
	default:
		return "unknown error"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Kind.String() + ": " + e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict) holds
// for every conflict regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrAlreadyValidated = &Error{Kind: KindAlreadyValidated}
	ErrExpired          = &Error{Kind: KindExpired}
	ErrInvalidState     = &Error{Kind: KindInvalidState}
	ErrMissingReason    = &Error{Kind: KindMissingReason}
	ErrDelivery         = &Error{Kind: KindDelivery}
)

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }
func Conflict(msg string) error   { return &Error{Kind: KindConflict, Msg: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Msg: msg} }

func AlreadyValidated() error { return &Error{Kind: KindAlreadyValidated} }
func Expired() error          { return &Error{Kind: KindExpired} }

func InvalidState(msg string) error { return &Error{Kind: KindInvalidState, Msg: msg} }
func MissingReason() error          { return &Error{Kind: KindMissingReason} }

// Delivery wraps a sink failure.
func Delivery(err error) error { return &Error{Kind: KindDelivery, Err: err} }

// KindOf returns the kind carried by err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
