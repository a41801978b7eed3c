// Package domain holds the error taxonomy shared by the pricing engine, the
// booking ledger and the layers that call them.
//
// Every error carries a Kind and the offending field names so the HTTP layer
// can build a user-facing message without parsing strings. Callers test the
// kind with errors.Is against the sentinels below.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	// validation
	KindInvalidPrice        Kind = "invalid_price"
	KindMalformedVariation  Kind = "malformed_variation"
	KindInvalidAvailability Kind = "invalid_availability"
	KindInvalidTicketType   Kind = "invalid_ticket_type"
	KindEmptyBooking        Kind = "empty_booking"
	KindValidation          Kind = "validation"

	// conflict
	KindCapacityExceeded Kind = "capacity_exceeded"
	KindNegativeCapacity Kind = "negative_capacity"

	// state
	KindInvalidTransition Kind = "invalid_transition"
	KindDateOutOfRange    Kind = "date_out_of_range"
	KindTourUnavailable   Kind = "tour_unavailable"

	// integrity
	KindCodeSpaceExhausted Kind = "code_space_exhausted"

	KindNotFound Kind = "not_found"
)

var (
	ErrInvalidPrice        = &Error{Kind: KindInvalidPrice}
	ErrMalformedVariation  = &Error{Kind: KindMalformedVariation}
	ErrInvalidAvailability = &Error{Kind: KindInvalidAvailability}
	ErrInvalidTicketType   = &Error{Kind: KindInvalidTicketType}
	ErrEmptyBooking        = &Error{Kind: KindEmptyBooking}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrCapacityExceeded    = &Error{Kind: KindCapacityExceeded}
	ErrNegativeCapacity    = &Error{Kind: KindNegativeCapacity}
	ErrInvalidTransition   = &Error{Kind: KindInvalidTransition}
	ErrDateOutOfRange      = &Error{Kind: KindDateOutOfRange}
	ErrTourUnavailable     = &Error{Kind: KindTourUnavailable}
	ErrCodeSpaceExhausted  = &Error{Kind: KindCodeSpaceExhausted}
	ErrNotFound            = &Error{Kind: KindNotFound}
)

// Error is a classified failure from the core.
type Error struct {
	Kind    Kind
	Fields  []string
	Message string
}

// New builds an Error of the given kind naming the offending fields.
func New(kind Kind, message string, fields ...string) *Error {
	return &Error{Kind: kind, Fields: fields, Message: message}
}

// Newf is New with a formatted message and no fields.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.ReplaceAll(string(e.Kind), "_", " ")
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s [%s]", e.Kind, msg, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Is matches any *Error with the same Kind, so errors.Is(err, ErrNotFound)
// works regardless of message or fields.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when err
// was not produced by the core.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsConflict reports whether err is a state-dependent capacity conflict that
// a caller may offer to retry.
func IsConflict(err error) bool {
	return errors.Is(err, ErrCapacityExceeded) || errors.Is(err, ErrNegativeCapacity)
}
