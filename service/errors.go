// Package service holds the domain rules for teams, projects, tasks,
// comments, notifications, accounts and email. Handlers call it with an
// already authenticated actor id.
package service

import (
	"errors"
	"fmt"

	"taskhub/store"
)

// Kind classifies a service failure.
type Kind int

const (
	KindUnavailable Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindBadRequest
	KindValidation
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad_request"
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unavailable"
	}
}

// Error is a classified failure with a message safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func notFound(what string) *Error { return newErr(KindNotFound, what+" not found") }
func forbidden(msg string) *Error { return newErr(KindForbidden, msg) }
func conflict(msg string) *Error { return newErr(KindConflict, msg) }
func badRequest(msg string) *Error { return newErr(KindBadRequest, msg) }
func validation(msg string) *Error { return newErr(KindValidation, msg) }
func unauthenticated(msg string) *Error {
	return newErr(KindUnauthenticated, msg)
}

// lookup converts a store error from fetching `what` into a service error.
func lookup(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return &Error{Kind: KindNotFound, Message: what + " not found", Err: err}
	}
	return unavailable(err)
}

func unavailable(err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return &Error{Kind: KindUnavailable, Message: "service unavailable", Err: err}
}

// KindOf classifies any error returned by this package or the store.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, store.ErrNotFound) {
		return KindNotFound
	}
	return KindUnavailable
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	if errors.Is(err, store.ErrNotFound) {
		return "not found"
	}
	return "service unavailable"
}
