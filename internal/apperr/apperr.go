// Package apperr classifies failures so the API boundary can map them to statuses.
package apperr

import (
	"errors"
	"fmt"
)

// Kinds. Match with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func New(kind error, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Validation(format string, args ...any) error {
	return New(ErrValidation, fmt.Sprintf(format, args...), nil)
}

func Conflict(msg string) error {
	return New(ErrConflict, msg, nil)
}

func NotFound(what string) error {
	return New(ErrNotFound, what+" not found", nil)
}

// Storage wraps a persistence failure with the operation that caused it.
func Storage(op string, err error) error {
	return New(ErrStorage, op, err)
}

func Unauthorized(msg string) error {
	return New(ErrUnauthorized, msg, nil)
}

func Forbidden(msg string) error {
	return New(ErrForbidden, msg, nil)
}

// Message returns the client-facing text of err. Storage failures stay opaque.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrStorage) {
		return "storage failure"
	}
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return err.Error()
}
