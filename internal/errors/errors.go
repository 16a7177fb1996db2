package errors

import (
	"errors"
	"fmt"
)

// Basic error check functions from standard library
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// ErrorCode identifies a class of failure. Codes are stable strings so they
// can be matched in logs and tests without depending on message wording.
type ErrorCode string

// Error is the concrete error type every package in this module returns. It
// pairs a code with an optional wrapped cause, a message override and
// arbitrary context data. The zero message falls back to the code's table
// entry.
type Error struct {
	ErrCode ErrorCode
	Message string
	Err     error
	Data    any
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = GetErrorMessage(e.ErrCode)
	}

	switch {
	case e.Data != nil:
		return fmt.Sprintf("%s: %v", msg, e.Data)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	default:
		return msg
	}
}

func (e *Error) Code() ErrorCode {
	return e.ErrCode
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error carrying just a code.
func New(code ErrorCode) *Error {
	return &Error{ErrCode: code}
}

// Wrap creates an error carrying a code and its underlying cause.
func Wrap(code ErrorCode, err error) *Error {
	return &Error{ErrCode: code, Err: err}
}

// WithMessage creates an error whose message replaces the code's table entry.
func WithMessage(code ErrorCode, msg string) *Error {
	return &Error{ErrCode: code, Message: msg}
}

// WithData creates an error carrying structured context data.
func WithData(code ErrorCode, data any) *Error {
	return &Error{ErrCode: code, Data: data}
}

// IsCode reports whether err (or anything it wraps) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var domainErr *Error
		if !As(err, &domainErr) {
			return false
		}
		if domainErr.ErrCode == code {
			return true
		}
		err = domainErr.Err
	}

	return false
}
