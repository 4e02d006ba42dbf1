package diag

import (
	"errors"
	"fmt"
)

// Error is the typed failure returned by classification, assembly, translation,
// deduplication and merging. Code places it in one of the error categories.
type Error struct {
	Code    Code
	Subject string
	Msg     string
}

func (e *Error) Error() string {
	if e.Subject == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Subject, e.Msg)
}

// Errorf builds an *Error with a formatted message and no subject.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// For returns a copy of e bound to subject, unless it already has one.
func (e *Error) For(subject string) *Error {
	if e == nil || e.Subject != "" {
		return e
	}
	cp := *e
	cp.Subject = subject
	return &cp
}

// AsError unwraps err into *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or UnknownCode.
func CodeOf(err error) Code {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return UnknownCode
}

func IsConfiguration(err error) bool { return CodeOf(err).IsConfiguration() }
func IsUnsupported(err error) bool   { return CodeOf(err).IsUnsupported() }
func IsExpression(err error) bool    { return CodeOf(err).IsExpression() }
func IsMismatch(err error) bool      { return CodeOf(err).IsMismatch() }
