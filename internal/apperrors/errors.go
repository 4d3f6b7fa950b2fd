// Package apperrors carries the request-scoped failure taxonomy shared by
// services, guards and handlers. Each Code maps to one HTTP status.
package apperrors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeConflict        Code = "CONFLICT"
	CodePaymentRequired Code = "PAYMENT_REQUIRED"
	CodePaymentProvider Code = "PAYMENT_PROVIDER_ERROR"
	CodeRateLimit       Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal        Code = "INTERNAL_ERROR"
)

type metadata struct {
	status        int
	publicMessage string
}

var metadataByCode = map[Code]metadata{
	CodeUnauthenticated: {http.StatusUnauthorized, "authentication required"},
	CodeForbidden:       {http.StatusForbidden, "access denied"},
	CodeNotFound:        {http.StatusNotFound, "resource not found"},
	CodeValidation:      {http.StatusBadRequest, "validation failed"},
	CodeConflict:        {http.StatusConflict, "conflict detected"},
	CodePaymentRequired: {http.StatusPaymentRequired, "payment not captured"},
	CodePaymentProvider: {http.StatusBadGateway, "payment provider unavailable"},
	CodeRateLimit:       {http.StatusTooManyRequests, "rate limit exceeded"},
	CodeInternal:        {http.StatusInternalServerError, "internal server error"},
}

// Status returns the HTTP status for code; unknown codes are internal errors.
func Status(code Code) int {
	if meta, ok := metadataByCode[code]; ok {
		return meta.status
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text safe to show a client when the error message must stay internal.
func PublicMessage(code Code) string {
	if meta, ok := metadataByCode[code]; ok {
		return meta.publicMessage
	}
	return metadataByCode[CodeInternal].publicMessage
}

type Error struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts the first *Error in err's chain.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf reports the code of err, treating untyped errors as internal.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
