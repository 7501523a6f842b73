// Package apperror defines the error taxonomy shared by services and HTTP
// handlers. Services return *Error values; handlers render them with the
// status code and public message attached to their Code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeConflict           Code = "CONFLICT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// Metadata describes how a code is presented to API clients.
type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	// DetailsAllowed reports whether the error's own message may be shown.
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	// Uniqueness conflicts are reported as 400, like the rest of the
	// client input errors.
	CodeConflict: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "resource already exists",
		DetailsAllowed: true,
	},
	CodeNotFound: {
		HTTPStatus:     http.StatusNotFound,
		PublicMessage:  "resource not found",
		DetailsAllowed: true,
	},
	CodeInvalidCredentials: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "invalid email or password",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:     http.StatusUnauthorized,
		PublicMessage:  "authentication required",
		DetailsAllowed: true,
	},
	CodeRateLimited: {
		HTTPStatus:     http.StatusTooManyRequests,
		PublicMessage:  "too many requests, please try again later",
		DetailsAllowed: true,
	},
	CodeInternal: {
		HTTPStatus:     http.StatusInternalServerError,
		PublicMessage:  "internal server error",
		DetailsAllowed: false,
	},
}

// MetadataFor returns the presentation metadata for code, falling back to
// CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func Validation(message string) *Error { return New(CodeValidation, message) }

func Conflict(message string) *Error { return New(CodeConflict, message) }

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func InvalidCredentials(message string) *Error { return New(CodeInvalidCredentials, message) }

func Unauthorized(message string) *Error { return New(CodeUnauthorized, message) }

func Internal(err error, message string) *Error { return Wrap(CodeInternal, err, message) }

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

func (e *Error) HTTPStatus() int {
	return MetadataFor(e.Code()).HTTPStatus
}

// PublicMessage is the message safe to show to API clients.
func (e *Error) PublicMessage() string {
	meta := MetadataFor(e.Code())
	if meta.DetailsAllowed && e.message != "" {
		return e.message
	}
	return meta.PublicMessage
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

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or CodeInternal when err is not
// an *Error.
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code()
	}
	return CodeInternal
}
