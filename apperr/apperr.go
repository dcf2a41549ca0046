// Package apperr classifies failures so handlers can map them to HTTP
// responses in one place.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeNotFound     Code = "NOT_FOUND"
	CodeAuth         Code = "INVALID_CREDENTIALS"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeUnavailable  Code = "UNAVAILABLE"
	CodeStore        Code = "STORE_ERROR"
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	// ShowMessage reports whether the error's own message can reach clients.
	ShowMessage bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", ShowMessage: true},
	CodeNotFound:   {HTTPStatus: http.StatusNotFound, PublicMessage: "User not found", ShowMessage: true},
	// 400 and one message for both unknown email and bad password.
	CodeAuth:         {HTTPStatus: http.StatusBadRequest, PublicMessage: "Invalid credentials"},
	CodeUnauthorized: {HTTPStatus: http.StatusUnauthorized, PublicMessage: "Invalid token", ShowMessage: true},
	CodeForbidden:    {HTTPStatus: http.StatusForbidden, PublicMessage: "Token does not match the acting user", ShowMessage: true},
	CodeUnavailable:  {HTTPStatus: http.StatusServiceUnavailable, PublicMessage: "Service unavailable", ShowMessage: true},
	CodeStore:        {HTTPStatus: http.StatusInternalServerError, PublicMessage: "Something went wrong, please try again"},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeStore]
}

type Error struct {
	code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	switch {
	case e.err != nil && e.msg != "":
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	case e.err != nil:
		return e.err.Error()
	default:
		return e.msg
	}
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Code() Code { return e.code }

func (e *Error) Message() string { return e.msg }

// PublicMessage is the text safe to show a client.
func (e *Error) PublicMessage() string {
	meta := MetadataFor(e.code)
	if meta.ShowMessage && e.msg != "" {
		return e.msg
	}
	return meta.PublicMessage
}

func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

func Wrap(code Code, err error, msg string) *Error {
	return &Error{code: code, msg: msg, err: err}
}

func Validation(msg string) *Error { return New(CodeValidation, msg) }

func NotFound(msg string) *Error { return New(CodeNotFound, msg) }

func InvalidCredentials() *Error { return New(CodeAuth, "") }

func Unauthorized(msg string) *Error { return New(CodeUnauthorized, msg) }

func Forbidden(msg string) *Error { return New(CodeForbidden, msg) }

func Unavailable(msg string) *Error { return New(CodeUnavailable, msg) }

func Store(err error, msg string) *Error { return Wrap(CodeStore, err, msg) }

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	var target *Error
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// CodeOf returns CodeStore for any error that was never classified.
func CodeOf(err error) Code {
	if e := As(err); e != nil {
		return e.code
	}
	return CodeStore
}

func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
