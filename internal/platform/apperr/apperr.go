// Package apperr define el error de dominio con código, compartido por todos los módulos.
package apperr

import (
	"errors"
	"net/http"
)

// Code clasifica un error para decidir cómo se expone (HTTP status, logging).
type Code string

const (
	CodeNotFound         Code = "not_found"
	CodeInvalidInput     Code = "invalid_input"
	CodeInvalidShare     Code = "invalid_share"
	CodeDuplicateShare   Code = "duplicate_share"
	CodeConflict         Code = "conflict"
	CodeForbidden        Code = "forbidden"
	CodeUnauthorized     Code = "unauthorized"
	CodeStoreUnavailable Code = "store_unavailable"
	CodeInternal         Code = "internal"
)

// HTTPStatus mapea el código a un status HTTP.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeInvalidShare:
		return http.StatusBadRequest
	case CodeDuplicateShare, CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// UserFacing indica si el error es un resultado esperado (se muestra al usuario)
// y no una falla del sistema. Estos no se loguean como error.
func (c Code) UserFacing() bool {
	switch c {
	case CodeStoreUnavailable, CodeInternal:
		return false
	default:
		return true
	}
}

// Error es el error de dominio.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is compara por código: errors.Is(err, claims.ErrNotFound) matchea cualquier not_found.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf devuelve el código del primer *Error en la cadena, o CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf devuelve el mensaje pensado para el usuario (sin la causa interna).
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
