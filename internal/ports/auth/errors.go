package auth

import "claims-review/internal/platform/apperr"

var (
	ErrNoSession          = apperr.New(apperr.CodeUnauthorized, "no active session")
	ErrInvalidCredentials = apperr.New(apperr.CodeUnauthorized, "invalid email or password")
)
