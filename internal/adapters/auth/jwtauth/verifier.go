// Package jwtauth verifica access tokens HS256 emitidos por el Identity Provider.
package jwtauth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"claims-review/internal/platform/apperr"
	"claims-review/internal/ports/auth"
)

var (
	ErrTokenEmpty   = apperr.New(apperr.CodeUnauthorized, "token is empty")
	ErrTokenInvalid = apperr.New(apperr.CodeUnauthorized, "invalid token")
	ErrTokenExpired = apperr.New(apperr.CodeUnauthorized, "token expired")
)

type Config struct {
	Secret   string
	Issuer   string // opcional
	Audience string // opcional
	Leeway   time.Duration
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Verifier implementa auth.AuthVerifier.
type Verifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("jwtauth: secret required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}

	return &Verifier{secret: []byte(cfg.Secret), opts: opts}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Identity{}, ErrTokenEmpty
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.Identity{}, apperr.Wrap(apperr.CodeUnauthorized, ErrTokenExpired.Message, err)
		}
		return auth.Identity{}, apperr.Wrap(apperr.CodeUnauthorized, ErrTokenInvalid.Message, err)
	}

	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return auth.Identity{}, apperr.Wrap(apperr.CodeUnauthorized, ErrTokenInvalid.Message, errors.New("missing sub"))
	}
	return auth.Identity{UserID: sub, Email: strings.TrimSpace(claims.Email)}, nil
}
