package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"claims-review/internal/platform/apperr"
)

func sign(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func validClaims() tokenClaims {
	return tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "2",
			Issuer:    "https://idp.example.com/auth/v1",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "sarah@example.com",
	}
}

func TestVerifier_Valid(t *testing.T) {
	v, err := NewVerifier(Config{Secret: "s3cret", Issuer: "https://idp.example.com/auth/v1", Audience: "authenticated"})
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}

	id, err := v.Verify(context.Background(), sign(t, "s3cret", jwt.SigningMethodHS256, validClaims()))
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if id.UserID != "2" || id.Email != "sarah@example.com" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v, err := NewVerifier(Config{Secret: "s3cret", Audience: "authenticated"})
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongAud := validClaims()
	wrongAud.Audience = jwt.ClaimStrings{"service_role"}

	noSub := validClaims()
	noSub.Subject = ""

	noExp := validClaims()
	noExp.ExpiresAt = nil

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", sign(t, "other", jwt.SigningMethodHS256, validClaims())},
		{"wrong alg", sign(t, "s3cret", jwt.SigningMethodHS512, validClaims())},
		{"expired", sign(t, "s3cret", jwt.SigningMethodHS256, expired)},
		{"wrong audience", sign(t, "s3cret", jwt.SigningMethodHS256, wrongAud)},
		{"missing sub", sign(t, "s3cret", jwt.SigningMethodHS256, noSub)},
		{"missing exp", sign(t, "s3cret", jwt.SigningMethodHS256, noExp)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tc.token)
			if apperr.CodeOf(err) != apperr.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	if _, err := NewVerifier(Config{}); err == nil {
		t.Fatalf("expected error without secret")
	}
}
