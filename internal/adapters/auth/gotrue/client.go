// Package gotrue implementa el Identity Provider contra una API estilo GoTrue
// (/token, /signup, /logout, /user).
package gotrue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"claims-review/internal/platform/apperr"
	"claims-review/internal/platform/httpclient"
	"claims-review/internal/ports/auth"
)

var (
	ErrNotConfigured = apperr.New(apperr.CodeInternal, "identity provider not configured")
	ErrUpstream      = apperr.New(apperr.CodeInternal, "identity provider error")
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	http *httpclient.Client
	now  func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	hc.Headers["apikey"] = strings.TrimSpace(cfg.APIKey)
	return &Client{http: hc, now: time.Now}, nil
}

type userResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

func (u userResponse) identity() auth.Identity {
	return auth.Identity{UserID: strings.TrimSpace(u.ID), Email: strings.TrimSpace(u.Email)}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return auth.Session{}, auth.ErrInvalidCredentials
	}

	var out tokenResponse
	err := c.http.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/token",
		Query:  url.Values{"grant_type": {"password"}},
		In:     map[string]string{"email": email, "password": password},
		Out:    &out,
	})
	if err != nil {
		switch httpclient.StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return auth.Session{}, auth.ErrInvalidCredentials
		}
		return auth.Session{}, upstream(err)
	}
	if out.AccessToken == "" || out.User.ID == "" {
		return auth.Session{}, apperr.Wrap(apperr.CodeInternal, ErrUpstream.Message, errors.New("token response missing access_token or user"))
	}

	return auth.Session{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    c.expiresAt(out),
		User:         out.User.identity(),
	}, nil
}

func (c *Client) expiresAt(t tokenResponse) time.Time {
	if t.ExpiresAt > 0 {
		return time.Unix(t.ExpiresAt, 0).UTC()
	}
	if t.ExpiresIn > 0 {
		return c.now().Add(time.Duration(t.ExpiresIn) * time.Second).UTC()
	}
	return time.Time{}
}

// SignUp registra el usuario; nombre y rol viajan como user metadata.
// Con auto-confirm la respuesta es una sesión; sin él, el usuario solo.
func (c *Client) SignUp(ctx context.Context, in auth.SignUpInput) (auth.Identity, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return auth.Identity{}, apperr.New(apperr.CodeInvalidInput, "email and password are required")
	}

	var out struct {
		userResponse
		User *userResponse `json:"user"`
	}
	err := c.http.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/signup",
		In: map[string]any{
			"email":    strings.TrimSpace(in.Email),
			"password": in.Password,
			"data": map[string]string{
				"name": strings.TrimSpace(in.Name),
				"role": string(in.Role),
			},
		},
		Out: &out,
	})
	if err != nil {
		switch httpclient.StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return auth.Identity{}, apperr.Wrap(apperr.CodeInvalidInput, messageOr(err, "sign-up rejected"), err)
		case http.StatusConflict:
			return auth.Identity{}, apperr.Wrap(apperr.CodeConflict, "email already registered", err)
		}
		return auth.Identity{}, upstream(err)
	}

	u := out.userResponse
	if out.User != nil {
		u = *out.User
	}
	id := u.identity()
	if id.UserID == "" {
		return auth.Identity{}, apperr.Wrap(apperr.CodeInternal, ErrUpstream.Message, errors.New("sign-up response missing user id"))
	}
	return id, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	err := c.http.DoJSON(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/logout",
		Bearer: strings.TrimSpace(accessToken),
	})
	if err != nil {
		if s := httpclient.StatusOf(err); s == http.StatusUnauthorized || s == http.StatusForbidden {
			return auth.ErrNoSession
		}
		return upstream(err)
	}
	return nil
}

func (c *Client) CurrentSession(ctx context.Context, accessToken string) (auth.Identity, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return auth.Identity{}, auth.ErrNoSession
	}

	var out userResponse
	err := c.http.DoJSON(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/user",
		Bearer: accessToken,
		Out:    &out,
	})
	if err != nil {
		if s := httpclient.StatusOf(err); s == http.StatusUnauthorized || s == http.StatusForbidden {
			return auth.Identity{}, auth.ErrNoSession
		}
		return auth.Identity{}, upstream(err)
	}
	id := out.identity()
	if id.UserID == "" {
		return auth.Identity{}, auth.ErrNoSession
	}
	return id, nil
}

func upstream(err error) error {
	return apperr.Wrap(apperr.CodeInternal, ErrUpstream.Message, fmt.Errorf("gotrue: %w", err))
}

func messageOr(err error, fallback string) string {
	var he *httpclient.HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	return fallback
}
