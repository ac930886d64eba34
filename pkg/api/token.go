package api

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned before any request is sent when no usable access
// token is available.
var ErrNoSession = errors.New("no active session")

// TokenSource yields the bearer token for the next request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken serves a fixed access token, typically from config. If the
// token is a JWT with an exp claim it stops serving it once expired. The
// signature is not checked; that is the server's job.
type StaticToken struct {
	raw string
	exp time.Time
	now func() time.Time
}

func NewStaticToken(raw string) *StaticToken {
	t := &StaticToken{raw: raw, now: time.Now}
	if raw == "" {
		return t
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err == nil && claims.ExpiresAt != nil {
		t.exp = claims.ExpiresAt.Time
	}
	return t
}

// ExpiresAt is the zero time for opaque tokens and JWTs without exp.
func (t *StaticToken) ExpiresAt() time.Time { return t.exp }

func (t *StaticToken) Token(context.Context) (string, error) {
	if t.raw == "" {
		return "", ErrNoSession
	}
	if !t.exp.IsZero() && !t.now().Before(t.exp) {
		return "", ErrNoSession
	}
	return t.raw, nil
}
