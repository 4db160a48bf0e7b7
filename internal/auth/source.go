// Package auth resolves the identity of an incoming connection before any
// session exists. Two sources: verified JWT (the normal mode) or a
// generated guest id persisted in a cookie (ad-hoc rooms with no account
// service behind them).
package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/melodiia/voicerelay/internal/domain"
)

type Mode string

const (
	ModeJWT   Mode = "jwt"
	ModeGuest Mode = "guest"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("expired token")
	ErrMissingToken    = errors.New("missing token")
	ErrUnsupportedMode = errors.New("unsupported auth mode")
)

// IdentitySource resolves the already-authenticated identity for a request.
// The relay trusts the result; it never parses credentials past this point.
type IdentitySource interface {
	Identify(c *gin.Context) (domain.Identity, error)
}

func NewSource(mode Mode, secret string) (IdentitySource, error) {
	switch mode {
	case ModeJWT:
		return JWTSource{verifier: NewVerifier(secret)}, nil
	case ModeGuest:
		return GuestSource{}, nil
	default:
		return nil, ErrUnsupportedMode
	}
}

// JWTSource reads the token from the `token` query parameter (how browser
// websocket clients pass it) or an Authorization bearer header.
type JWTSource struct {
	verifier Verifier
}

func (s JWTSource) Identify(c *gin.Context) (domain.Identity, error) {
	token := c.Query("token")
	if token == "" {
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
	}
	if token == "" {
		return "", ErrMissingToken
	}
	return s.verifier.VerifyIdentity(token)
}

// GuestSource hands out a random identity per browser, carried by the
// client-token cookie so reconnects keep the same one.
type GuestSource struct{}

func (GuestSource) Identify(c *gin.Context) (domain.Identity, error) {
	if token := c.GetString("client_token"); token != "" {
		return domain.Identity(token), nil
	}
	return domain.Identity(uuid.NewString()), nil
}
