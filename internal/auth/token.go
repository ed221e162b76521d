package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenInspector reads claims from backend-issued JWTs without verifying the
// signature; the backend holds the key and rejects forged tokens itself.
type TokenInspector struct {
	parser *jwt.Parser
	leeway time.Duration
}

// NewTokenInspector builds an inspector treating tokens as expired leeway early.
func NewTokenInspector(leeway time.Duration) *TokenInspector {
	return &TokenInspector{parser: jwt.NewParser(), leeway: leeway}
}

// Claims describes the JWT payload fields the portal cares about.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Inspect decodes the token claims.
func (ti *TokenInspector) Inspect(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := ti.parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Expiry returns when the token stops being accepted. A zero time means the
// token carries no expiry claim.
func (ti *TokenInspector) Expiry(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, errors.New("empty token")
	}
	claims, err := ti.Inspect(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Add(-ti.leeway), nil
}
