package gateway

import (
	"context"
	"net/http"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var result domain.AuthResult
	if err := c.writeJSON(ctx, "", http.MethodPost, "/auth/login", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Signup registers a client account and logs it in.
func (c *Client) Signup(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	var result domain.AuthResult
	if err := c.writeJSON(ctx, "", http.MethodPost, "/auth/signup", reg, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ForgotPassword asks the backend to send a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.writeJSON(ctx, "", http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, nil)
}
