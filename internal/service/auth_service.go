package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/validation"
	"github.com/spec-kit/helpdesk-portal/internal/views"
)

// AuthService coordinates login, signup and logout against the backend and
// the portal session store.
type AuthService struct {
	gateway  AuthGateway
	sessions SessionStore
	views    *views.Registry
	logger   *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	Gateway  AuthGateway
	Sessions SessionStore
	Views    *views.Registry
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		gateway:  deps.Gateway,
		sessions: deps.Sessions,
		views:    deps.Views,
		logger:   logger.Named("auth"),
	}
}

// Login verifies credentials with the backend and opens a session.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	v := validation.Violations{}
	validation.Email("email", creds.Email, v)
	validation.RequireText("password", creds.Password, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	result, err := s.gateway.Login(ctx, creds)
	if err != nil {
		s.logger.Info("login rejected", zap.String("email", creds.Email), zap.Error(err))
		return nil, err
	}
	return s.sessions.Create(ctx, result)
}

// Signup registers a client account and opens a session for it.
func (s *AuthService) Signup(ctx context.Context, reg domain.Registration) (*domain.Session, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Company = strings.TrimSpace(reg.Company)
	if err := validation.Registration(reg).Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reg.Phone) != "" {
		reg.Phone = validation.NormalizePhone(reg.Phone)
	}
	result, err := s.gateway.Signup(ctx, reg)
	if err != nil {
		return nil, err
	}
	return s.sessions.Create(ctx, result)
}

// ForgotPassword asks the backend to send a reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	v := validation.Violations{}
	validation.Email("email", email, v)
	if err := v.Err(); err != nil {
		return err
	}
	return s.gateway.ForgotPassword(ctx, email)
}

// Logout unmounts the session's views and deletes the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if s.views != nil {
		s.views.Unmount(sessionID)
	}
	return s.sessions.Destroy(ctx, sessionID)
}
