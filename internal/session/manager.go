package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// Manager owns the session lifecycle on top of a Store.
type Manager struct {
	store  Store
	tokens *auth.TokenInspector
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewManager builds a manager whose sessions live at most ttl.
func NewManager(store Store, tokens *auth.TokenInspector, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{store: store, tokens: tokens, ttl: ttl, logger: logger, now: time.Now}
}

// Create stores a session for a successful login. The session expires with
// the bearer token when the token carries an expiry, otherwise after ttl.
func (m *Manager) Create(ctx context.Context, result *domain.AuthResult) (*domain.Session, error) {
	if result == nil || result.Token == "" {
		return nil, apperrors.NewAuthExpired("login did not return a token")
	}
	if !result.User.Role.Valid() {
		return nil, apperrors.NewForbidden("account has no portal role")
	}
	now := m.now()
	expires := now.Add(m.ttl)
	if exp, err := m.tokens.Expiry(result.Token); err == nil && !exp.IsZero() && exp.Before(expires) {
		expires = exp
	} else if err != nil {
		m.logger.Debug("token carries no readable expiry", zap.Error(err))
	}
	if !now.Before(expires) {
		return nil, apperrors.NewAuthExpired("your session has expired, please log in again")
	}

	sess := &domain.Session{
		ID:        uuid.NewString(),
		User:      result.User,
		Token:     result.Token,
		CreatedAt: now,
		ExpiresAt: expires,
	}
	if err := m.store.Save(ctx, sess, expires.Sub(now)); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	m.logger.Info("session created", zap.String("session_id", sess.ID), zap.String("user_id", sess.User.ID), zap.String("role", string(sess.User.Role)))
	return sess, nil
}

// Lookup returns the live session for id or an AuthExpired error.
func (m *Manager) Lookup(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, apperrors.NewAuthExpired("please log in")
	}
	sess, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.NewAuthExpired("your session has expired, please log in again")
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if sess.Expired(m.now()) {
		_ = m.store.Delete(ctx, id)
		return nil, apperrors.NewAuthExpired("your session has expired, please log in again")
	}
	return sess, nil
}

// Refresh rewrites the stored user after a profile or role change.
func (m *Manager) Refresh(ctx context.Context, sess *domain.Session, user domain.User) error {
	sess.User = user
	ttl := sess.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return apperrors.NewAuthExpired("your session has expired, please log in again")
	}
	if err := m.store.Save(ctx, sess, ttl); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Destroy removes the session.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return apperrors.NewInternalError(err)
	}
	m.logger.Info("session destroyed", zap.String("session_id", id))
	return nil
}

// Ping checks the backing store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}
