// Package session keeps the identity of logged-in portal users. A session is
// created at login, read once per request and deleted at logout.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// ErrNotFound is returned when no live session exists for an id.
var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by id.
type Store interface {
	Save(ctx context.Context, s *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
