package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	"github.com/spec-kit/helpdesk-portal/internal/views"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// SessionChecker resolves a session id to a live session.
type SessionChecker interface {
	Lookup(ctx context.Context, id string) (*domain.Session, error)
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartViewSweeper periodically unmounts the view state of sessions that
// expired without an explicit logout. It stops when ctx is done.
func StartViewSweeper(ctx context.Context, registry *views.Registry, sessions SessionChecker, interval time.Duration, logger *zap.Logger) {
	if registry == nil || sessions == nil || interval <= 0 {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				SweepViews(ctx, registry, sessions, logger)
			}
		}
	}()
}

// SweepViews runs one sweep and returns how many sessions were unmounted.
func SweepViews(ctx context.Context, registry *views.Registry, sessions SessionChecker, logger *zap.Logger) int {
	swept := 0
	for _, id := range registry.SessionIDs() {
		_, err := sessions.Lookup(ctx, id)
		if err == nil {
			continue
		}
		if !apperrors.IsAuthExpired(err) {
			logger.Warn("view sweep lookup failed", zap.String("session_id", id), zap.Error(err))
			continue
		}
		registry.Unmount(id)
		swept++
	}
	if swept > 0 {
		logger.Info("expired session views released", zap.Int("count", swept))
	}
	return swept
}
