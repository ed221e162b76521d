package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/views"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

// NotificationService turns workflow events into user-facing notifications
// in the acting session's inbox.
type NotificationService struct {
	dispatcher events.Dispatcher
	views      *views.Registry
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, registry *views.Registry, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		views:      registry,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketStatusReverted, n.handleTicketStatusReverted)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventWriteFailed, n.handleWriteFailed)
	n.dispatcher.Subscribe(events.EventDirectoryChanged, n.handleDirectoryChanged)
}

// Pending returns the notifications waiting for sessionID and clears them.
func (n *NotificationService) Pending(sessionID string) []views.Notification {
	st, ok := n.views.Lookup(sessionID)
	if !ok {
		return []views.Notification{}
	}
	out := st.Inbox().Drain()
	if out == nil {
		out = []views.Notification{}
	}
	return out
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	msg := "Ticket created"
	if p, ok := event.Payload.(events.TicketCreatedPayload); ok && p.TicketNumber != "" {
		msg = fmt.Sprintf("Ticket %s created", p.TicketNumber)
	}
	n.push(event, views.LevelSuccess, msg)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	msg := "Ticket status updated"
	if p, ok := event.Payload.(events.TicketStatusChangedPayload); ok {
		msg = fmt.Sprintf("Ticket status changed to %s", p.NewStatus)
	}
	n.push(event, views.LevelSuccess, msg)
	return nil
}

func (n *NotificationService) handleTicketStatusReverted(ctx context.Context, event events.Event) error {
	n.logger.Warn("TicketStatusReverted", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	msg := "Status change failed"
	if p, ok := event.Payload.(events.WriteFailedPayload); ok && p.Message != "" {
		msg = "Status change failed: " + p.Message
	}
	n.push(event, views.LevelError, msg)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	msg := "Ticket assigned"
	if p, ok := event.Payload.(events.TicketAssignedPayload); ok && p.Employee.Name != "" {
		msg = "Ticket assigned to " + p.Employee.Name
	}
	n.push(event, views.LevelSuccess, msg)
	return nil
}

func (n *NotificationService) handleWriteFailed(ctx context.Context, event events.Event) error {
	n.logger.Warn("WriteFailed", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	msg := "The change could not be saved"
	if p, ok := event.Payload.(events.WriteFailedPayload); ok && p.Message != "" {
		msg = p.Message
	}
	n.push(event, views.LevelError, msg)
	return nil
}

func (n *NotificationService) handleDirectoryChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("DirectoryChanged", zap.Any("payload", event.Payload))
	msg := "Saved"
	if p, ok := event.Payload.(events.DirectoryChangedPayload); ok {
		msg = fmt.Sprintf("%s %s", p.Resource, p.Change)
	}
	n.push(event, views.LevelSuccess, msg)
	return nil
}

func (n *NotificationService) push(event events.Event, level views.Level, message string) {
	if event.Actor.SessionID == "" || n.views == nil {
		return
	}
	st, ok := n.views.Lookup(event.Actor.SessionID)
	if !ok {
		n.logger.Debug("notification dropped for unmounted session", zap.String("session_id", event.Actor.SessionID))
		return
	}
	st.Inbox().Push(views.Notification{
		ID:        event.ID,
		Level:     level,
		Message:   message,
		TicketID:  event.TicketID,
		CreatedAt: event.Timestamp,
	})
}
