package events

import (
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventTicketStatusReverted EventType = "ticket_status_reverted"
	EventTicketAssigned       EventType = "ticket_assigned"
	EventWriteFailed          EventType = "write_failed"
	EventDirectoryChanged     EventType = "directory_changed"
)

// Actor identifies who triggered an event.
type Actor struct {
	SessionID string      `json:"session_id"`
	UserID    string      `json:"user_id"`
	Role      domain.Role `json:"role"`
}

// ActorFromSession builds an Actor from the session that performed the action.
func ActorFromSession(s *domain.Session) Actor {
	if s == nil {
		return Actor{}
	}
	return Actor{SessionID: s.ID, UserID: s.User.ID, Role: s.User.Role}
}

// Event represents something the user should hear about.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	Subject      string                `json:"subject"`
	Priority     domain.TicketPriority `json:"priority"`
	Attachments  int                   `json:"attachments"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Employee domain.EmployeeSummary `json:"employee"`
}

// WriteFailedPayload payload.
type WriteFailedPayload struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

// DirectoryChangedPayload payload.
type DirectoryChangedPayload struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
	Change   string `json:"change"`
}
