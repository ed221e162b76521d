package workflow

import (
	"context"
	"sync"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/policy"
	"github.com/spec-kit/helpdesk-portal/internal/ticketcache"
	"github.com/spec-kit/helpdesk-portal/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// StatusWriter performs the status write.
type StatusWriter interface {
	UpdateTicketStatus(ctx context.Context, token, ticketID string, status domain.TicketStatus) error
}

// StatusChange reports the outcome of a status change.
type StatusChange struct {
	TicketID  string              `json:"ticketId"`
	Previous  domain.TicketStatus `json:"previous"`
	Status    domain.TicketStatus `json:"status"`
	Reverted  bool                `json:"reverted"`
	Unchanged bool                `json:"unchanged,omitempty"`
}

// StatusChanger applies status changes optimistically to a cache and reverts
// them when the backend rejects the write.
type StatusChanger struct {
	writer StatusWriter

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewStatusChanger creates a changer writing through w.
func NewStatusChanger(w StatusWriter) *StatusChanger {
	return &StatusChanger{writer: w, inFlight: make(map[string]struct{})}
}

// Change sets ticketID to status for an actor with role. Policy-rejected
// changes issue no write. On a write failure the previous status is restored
// and the returned change has Reverted set alongside the error.
func (s *StatusChanger) Change(ctx context.Context, cache *ticketcache.Cache, role domain.Role, token, ticketID string, status domain.TicketStatus) (StatusChange, error) {
	result := StatusChange{TicketID: ticketID, Status: status}

	v := validation.Violations{}
	validation.Status("status", status, v)
	if err := v.Err(); err != nil {
		return result, err
	}
	ticket, ok := cache.Get(ticketID)
	if !ok {
		return result, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	if !policy.CanChangeStatus(role, &ticket) {
		return result, apperrors.NewForbidden("you cannot change the status of this ticket")
	}
	result.Previous = ticket.Status
	if ticket.Status == status {
		result.Unchanged = true
		return result, nil
	}

	if !s.acquire(ticketID) {
		return result, apperrors.NewInFlight("a status change for this ticket is already in progress")
	}
	defer s.release(ticketID)

	prev, _ := cache.ApplyStatusChange(ticketID, status)
	result.Previous = prev

	if err := s.writer.UpdateTicketStatus(ctx, token, ticketID, status); err != nil {
		if current, ok := cache.Get(ticketID); ok && current.Status == status {
			cache.ApplyStatusChange(ticketID, prev)
		}
		result.Status = prev
		result.Reverted = true
		return result, err
	}
	return result, nil
}

func (s *StatusChanger) acquire(ticketID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[ticketID]; busy {
		return false
	}
	s.inFlight[ticketID] = struct{}{}
	return true
}

func (s *StatusChanger) release(ticketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, ticketID)
}
