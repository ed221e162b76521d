package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/policy"
	"github.com/spec-kit/helpdesk-portal/internal/views"
	"github.com/spec-kit/helpdesk-portal/internal/workflow"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// AssignmentService handles the assignment modal of a session's tickets.
type AssignmentService struct {
	tickets    *TicketService
	gateway    TicketGateway
	views      *views.Registry
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	Tickets    *TicketService
	Gateway    TicketGateway
	Views      *views.Registry
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		tickets:    deps.Tickets,
		gateway:    deps.Gateway,
		views:      deps.Views,
		dispatcher: deps.Dispatcher,
		logger:     logger.Named("assignment"),
	}
}

// Open opens the modal for ticketID and loads eligible employees. When the
// employee list cannot be fetched the modal stays open and the snapshot
// carries the error alongside the returned error.
func (s *AssignmentService) Open(ctx context.Context, sess *domain.Session, ticketID string) (workflow.AssignmentSnapshot, error) {
	if _, err := s.assignable(ctx, sess, ticketID); err != nil {
		return workflow.AssignmentSnapshot{TicketID: ticketID, State: workflow.AssignmentClosed}, err
	}
	modal := s.views.State(sess.ID).Modal(ticketID)
	err := modal.Open(ctx, s.gateway, sess.Token)
	if err != nil {
		s.logger.Warn("eligible employee fetch failed", zap.String("ticket_id", ticketID), zap.Error(err))
	}
	return modal.Snapshot(), err
}

// Confirm assigns employeeID (or the already selected employee when empty).
// A second confirm while one is outstanding is rejected without a write.
func (s *AssignmentService) Confirm(ctx context.Context, sess *domain.Session, ticketID, employeeID string) (domain.EmployeeSummary, workflow.AssignmentSnapshot, error) {
	st := s.views.State(sess.ID)
	modal := st.Modal(ticketID)
	if modal.Snapshot().State == workflow.AssignmentAssigning {
		return domain.EmployeeSummary{}, modal.Snapshot(), apperrors.NewInFlight("assignment already in progress")
	}
	if _, err := s.assignable(ctx, sess, ticketID); err != nil {
		return domain.EmployeeSummary{}, modal.Snapshot(), err
	}
	if employeeID != "" {
		if err := modal.Select(employeeID); err != nil {
			return domain.EmployeeSummary{}, modal.Snapshot(), err
		}
	}

	cache, _ := st.Cache(views.ViewTickets)
	employee, err := modal.Confirm(ctx, s.gateway, sess.Token, cache)
	snap := modal.Snapshot()
	if err != nil {
		if snap.State == workflow.AssignmentFailed {
			s.logger.Warn("assignment failed", zap.String("ticket_id", ticketID), zap.Error(err))
			publish(ctx, s.dispatcher, s.logger, events.Event{
				Type:     events.EventWriteFailed,
				TicketID: ticketID,
				Actor:    events.ActorFromSession(sess),
				Payload:  events.WriteFailedPayload{Operation: "assign_ticket", Message: snap.Error},
			})
		}
		return domain.EmployeeSummary{}, snap, err
	}

	for _, other := range st.Caches() {
		if other != cache {
			other.ApplyAssignment(ticketID, employee)
		}
	}
	st.DropModal(ticketID)
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticketID,
		Actor:    events.ActorFromSession(sess),
		Payload:  events.TicketAssignedPayload{Employee: employee},
	})
	return employee, snap, nil
}

// Close dismisses the modal without assigning.
func (s *AssignmentService) Close(sess *domain.Session, ticketID string) workflow.AssignmentSnapshot {
	st, ok := s.views.Lookup(sess.ID)
	if !ok {
		return workflow.AssignmentSnapshot{TicketID: ticketID, State: workflow.AssignmentClosed}
	}
	modal := st.Modal(ticketID)
	modal.Close()
	snap := modal.Snapshot()
	if snap.State == workflow.AssignmentClosed {
		st.DropModal(ticketID)
	}
	return snap
}

func (s *AssignmentService) assignable(ctx context.Context, sess *domain.Session, ticketID string) (domain.Ticket, error) {
	cache, err := s.tickets.mounted(ctx, sess, views.ViewTickets, false)
	if err != nil {
		return domain.Ticket{}, err
	}
	ticket, ok := cache.Get(ticketID)
	if !ok {
		return domain.Ticket{}, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	if !policy.CanAssign(sess.Role(), &ticket) {
		if ticket.Assigned() && sess.Role() == domain.RoleAdmin {
			return ticket, apperrors.NewConflict("ticket is already assigned", map[string]any{"assignedTo": ticket.AssignedTo.Name})
		}
		return ticket, apperrors.NewForbidden("you cannot assign this ticket")
	}
	return ticket, nil
}
