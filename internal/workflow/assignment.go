package workflow

import (
	"context"
	"sync"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/ticketcache"
	"github.com/spec-kit/helpdesk-portal/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// AssignmentState is the state of the assignment modal for one ticket.
type AssignmentState string

const (
	AssignmentClosed    AssignmentState = "closed"
	AssignmentOpen      AssignmentState = "open"
	AssignmentReady     AssignmentState = "ready"
	AssignmentAssigning AssignmentState = "assigning"
	AssignmentAssigned  AssignmentState = "assigned"
	AssignmentFailed    AssignmentState = "assign-failed"
)

const (
	genericEmployeesFailure = "could not load employees, please retry"
	genericAssignFailure    = "could not assign the ticket, please try again"
)

// EmployeeLister fetches the employees a ticket may be assigned to.
type EmployeeLister interface {
	ListEligibleEmployees(ctx context.Context, token, ticketID string) ([]domain.User, error)
}

// Assigner performs the assignment write.
type Assigner interface {
	AssignTicket(ctx context.Context, token, ticketID, employeeID string) error
}

// AssignmentSnapshot is the renderable state of the modal.
type AssignmentSnapshot struct {
	TicketID  string                   `json:"ticketId"`
	State     AssignmentState          `json:"state"`
	Employees []domain.EmployeeSummary `json:"employees"`
	Selected  string                   `json:"selected,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// AssignmentModal tracks one ticket's assignment flow. At most one
// assignment write is outstanding at a time. fetchGen invalidates employee
// fetches that finish after Close or a newer Open.
type AssignmentModal struct {
	mu        sync.Mutex
	ticketID  string
	state     AssignmentState
	employees []domain.EmployeeSummary
	selected  string
	lastError string
	fetchGen  int
}

// NewAssignmentModal returns a closed modal for ticketID.
func NewAssignmentModal(ticketID string) *AssignmentModal {
	return &AssignmentModal{ticketID: ticketID, state: AssignmentClosed}
}

// TicketID returns the ticket the modal belongs to.
func (m *AssignmentModal) TicketID() string { return m.ticketID }

// Snapshot returns the current state.
func (m *AssignmentModal) Snapshot() AssignmentSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return AssignmentSnapshot{
		TicketID:  m.ticketID,
		State:     m.state,
		Employees: append([]domain.EmployeeSummary(nil), m.employees...),
		Selected:  m.selected,
		Error:     m.lastError,
	}
}

// Open moves the modal to open and fetches eligible employees. On success
// the modal is ready; on failure it stays open with the error attached.
func (m *AssignmentModal) Open(ctx context.Context, lister EmployeeLister, token string) error {
	m.mu.Lock()
	if m.state == AssignmentAssigning {
		m.mu.Unlock()
		return apperrors.NewInFlight("assignment already in progress")
	}
	m.state = AssignmentOpen
	m.employees = nil
	m.selected = ""
	m.lastError = ""
	m.fetchGen++
	gen := m.fetchGen
	m.mu.Unlock()

	users, err := lister.ListEligibleEmployees(ctx, token, m.ticketID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.fetchGen || m.state != AssignmentOpen {
		return nil
	}
	if err != nil {
		m.lastError = apperrors.UserMessage(err, genericEmployeesFailure)
		return err
	}
	m.employees = make([]domain.EmployeeSummary, 0, len(users))
	for _, u := range users {
		m.employees = append(m.employees, u.Summary())
	}
	m.state = AssignmentReady
	return nil
}

// Select picks the employee to assign.
func (m *AssignmentModal) Select(employeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case AssignmentReady, AssignmentFailed:
	case AssignmentAssigning:
		return apperrors.NewInFlight("assignment already in progress")
	default:
		return apperrors.NewConflict("employee list is not loaded", map[string]any{"state": m.state})
	}
	if _, ok := m.employeeLocked(employeeID); !ok {
		return apperrors.NewValidationError("employee is not eligible for this ticket", map[string]any{"employeeId": validation.InvalidChoice})
	}
	m.selected = employeeID
	return nil
}

// Confirm submits the selected employee. Calls made while a submission is
// outstanding fail with SUBMISSION_IN_FLIGHT and send nothing. On success
// the ticket in cache is patched with the assignee; on failure the modal
// stays open in assign-failed with the error attached.
func (m *AssignmentModal) Confirm(ctx context.Context, assigner Assigner, token string, cache *ticketcache.Cache) (domain.EmployeeSummary, error) {
	m.mu.Lock()
	switch m.state {
	case AssignmentReady, AssignmentFailed:
	case AssignmentAssigning:
		m.mu.Unlock()
		return domain.EmployeeSummary{}, apperrors.NewInFlight("assignment already in progress")
	default:
		m.mu.Unlock()
		return domain.EmployeeSummary{}, apperrors.NewConflict("assignment modal is not ready", map[string]any{"state": m.state})
	}
	employee, ok := m.employeeLocked(m.selected)
	if !ok {
		m.mu.Unlock()
		return domain.EmployeeSummary{}, apperrors.NewValidationError("select an employee", map[string]any{"employeeId": validation.Required})
	}
	m.state = AssignmentAssigning
	m.lastError = ""
	m.mu.Unlock()

	err := assigner.AssignTicket(ctx, token, m.ticketID, employee.ID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = AssignmentFailed
		m.lastError = apperrors.UserMessage(err, genericAssignFailure)
		return domain.EmployeeSummary{}, err
	}
	m.state = AssignmentAssigned
	if cache != nil {
		cache.ApplyAssignment(m.ticketID, employee)
	}
	return employee, nil
}

// Close dismisses the modal. A pending employee fetch is ignored when it
// returns; an outstanding assignment still completes.
func (m *AssignmentModal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == AssignmentAssigning {
		return
	}
	m.state = AssignmentClosed
	m.employees = nil
	m.selected = ""
	m.lastError = ""
	m.fetchGen++
}

func (m *AssignmentModal) employeeLocked(id string) (domain.EmployeeSummary, bool) {
	if id == "" {
		return domain.EmployeeSummary{}, false
	}
	for _, e := range m.employees {
		if e.ID == id {
			return e, true
		}
	}
	return domain.EmployeeSummary{}, false
}
