package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/policy"
	"github.com/spec-kit/helpdesk-portal/internal/workflow"
)

// CreateTicketRequest is the form part of a multipart ticket submission.
type CreateTicketRequest struct {
	Subject     string                `form:"subject" json:"subject"`
	Phone       string                `form:"phone" json:"phone"`
	Category    domain.TicketCategory `form:"category" json:"category"`
	Priority    domain.TicketPriority `form:"priority" json:"priority"`
	Description string                `form:"description" json:"description"`
	Resubmit    bool                  `form:"resubmit" json:"resubmit"`
}

// StatusChangeRequest payload.
type StatusChangeRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignRequest payload.
type AssignRequest struct {
	EmployeeID string `json:"employee_id"`
}

// PersonSummary is a creator or assignee as shown in a row.
type PersonSummary struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// AttachmentResponse describes a stored attachment.
type AttachmentResponse struct {
	FileName string `json:"file_name"`
	Path     string `json:"path"`
}

// TicketResponse is one row of a ticket view.
type TicketResponse struct {
	ID           string                `json:"id"`
	TicketNumber string                `json:"ticket_number"`
	Subject      string                `json:"subject"`
	Description  string                `json:"description"`
	Phone        string                `json:"phone,omitempty"`
	Category     domain.TicketCategory `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	Company      string                `json:"company"`
	CreatedBy    *PersonSummary        `json:"created_by,omitempty"`
	AssignedTo   *PersonSummary        `json:"assigned_to,omitempty"`
	Assigned     bool                  `json:"assigned"`
	Attachments  []AttachmentResponse  `json:"attachments"`
	Actions      []policy.Action       `json:"actions"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketGroupResponse is a company heading with its rows.
type TicketGroupResponse struct {
	Company string           `json:"company"`
	Count   int              `json:"count"`
	Tickets []TicketResponse `json:"tickets"`
}

// TicketListResponse is the ticket view.
type TicketListResponse struct {
	Tickets  []TicketResponse           `json:"tickets"`
	Groups   []TicketGroupResponse      `json:"groups,omitempty"`
	Total    int                        `json:"total"`
	Shown    int                        `json:"shown"`
	LoadedAt time.Time                  `json:"loaded_at"`
	Creation *workflow.CreationSnapshot `json:"creation,omitempty"`
}

// StatusChangeResponse reports an applied status change.
type StatusChangeResponse struct {
	TicketID string              `json:"ticket_id"`
	Previous domain.TicketStatus `json:"previous"`
	Status   domain.TicketStatus `json:"status"`
	Changed  bool                `json:"changed"`
}

// AssignmentResponse is the modal state.
type AssignmentResponse struct {
	TicketID  string                   `json:"ticket_id"`
	State     workflow.AssignmentState `json:"state"`
	Employees []PersonSummary          `json:"employees"`
	Selected  string                   `json:"selected,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// AnalyticsResponse summarises the visible tickets.
type AnalyticsResponse struct {
	Total      int                           `json:"total"`
	Unassigned int                           `json:"unassigned"`
	ByStatus   map[domain.TicketStatus]int   `json:"by_status"`
	ByPriority map[domain.TicketPriority]int `json:"by_priority"`
	ByCategory map[domain.TicketCategory]int `json:"by_category"`
	ByCompany  []CompanyCountResponse        `json:"by_company"`
	LoadedAt   time.Time                     `json:"loaded_at"`
}

// CompanyCountResponse is the ticket volume of one company.
type CompanyCountResponse struct {
	Company string `json:"company"`
	Total   int    `json:"total"`
	Open    int    `json:"open"`
}
