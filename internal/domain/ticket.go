package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusPending  TicketStatus = "pending"
	TicketStatusResolved TicketStatus = "resolved"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusPending, TicketStatusResolved:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// TicketCategory classifies the request.
type TicketCategory string

const (
	CategoryTechnical TicketCategory = "technical"
	CategoryBilling   TicketCategory = "billing"
	CategoryAccount   TicketCategory = "account"
	CategoryDelivery  TicketCategory = "delivery"
	CategoryOther     TicketCategory = "other"
)

// Valid reports whether c is a known category.
func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryBilling, CategoryAccount, CategoryDelivery, CategoryOther:
		return true
	}
	return false
}

// Attachment describes a file stored by the backend.
type Attachment struct {
	FileName string `json:"originalName"`
	Path     string `json:"path"`
}

// Ticket is a support request as returned by the backend.
type Ticket struct {
	ID           string           `json:"id"`
	TicketNumber string           `json:"ticketNumber"`
	Subject      string           `json:"subject"`
	Description  string           `json:"description"`
	Phone        string           `json:"phone,omitempty"`
	Category     TicketCategory   `json:"category"`
	Priority     TicketPriority   `json:"priority"`
	Status       TicketStatus     `json:"status"`
	CreatedBy    UserRef          `json:"createdBy"`
	AssignedTo   *EmployeeSummary `json:"assignedTo"`
	Company      CompanyRef       `json:"company"`
	Attachments  []Attachment     `json:"attachments"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Assigned reports whether an employee has been bound to the ticket.
func (t *Ticket) Assigned() bool {
	return t.AssignedTo != nil && t.AssignedTo.ID != ""
}
