package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// DashboardStats counts tickets by status.
type DashboardStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	Pending    int `json:"pending"`
	Resolved   int `json:"resolved"`
	Unassigned int `json:"unassigned"`
}

// DashboardResponse is the role-specific landing page.
type DashboardResponse struct {
	Role      domain.Role      `json:"role"`
	User      UserResponse     `json:"user"`
	Stats     DashboardStats   `json:"stats"`
	Recent    []TicketResponse `json:"recent"`
	Companies *int             `json:"companies,omitempty"`
	Employees *int             `json:"employees,omitempty"`
	Clients   *int             `json:"clients,omitempty"`
	Links     []string         `json:"links"`
	LoadedAt  time.Time        `json:"loaded_at"`
}
