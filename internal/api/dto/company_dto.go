package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// CompanyRequest payload for creating or updating a client company.
type CompanyRequest struct {
	Name         string      `json:"name"`
	ContactName  string      `json:"contact_name"`
	ContactEmail string      `json:"contact_email"`
	ContactPhone string      `json:"contact_phone"`
	Plan         domain.Plan `json:"plan"`
}

// CompanyResponse is a client company.
type CompanyResponse struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	ContactName  string      `json:"contact_name,omitempty"`
	ContactEmail string      `json:"contact_email,omitempty"`
	ContactPhone string      `json:"contact_phone,omitempty"`
	Plan         domain.Plan `json:"plan,omitempty"`
	CreatedAt    time.Time   `json:"created_at,omitempty"`
}
