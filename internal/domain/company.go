package domain

import "time"

// Plan is a company subscription tier.
type Plan string

const (
	PlanStarter      Plan = "Starter"
	PlanProfessional Plan = "Professional"
	PlanEnterprise   Plan = "Enterprise"
)

// Valid reports whether p is a known plan tier.
func (p Plan) Valid() bool {
	switch p {
	case PlanStarter, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

// UnknownCompanyName labels tickets and users without a resolvable company.
const UnknownCompanyName = "Unknown Company"

// Company is a client organization.
type Company struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactName  string    `json:"contactName,omitempty"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	Plan         Plan      `json:"plan,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}
