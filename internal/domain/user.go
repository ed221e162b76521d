package domain

import "time"

// Role enumerates the portal actor roles.
type Role string

const (
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// User is an account known to the helpdesk backend.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Role      Role       `json:"role"`
	Company   CompanyRef `json:"company"`
	Photo     string     `json:"photo,omitempty"`
	Bio       string     `json:"bio,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt,omitempty"`
}

// EmployeeSummary is the slim employee shape carried by assigned tickets.
type EmployeeSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Summary projects the user into an EmployeeSummary.
func (u User) Summary() EmployeeSummary {
	return EmployeeSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
