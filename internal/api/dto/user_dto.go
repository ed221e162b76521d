package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// SignupRequest payload for new client accounts.
type SignupRequest struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Phone           string `json:"phone" form:"phone"`
	Company         string `json:"company" form:"company"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// ForgotPasswordRequest payload.
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

// SessionResponse describes the signed-in user.
type SessionResponse struct {
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
	Redirect  string       `json:"redirect"`
}

// UserResponse is a user account.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Role      domain.Role `json:"role"`
	Company   string      `json:"company"`
	CompanyID string      `json:"company_id,omitempty"`
	Photo     string      `json:"photo,omitempty"`
	Bio       string      `json:"bio,omitempty"`
	CanToggle bool        `json:"can_change_role"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
}

// UpdateUserRequest carries editable user fields.
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Photo string `json:"photo"`
	Bio   string `json:"bio"`
}

// RoleChangeRequest sets a role explicitly, or toggles from current when
// role is empty.
type RoleChangeRequest struct {
	Role    domain.Role `json:"role"`
	Current domain.Role `json:"current_role"`
}

// AdminResponse is the user administration page.
type AdminResponse struct {
	Users     []UserResponse    `json:"users"`
	Companies []CompanyResponse `json:"companies"`
}
