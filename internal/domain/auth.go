package domain

import "time"

// Credentials carries a login attempt.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration carries a signup request.
type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Company         string `json:"company,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// AuthResult is what the backend returns after a successful login or signup.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Session is the explicit identity context of an authenticated portal user.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Role is a shortcut for the session user's role.
func (s *Session) Role() Role {
	if s == nil {
		return ""
	}
	return s.User.Role
}

// Expired reports whether the session token has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
