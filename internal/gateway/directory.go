package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// ListCompanies returns all client companies.
func (c *Client) ListCompanies(ctx context.Context, token string) ([]domain.Company, error) {
	var companies []domain.Company
	if err := c.getJSON(ctx, token, "/companies", nil, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (c *Client) CreateCompany(ctx context.Context, token string, company domain.Company) (*domain.Company, error) {
	var created domain.Company
	if err := c.writeJSON(ctx, token, http.MethodPost, "/companies", company, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateCompany(ctx context.Context, token string, company domain.Company) (*domain.Company, error) {
	var updated domain.Company
	if err := c.writeJSON(ctx, token, http.MethodPut, "/companies/"+url.PathEscape(company.ID), company, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteCompany(ctx context.Context, token, companyID string) error {
	return c.writeJSON(ctx, token, http.MethodDelete, "/companies/"+url.PathEscape(companyID), nil, nil)
}

// ListUsers returns every user account.
func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	var users []domain.User
	if err := c.getJSON(ctx, token, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UserUpdate carries the editable user fields. Role is changed separately.
type UserUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Photo string `json:"photo,omitempty"`
	Bio   string `json:"bio,omitempty"`
}

func (c *Client) UpdateUser(ctx context.Context, token, userID string, update UserUpdate) (*domain.User, error) {
	var user domain.User
	if err := c.writeJSON(ctx, token, http.MethodPut, "/users/"+url.PathEscape(userID), update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, token, userID string, role domain.Role) (*domain.User, error) {
	var user domain.User
	body := map[string]string{"role": string(role)}
	if err := c.writeJSON(ctx, token, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/role", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, token, userID string) error {
	return c.writeJSON(ctx, token, http.MethodDelete, "/users/"+url.PathEscape(userID), nil, nil)
}

// GetProfile returns the caller's own account.
func (c *Client) GetProfile(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := c.getJSON(ctx, token, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile edits the caller's own account.
func (c *Client) UpdateProfile(ctx context.Context, token string, update UserUpdate) (*domain.User, error) {
	var user domain.User
	if err := c.writeJSON(ctx, token, http.MethodPut, "/users/me", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
