package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/gateway"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// DirectoryHandler serves profile, client company and user administration pages.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Profile GET /dashboard/profile.
func (h *DirectoryHandler) Profile(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	user, err := h.directory.Profile(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(*user, nil)})
}

// UpdateProfile PUT /dashboard/profile.
func (h *DirectoryHandler) UpdateProfile(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.directory.UpdateProfile(c.UserContext(), sess, userUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(*user, nil)})
}

// ListClients GET /dashboard/clients.
func (h *DirectoryHandler) ListClients(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	companies, err := h.directory.ListCompanies(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponses(companies)})
}

// CreateClient POST /dashboard/clients.
func (h *DirectoryHandler) CreateClient(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	company, err := h.directory.CreateCompany(c.UserContext(), sess, companyFromRequest("", req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": companyResponse(*company)})
}

// UpdateClient PUT /dashboard/clients/:id.
func (h *DirectoryHandler) UpdateClient(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	company, err := h.directory.UpdateCompany(c.UserContext(), sess, companyFromRequest(c.Params("id"), req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(*company)})
}

// DeleteClient DELETE /dashboard/clients/:id.
func (h *DirectoryHandler) DeleteClient(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	if err := h.directory.DeleteCompany(c.UserContext(), sess, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Admin GET /admin.
func (h *DirectoryHandler) Admin(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	overview, err := h.directory.Overview(c.UserContext(), sess)
	if err != nil {
		return err
	}
	resp := dto.AdminResponse{
		Users:     make([]dto.UserResponse, 0, len(overview.Users)),
		Companies: companyResponses(overview.Companies),
	}
	for _, u := range overview.Users {
		resp.Users = append(resp.Users, userResponse(u, sess))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ChangeRole PATCH /admin/users/:id/role.
func (h *DirectoryHandler) ChangeRole(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.RoleChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.directory.ChangeRole(c.UserContext(), sess, c.Params("id"), req.Role, req.Current)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(*user, sess)})
}

// UpdateUser PUT /admin/users/:id.
func (h *DirectoryHandler) UpdateUser(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.directory.UpdateUser(c.UserContext(), sess, c.Params("id"), userUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(*user, sess)})
}

// DeleteUser DELETE /admin/users/:id.
func (h *DirectoryHandler) DeleteUser(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	if err := h.directory.DeleteUser(c.UserContext(), sess, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func userUpdate(req dto.UpdateUserRequest) gateway.UserUpdate {
	return gateway.UserUpdate{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
		Photo: strings.TrimSpace(req.Photo),
		Bio:   req.Bio,
	}
}

func companyFromRequest(id string, req dto.CompanyRequest) domain.Company {
	return domain.Company{
		ID:           id,
		Name:         req.Name,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Plan:         req.Plan,
	}
}
