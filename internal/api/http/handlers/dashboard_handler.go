package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/gateway"
	"github.com/spec-kit/helpdesk-portal/internal/policy"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	"github.com/spec-kit/helpdesk-portal/internal/validation"
)

// dashboardLinks are the portal pages offered in navigation, filtered per role.
var dashboardLinks = []string{
	"/dashboard/tickets",
	"/dashboard/clients",
	"/admin",
	"/dashboard/analytics",
	"/dashboard/export",
	"/dashboard/profile",
}

// DashboardHandler serves the landing page, notifications and exports.
type DashboardHandler struct {
	dashboard     *service.DashboardService
	notifications *service.NotificationService
	exports       *service.ExportService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService, notifications *service.NotificationService, exports *service.ExportService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, notifications: notifications, exports: exports}
}

// Dashboard GET /dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	dash, err := h.dashboard.Load(c.UserContext(), sess, c.QueryBool("refresh"))
	if err != nil {
		return err
	}
	resp := dto.DashboardResponse{
		Role: dash.Role,
		User: userResponse(dash.User, nil),
		Stats: dto.DashboardStats{
			Total:      dash.Stats.Total,
			Open:       dash.Stats.Open,
			Pending:    dash.Stats.Pending,
			Resolved:   dash.Stats.Resolved,
			Unassigned: dash.Stats.Unassigned,
		},
		Recent:   ticketResponses(dash.Recent),
		Links:    make([]string, 0, len(dashboardLinks)),
		LoadedAt: dash.LoadedAt,
	}
	if policy.CanManageUsers(dash.Role) {
		resp.Companies = &dash.Companies
		resp.Employees = &dash.Employees
		resp.Clients = &dash.Clients
	}
	for _, link := range dashboardLinks {
		if policy.AllowedRoute(dash.Role, link) {
			resp.Links = append(resp.Links, link)
		}
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Notifications GET /dashboard/notifications drains the session inbox.
func (h *DashboardHandler) Notifications(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.notifications.Pending(sess.ID)})
}

// Export GET /dashboard/export streams the backend file to the browser.
func (h *DashboardHandler) Export(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	v := validation.Violations{}
	from := parseDate("from", c.Query("from"), v)
	to := parseDate("to", c.Query("to"), v)
	if err := v.Err(); err != nil {
		return err
	}
	dl, err := h.exports.Export(c.UserContext(), sess, gateway.ExportRequest{
		Resource: c.Query("resource"),
		Format:   gateway.ExportFormat(c.Query("format")),
		From:     from,
		To:       to,
	})
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, dl.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", dl.FileName))
	size := -1
	if dl.ContentLength > 0 {
		size = int(dl.ContentLength)
	}
	// The response writer closes the body once it is fully sent.
	return c.SendStream(dl.Body, size)
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(field, raw string, v validation.Violations) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	v[field] = validation.InvalidChoice
	return time.Time{}
}
