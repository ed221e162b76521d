package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/policy"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	"github.com/spec-kit/helpdesk-portal/internal/workflow"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// attachmentField is the multipart field carrying ticket attachments.
const attachmentField = "attachments"

// TicketsHandler serves the ticket view and its workflows.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	maxUpload   int64
	logger      *zap.Logger
}

// NewTicketsHandler constructs handler. maxUploadBytes bounds each attachment.
func NewTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService, maxUploadBytes int64, logger *zap.Logger) *TicketsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketsHandler{tickets: tickets, assignments: assignments, maxUpload: maxUploadBytes, logger: logger}
}

// List GET /dashboard/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	listing, err := h.tickets.List(c.UserContext(), sess, service.TicketQuery{
		Status:         c.Query("status"),
		Search:         c.Query("search"),
		GroupByCompany: c.Query("group") == "company",
		Refresh:        c.QueryBool("refresh"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": listingResponse(listing)})
}

// Create POST /dashboard/tickets. Accepts multipart with attachments, or a
// resubmission of the retained form after a failure.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	in := service.CreateTicketInput{}
	if !req.Resubmit {
		in.Form = &workflow.TicketForm{
			Subject:     req.Subject,
			Phone:       req.Phone,
			Category:    req.Category,
			Priority:    req.Priority,
			Description: req.Description,
		}
		files, err := h.uploads(c)
		if err != nil {
			return err
		}
		defer closeAll(files, h.logger)
		for _, f := range files {
			in.Uploads = append(in.Uploads, service.Upload{FileName: f.name, Content: f.file})
		}
	}

	ticket, err := h.tickets.Create(c.UserContext(), sess, in)
	if err != nil {
		return err
	}
	row := service.TicketRow{Ticket: *ticket, Actions: policy.TicketActions(sess.Role(), ticket)}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(row)})
}

// DiscardDraft DELETE /dashboard/tickets/draft.
func (h *TicketsHandler) DiscardDraft(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	h.tickets.DiscardCreation(sess)
	return c.JSON(fiber.Map{"data": h.tickets.CreationForm(sess)})
}

// ChangeStatus PATCH /dashboard/tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	change, err := h.tickets.ChangeStatus(c.UserContext(), sess, c.Params("id"), domain.TicketStatus(strings.TrimSpace(string(req.Status))))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatusChangeResponse{
		TicketID: change.TicketID,
		Previous: change.Previous,
		Status:   change.Status,
		Changed:  !change.Unchanged,
	}})
}

// OpenAssign GET /dashboard/tickets/:id/assign.
func (h *TicketsHandler) OpenAssign(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	snap, err := h.assignments.Open(c.UserContext(), sess, c.Params("id"))
	if err != nil && (snap.State == workflow.AssignmentClosed || apperrors.IsAuthExpired(err)) {
		return err
	}
	// A failed employee fetch leaves the modal open; the error travels in the body.
	return c.JSON(fiber.Map{"data": assignmentResponse(snap)})
}

// ConfirmAssign POST /dashboard/tickets/:id/assign.
func (h *TicketsHandler) ConfirmAssign(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	employee, snap, err := h.assignments.Confirm(c.UserContext(), sess, c.Params("id"), strings.TrimSpace(req.EmployeeID))
	if err != nil {
		return err
	}
	resp := assignmentResponse(snap)
	resp.Selected = employee.ID
	return c.JSON(fiber.Map{"data": resp})
}

// CloseAssign DELETE /dashboard/tickets/:id/assign.
func (h *TicketsHandler) CloseAssign(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(h.assignments.Close(sess, c.Params("id")))})
}

// Analytics GET /dashboard/analytics.
func (h *TicketsHandler) Analytics(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	summary, err := h.tickets.Analytics(c.UserContext(), sess, c.QueryBool("refresh"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": analyticsResponse(summary)})
}

type openedUpload struct {
	name string
	file multipart.File
}

func (h *TicketsHandler) uploads(c *fiber.Ctx) ([]openedUpload, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	headers := form.File[attachmentField]
	opened := make([]openedUpload, 0, len(headers))
	for _, fh := range headers {
		if h.maxUpload > 0 && fh.Size > h.maxUpload {
			closeAll(opened, h.logger)
			return nil, apperrors.NewValidationError("attachment too large", map[string]any{attachmentField: fh.Filename})
		}
		f, err := fh.Open()
		if err != nil {
			closeAll(opened, h.logger)
			return nil, apperrors.NewInternalError(err)
		}
		opened = append(opened, openedUpload{name: fh.Filename, file: f})
	}
	return opened, nil
}

func closeAll(files []openedUpload, logger *zap.Logger) {
	for _, f := range files {
		if err := f.file.Close(); err != nil {
			logger.Warn("close upload", zap.String("file", f.name), zap.Error(err))
		}
	}
}

func currentSession(c *fiber.Ctx) (*domain.Session, error) {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return nil, apperrors.NewAuthExpired("please log in")
	}
	return sess, nil
}
