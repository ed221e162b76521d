package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/gateway"
	"github.com/spec-kit/helpdesk-portal/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// CreationState is the state of a ticket submission form.
type CreationState string

const (
	CreationIdle       CreationState = "idle"
	CreationSubmitting CreationState = "submitting"
	CreationSuccess    CreationState = "success"
	CreationFailed     CreationState = "failed"
)

const genericCreateFailure = "could not create the ticket, please try again"

// TicketCreator submits new tickets to the backend.
type TicketCreator interface {
	CreateTicket(ctx context.Context, token string, in gateway.CreateTicketInput) (*domain.Ticket, error)
}

// TicketForm is the user-entered part of a submission.
type TicketForm struct {
	Subject     string                `json:"subject"`
	Phone       string                `json:"phone"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Description string                `json:"description"`
}

// Validate applies the submission rules.
func (f TicketForm) Validate() validation.Violations {
	v := validation.Violations{}
	validation.RequireText("subject", f.Subject, v)
	validation.RequireText("description", f.Description, v)
	validation.Category("category", f.Category, v)
	validation.Priority("priority", f.Priority, v)
	validation.OptionalPhone("phone", f.Phone, v)
	return v
}

// Preview is an attachment spooled to disk until submission.
type Preview struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	path     string
}

// CreationSnapshot is the renderable state of the form.
type CreationSnapshot struct {
	State       CreationState `json:"state"`
	Form        TicketForm    `json:"form"`
	Attachments []Preview     `json:"attachments"`
	Error       string        `json:"error,omitempty"`
}

// CreationWorkflow drives idle → submitting → success|failed for one form.
type CreationWorkflow struct {
	mu        sync.Mutex
	state     CreationState
	form      TicketForm
	previews  []Preview
	lastError string
	spoolDir  string
}

// NewCreationWorkflow returns an idle form spooling attachments into dir.
func NewCreationWorkflow(dir string) *CreationWorkflow {
	return &CreationWorkflow{state: CreationIdle, spoolDir: dir}
}

// Snapshot returns the current state.
func (w *CreationWorkflow) Snapshot() CreationSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return CreationSnapshot{
		State:       w.state,
		Form:        w.form,
		Attachments: append([]Preview(nil), w.previews...),
		Error:       w.lastError,
	}
}

// SetForm replaces the form fields. It is rejected while submitting.
func (w *CreationWorkflow) SetForm(form TicketForm) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == CreationSubmitting {
		return apperrors.NewInFlight("ticket submission already in progress")
	}
	w.form = form
	if w.state == CreationSuccess {
		w.state = CreationIdle
	}
	return nil
}

// AddAttachment spools r to a temporary file and records its preview.
func (w *CreationWorkflow) AddAttachment(name string, r io.Reader) (Preview, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Preview{}, apperrors.NewValidationError("attachment needs a file name", map[string]any{"attachments": validation.Required})
	}
	f, err := os.CreateTemp(w.spoolDir, "ticket-attachment-*")
	if err != nil {
		return Preview{}, apperrors.NewInternalError(fmt.Errorf("spool attachment: %w", err))
	}
	size, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(f.Name())
		if copyErr == nil {
			copyErr = closeErr
		}
		return Preview{}, apperrors.NewInternalError(fmt.Errorf("spool attachment: %w", copyErr))
	}

	p := Preview{FileName: name, Size: size, path: f.Name()}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == CreationSubmitting {
		_ = os.Remove(p.path)
		return Preview{}, apperrors.NewInFlight("ticket submission already in progress")
	}
	w.previews = append(w.previews, p)
	return p, nil
}

// Submit validates and sends the form. On success the form is cleared and
// every attachment preview released; on failure everything is kept for retry.
func (w *CreationWorkflow) Submit(ctx context.Context, creator TicketCreator, token string) (*domain.Ticket, error) {
	w.mu.Lock()
	if w.state == CreationSubmitting {
		w.mu.Unlock()
		return nil, apperrors.NewInFlight("ticket submission already in progress")
	}
	if err := w.form.Validate().Err(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	form := w.form
	previews := append([]Preview(nil), w.previews...)
	w.state = CreationSubmitting
	w.lastError = ""
	w.mu.Unlock()

	ticket, err := w.send(ctx, creator, token, form, previews)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = CreationFailed
		w.lastError = apperrors.UserMessage(err, genericCreateFailure)
		return nil, err
	}
	w.state = CreationSuccess
	w.form = TicketForm{}
	w.releaseLocked()
	return ticket, nil
}

func (w *CreationWorkflow) send(ctx context.Context, creator TicketCreator, token string, form TicketForm, previews []Preview) (*domain.Ticket, error) {
	uploads := make([]gateway.Upload, 0, len(previews))
	var files []*os.File
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	for _, p := range previews {
		f, err := os.Open(p.path)
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("open attachment %s: %w", p.FileName, err))
		}
		files = append(files, f)
		uploads = append(uploads, gateway.Upload{FileName: p.FileName, Content: f})
	}

	phone := ""
	if strings.TrimSpace(form.Phone) != "" {
		phone = validation.NormalizePhone(form.Phone)
	}
	return creator.CreateTicket(ctx, token, gateway.CreateTicketInput{
		Subject:     strings.TrimSpace(form.Subject),
		Phone:       phone,
		Category:    form.Category,
		Priority:    form.Priority,
		Description: strings.TrimSpace(form.Description),
		Attachments: uploads,
	})
}

// Discard clears the form and releases attachments. Ignored while submitting.
func (w *CreationWorkflow) Discard() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == CreationSubmitting {
		return
	}
	w.form = TicketForm{}
	w.lastError = ""
	w.state = CreationIdle
	w.releaseLocked()
}

func (w *CreationWorkflow) releaseLocked() {
	for _, p := range w.previews {
		_ = os.Remove(p.path)
	}
	w.previews = nil
}
