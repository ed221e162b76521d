package gateway

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// Upload is one file attached to a new ticket.
type Upload struct {
	FileName string
	Content  io.Reader
}

// CreateTicketInput is the multipart payload of a ticket submission.
type CreateTicketInput struct {
	Subject     string
	Phone       string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
	Description string
	Attachments []Upload
}

// ListTickets returns every ticket the backend lets the caller see.
func (c *Client) ListTickets(ctx context.Context, token string) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := c.getJSON(ctx, token, "/tickets", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// CreateTicket submits a ticket with its attachments as multipart form data.
func (c *Client) CreateTicket(ctx context.Context, token string, in CreateTicketInput) (*domain.Ticket, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeTicketForm(mw, in)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	var ticket domain.Ticket
	if err := c.do(ctx, opWrite, token, http.MethodPost, c.endpoint("/tickets", nil), pr, mw.FormDataContentType(), &ticket); err != nil {
		_ = pr.Close()
		return nil, err
	}
	return &ticket, nil
}

func writeTicketForm(mw *multipart.Writer, in CreateTicketInput) error {
	fields := []struct{ name, value string }{
		{"subject", in.Subject},
		{"phone", in.Phone},
		{"category", string(in.Category)},
		{"priority", string(in.Priority)},
		{"description", in.Description},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return err
		}
	}
	for _, up := range in.Attachments {
		part, err := mw.CreateFormFile("attachments", up.FileName)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, up.Content); err != nil {
			return fmt.Errorf("attach %s: %w", up.FileName, err)
		}
	}
	return nil
}

// UpdateTicketStatus sets a ticket's status.
func (c *Client) UpdateTicketStatus(ctx context.Context, token, ticketID string, status domain.TicketStatus) error {
	body := map[string]string{"status": string(status)}
	return c.writeJSON(ctx, token, http.MethodPatch, "/tickets/"+url.PathEscape(ticketID)+"/status", body, nil)
}

// AssignTicket binds an employee to a ticket.
func (c *Client) AssignTicket(ctx context.Context, token, ticketID, employeeID string) error {
	body := map[string]string{"employeeId": employeeID}
	return c.writeJSON(ctx, token, http.MethodPatch, "/tickets/"+url.PathEscape(ticketID)+"/assign", body, nil)
}

// ListEligibleEmployees returns the employees the backend allows on ticketID.
func (c *Client) ListEligibleEmployees(ctx context.Context, token, ticketID string) ([]domain.User, error) {
	var employees []domain.User
	if err := c.getJSON(ctx, token, "/tickets/"+url.PathEscape(ticketID)+"/employees", nil, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}
