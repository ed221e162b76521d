package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/gateway"
)

// TicketGateway is the part of the backend API the ticket workflows use.
type TicketGateway interface {
	ListTickets(ctx context.Context, token string) ([]domain.Ticket, error)
	CreateTicket(ctx context.Context, token string, in gateway.CreateTicketInput) (*domain.Ticket, error)
	UpdateTicketStatus(ctx context.Context, token, ticketID string, status domain.TicketStatus) error
	AssignTicket(ctx context.Context, token, ticketID, employeeID string) error
	ListEligibleEmployees(ctx context.Context, token, ticketID string) ([]domain.User, error)
}

// CompanyLister resolves company ids carried by ticket payloads.
type CompanyLister interface {
	ListCompanies(ctx context.Context, token string) ([]domain.Company, error)
}

// DirectoryGateway covers companies, users and the caller's profile.
type DirectoryGateway interface {
	ListCompanies(ctx context.Context, token string) ([]domain.Company, error)
	CreateCompany(ctx context.Context, token string, company domain.Company) (*domain.Company, error)
	UpdateCompany(ctx context.Context, token string, company domain.Company) (*domain.Company, error)
	DeleteCompany(ctx context.Context, token, companyID string) error
	ListUsers(ctx context.Context, token string) ([]domain.User, error)
	UpdateUser(ctx context.Context, token, userID string, update gateway.UserUpdate) (*domain.User, error)
	UpdateUserRole(ctx context.Context, token, userID string, role domain.Role) (*domain.User, error)
	DeleteUser(ctx context.Context, token, userID string) error
	GetProfile(ctx context.Context, token string) (*domain.User, error)
	UpdateProfile(ctx context.Context, token string, update gateway.UserUpdate) (*domain.User, error)
}

// AuthGateway covers the unauthenticated backend endpoints.
type AuthGateway interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Signup(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
}

// ExportGateway streams data exports.
type ExportGateway interface {
	Export(ctx context.Context, token string, req gateway.ExportRequest) (*gateway.Download, error)
}

// SessionStore is the session lifecycle the services drive.
type SessionStore interface {
	Create(ctx context.Context, result *domain.AuthResult) (*domain.Session, error)
	Refresh(ctx context.Context, sess *domain.Session, user domain.User) error
	Destroy(ctx context.Context, id string) error
}

// publish stamps and dispatches an event. Delivery failures are logged only:
// the write the event describes already happened.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = nowUTC()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event delivery failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
