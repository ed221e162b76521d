package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/gateway"
	"github.com/spec-kit/helpdesk-portal/internal/policy"
	"github.com/spec-kit/helpdesk-portal/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// DirectoryService manages companies, user accounts and the caller's profile.
type DirectoryService struct {
	gateway    DirectoryGateway
	sessions   SessionStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// DirectoryDependencies bundles collaborators.
type DirectoryDependencies struct {
	Gateway    DirectoryGateway
	Sessions   SessionStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewDirectoryService creates the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		gateway:    deps.Gateway,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     logger.Named("directory"),
	}
}

// AdminOverview is the user administration page.
type AdminOverview struct {
	Users     []domain.User
	Companies []domain.Company
}

// Overview fetches users and companies concurrently and resolves each
// user's company reference against the company list.
func (s *DirectoryService) Overview(ctx context.Context, sess *domain.Session) (*AdminOverview, error) {
	if !policy.CanManageUsers(sess.Role()) {
		return nil, apperrors.NewForbidden("admin access required")
	}
	var users []domain.User
	var companies []domain.Company
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.gateway.ListUsers(gctx, sess.Token)
		return err
	})
	g.Go(func() error {
		var err error
		companies, err = s.gateway.ListCompanies(gctx, sess.Token)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Company, len(companies))
	for _, c := range companies {
		byID[c.ID] = c
	}
	for i := range users {
		users[i].Company = users[i].Company.Resolve(byID)
	}
	return &AdminOverview{Users: users, Companies: companies}, nil
}

// ListCompanies returns all client companies.
func (s *DirectoryService) ListCompanies(ctx context.Context, sess *domain.Session) ([]domain.Company, error) {
	if !policy.CanManageCompanies(sess.Role()) {
		return nil, apperrors.NewForbidden("admin access required")
	}
	return s.gateway.ListCompanies(ctx, sess.Token)
}

// CreateCompany validates and creates a company.
func (s *DirectoryService) CreateCompany(ctx context.Context, sess *domain.Session, company domain.Company) (*domain.Company, error) {
	if !policy.CanManageCompanies(sess.Role()) {
		return nil, apperrors.NewForbidden("admin access required")
	}
	company = normalizeCompany(company)
	if err := validation.Company(company).Err(); err != nil {
		return nil, err
	}
	created, err := s.gateway.CreateCompany(ctx, sess.Token, company)
	if err != nil {
		return nil, s.writeFailed(ctx, sess, "create_company", err)
	}
	s.changed(ctx, sess, "company", created.ID, "created")
	return created, nil
}

// UpdateCompany validates and saves a company.
func (s *DirectoryService) UpdateCompany(ctx context.Context, sess *domain.Session, company domain.Company) (*domain.Company, error) {
	if !policy.CanManageCompanies(sess.Role()) {
		return nil, apperrors.NewForbidden("admin access required")
	}
	if strings.TrimSpace(company.ID) == "" {
		return nil, apperrors.NewValidationError("company id required", map[string]any{"id": validation.Required})
	}
	company = normalizeCompany(company)
	if err := validation.Company(company).Err(); err != nil {
		return nil, err
	}
	updated, err := s.gateway.UpdateCompany(ctx, sess.Token, company)
	if err != nil {
		return nil, s.writeFailed(ctx, sess, "update_company", err)
	}
	s.changed(ctx, sess, "company", company.ID, "updated")
	return updated, nil
}

// DeleteCompany removes a company.
func (s *DirectoryService) DeleteCompany(ctx context.Context, sess *domain.Session, companyID string) error {
	if !policy.CanManageCompanies(sess.Role()) {
		return apperrors.NewForbidden("admin access required")
	}
	if err := s.gateway.DeleteCompany(ctx, sess.Token, companyID); err != nil {
		return s.writeFailed(ctx, sess, "delete_company", err)
	}
	s.changed(ctx, sess, "company", companyID, "deleted")
	return nil
}

// ChangeRole sets the role of userID. An empty role toggles between client
// and employee. Admins cannot change their own role.
func (s *DirectoryService) ChangeRole(ctx context.Context, sess *domain.Session, userID string, role domain.Role, current domain.Role) (*domain.User, error) {
	if !policy.CanChangeRole(sess.Role(), sess.User.ID, userID) {
		return nil, apperrors.NewForbidden("you cannot change this user's role")
	}
	if role == "" {
		role = ToggleRole(current)
	}
	v := validation.Violations{}
	validation.Role("role", role, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	user, err := s.gateway.UpdateUserRole(ctx, sess.Token, userID, role)
	if err != nil {
		return nil, s.writeFailed(ctx, sess, "change_role", err)
	}
	s.changed(ctx, sess, "user", userID, "role changed to "+string(role))
	return user, nil
}

// ToggleRole flips a client to employee and anything else to client.
func ToggleRole(current domain.Role) domain.Role {
	if current == domain.RoleClient {
		return domain.RoleEmployee
	}
	return domain.RoleClient
}

// UpdateUser saves another user's editable fields.
func (s *DirectoryService) UpdateUser(ctx context.Context, sess *domain.Session, userID string, update gateway.UserUpdate) (*domain.User, error) {
	if !policy.CanManageUsers(sess.Role()) {
		return nil, apperrors.NewForbidden("admin access required")
	}
	update, err := validUserUpdate(update)
	if err != nil {
		return nil, err
	}
	user, err := s.gateway.UpdateUser(ctx, sess.Token, userID, update)
	if err != nil {
		return nil, s.writeFailed(ctx, sess, "update_user", err)
	}
	s.changed(ctx, sess, "user", userID, "updated")
	return user, nil
}

// DeleteUser removes another user's account.
func (s *DirectoryService) DeleteUser(ctx context.Context, sess *domain.Session, userID string) error {
	if !policy.CanManageUsers(sess.Role()) {
		return apperrors.NewForbidden("admin access required")
	}
	if userID == sess.User.ID {
		return apperrors.NewForbidden("you cannot delete your own account here")
	}
	if err := s.gateway.DeleteUser(ctx, sess.Token, userID); err != nil {
		return s.writeFailed(ctx, sess, "delete_user", err)
	}
	s.changed(ctx, sess, "user", userID, "deleted")
	return nil
}

// Profile returns the caller's own account.
func (s *DirectoryService) Profile(ctx context.Context, sess *domain.Session) (*domain.User, error) {
	return s.gateway.GetProfile(ctx, sess.Token)
}

// UpdateProfile saves the caller's own account and refreshes the session copy.
func (s *DirectoryService) UpdateProfile(ctx context.Context, sess *domain.Session, update gateway.UserUpdate) (*domain.User, error) {
	update, err := validUserUpdate(update)
	if err != nil {
		return nil, err
	}
	user, err := s.gateway.UpdateProfile(ctx, sess.Token, update)
	if err != nil {
		return nil, s.writeFailed(ctx, sess, "update_profile", err)
	}
	if user.Role == "" {
		user.Role = sess.User.Role
	}
	if s.sessions != nil {
		if err := s.sessions.Refresh(ctx, sess, *user); err != nil {
			s.logger.Warn("session refresh after profile update failed", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}
	s.changed(ctx, sess, "profile", user.ID, "updated")
	return user, nil
}

func validUserUpdate(update gateway.UserUpdate) (gateway.UserUpdate, error) {
	update.Name = strings.TrimSpace(update.Name)
	update.Email = strings.TrimSpace(update.Email)
	v := validation.Violations{}
	if update.Email != "" {
		validation.Email("email", update.Email, v)
	}
	validation.OptionalPhone("phone", update.Phone, v)
	if err := v.Err(); err != nil {
		return update, err
	}
	if strings.TrimSpace(update.Phone) != "" {
		update.Phone = validation.NormalizePhone(update.Phone)
	}
	return update, nil
}

func normalizeCompany(c domain.Company) domain.Company {
	c.Name = strings.TrimSpace(c.Name)
	c.ContactName = strings.TrimSpace(c.ContactName)
	c.ContactEmail = strings.TrimSpace(c.ContactEmail)
	if strings.TrimSpace(c.ContactPhone) != "" && validation.ValidPhone(c.ContactPhone) {
		c.ContactPhone = validation.NormalizePhone(c.ContactPhone)
	}
	return c
}

func (s *DirectoryService) writeFailed(ctx context.Context, sess *domain.Session, op string, err error) error {
	s.logger.Warn("directory write failed", zap.String("operation", op), zap.Error(err))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventWriteFailed,
		Actor:   events.ActorFromSession(sess),
		Payload: events.WriteFailedPayload{Operation: op, Message: apperrors.UserMessage(err, "the change could not be saved")},
	})
	return err
}

func (s *DirectoryService) changed(ctx context.Context, sess *domain.Session, resource, id, change string) {
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventDirectoryChanged,
		Actor:   events.ActorFromSession(sess),
		Payload: events.DirectoryChangedPayload{Resource: resource, ID: id, Change: change},
	})
}
