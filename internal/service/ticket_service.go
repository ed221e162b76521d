package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/policy"
	"github.com/spec-kit/helpdesk-portal/internal/ticketcache"
	"github.com/spec-kit/helpdesk-portal/internal/views"
	"github.com/spec-kit/helpdesk-portal/internal/workflow"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// TicketService coordinates ticket views and workflows for a session.
type TicketService struct {
	gateway    TicketGateway
	companies  CompanyLister
	views      *views.Registry
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Gateway    TicketGateway
	Companies  CompanyLister
	Views      *views.Registry
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService builds the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		gateway:    deps.Gateway,
		companies:  deps.Companies,
		views:      deps.Views,
		dispatcher: deps.Dispatcher,
		logger:     logger.Named("tickets"),
	}
}

// TicketQuery describes the listing filters.
type TicketQuery struct {
	Status         string
	Search         string
	GroupByCompany bool
	Refresh        bool
}

// TicketRow is a ticket with the actions the viewer may take on it.
type TicketRow struct {
	Ticket  domain.Ticket
	Actions []policy.Action
}

// TicketGroup is a company heading with its rows.
type TicketGroup struct {
	Company string
	Rows    []TicketRow
}

// TicketListing is a rendered ticket view.
type TicketListing struct {
	Rows     []TicketRow
	Groups   []TicketGroup
	Total    int
	LoadedAt time.Time
	Creation *workflow.CreationSnapshot
}

// CreateTicketInput is one submission of the creation form. A nil Form
// resubmits the form retained from a failed attempt.
type CreateTicketInput struct {
	Form    *workflow.TicketForm
	Uploads []Upload
}

// Upload is a file received from the browser.
type Upload struct {
	FileName string
	Content  io.Reader
}

// List mounts the ticket view for sess (loading it on first use or when
// refresh is asked for) and returns the filtered rows.
func (s *TicketService) List(ctx context.Context, sess *domain.Session, q TicketQuery) (*TicketListing, error) {
	cache, err := s.mounted(ctx, sess, views.ViewTickets, q.Refresh)
	if err != nil {
		return nil, err
	}
	tickets := ticketcache.FilterByStatus(cache.Snapshot(), q.Status)
	tickets = ticketcache.FilterBySearchTerm(tickets, q.Search)

	_, loadedAt := cache.Loaded()
	listing := &TicketListing{
		Rows:     s.rows(sess.Role(), tickets),
		Total:    cache.Len(),
		LoadedAt: loadedAt,
	}
	if q.GroupByCompany {
		for _, g := range ticketcache.GroupByCompany(tickets) {
			listing.Groups = append(listing.Groups, TicketGroup{Company: g.Company, Rows: s.rows(sess.Role(), g.Tickets)})
		}
	}
	if policy.CanCreateTicket(sess.Role()) {
		snap := s.views.State(sess.ID).Creation().Snapshot()
		listing.Creation = &snap
	}
	return listing, nil
}

// Create submits the ticket creation form. On success the new ticket is put
// at the head of every mounted view of the session.
func (s *TicketService) Create(ctx context.Context, sess *domain.Session, in CreateTicketInput) (*domain.Ticket, error) {
	if !policy.CanCreateTicket(sess.Role()) {
		return nil, apperrors.NewForbidden("only clients can raise tickets")
	}
	st := s.views.State(sess.ID)
	form := st.Creation()

	if in.Form != nil {
		if form.Snapshot().State == workflow.CreationSubmitting {
			return nil, apperrors.NewInFlight("ticket submission already in progress")
		}
		// A fresh form starts over; attachments spooled for an earlier
		// attempt belong to that attempt only.
		form.Discard()
		if err := form.SetForm(*in.Form); err != nil {
			return nil, err
		}
		for _, u := range in.Uploads {
			if _, err := form.AddAttachment(u.FileName, u.Content); err != nil {
				return nil, err
			}
		}
	}

	attachments := len(form.Snapshot().Attachments)
	ticket, err := form.Submit(ctx, s.gateway, sess.Token)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.CodeValidation) && !apperrors.HasCode(err, apperrors.CodeInFlight) {
			s.logger.Warn("ticket creation failed", zap.String("session_id", sess.ID), zap.Error(err))
			publish(ctx, s.dispatcher, s.logger, events.Event{
				Type:    events.EventWriteFailed,
				Actor:   events.ActorFromSession(sess),
				Payload: events.WriteFailedPayload{Operation: "create_ticket", Message: apperrors.UserMessage(err, "could not create the ticket")},
			})
		}
		return nil, err
	}

	for _, cache := range st.Caches() {
		if loaded, _ := cache.Loaded(); loaded {
			cache.Prepend(*ticket)
		}
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.ActorFromSession(sess),
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Subject:      ticket.Subject,
			Priority:     ticket.Priority,
			Attachments:  attachments,
		},
	})
	return ticket, nil
}

// CreationForm returns the current state of the session's creation form.
func (s *TicketService) CreationForm(sess *domain.Session) workflow.CreationSnapshot {
	return s.views.State(sess.ID).Creation().Snapshot()
}

// DiscardCreation clears the creation form and its attachments.
func (s *TicketService) DiscardCreation(sess *domain.Session) {
	s.views.State(sess.ID).Creation().Discard()
}

// ChangeStatus applies status optimistically and reverts it if the backend
// refuses the write. Rejections by the access policy send nothing.
func (s *TicketService) ChangeStatus(ctx context.Context, sess *domain.Session, ticketID string, status domain.TicketStatus) (workflow.StatusChange, error) {
	cache, err := s.mounted(ctx, sess, views.ViewTickets, false)
	if err != nil {
		return workflow.StatusChange{TicketID: ticketID, Status: status}, err
	}
	st := s.views.State(sess.ID)
	change, err := st.StatusChanger().Change(ctx, cache, sess.Role(), sess.Token, ticketID, status)
	if err != nil {
		if change.Reverted {
			s.logger.Warn("status change reverted",
				zap.String("ticket_id", ticketID),
				zap.String("status", string(status)),
				zap.Error(err))
			publish(ctx, s.dispatcher, s.logger, events.Event{
				Type:     events.EventTicketStatusReverted,
				TicketID: ticketID,
				Actor:    events.ActorFromSession(sess),
				Payload:  events.WriteFailedPayload{Operation: "change_status", Message: apperrors.UserMessage(err, "could not update status")},
			})
		}
		return change, err
	}
	if change.Unchanged {
		return change, nil
	}
	for _, other := range st.Caches() {
		if other != cache {
			other.ApplyStatusChange(ticketID, change.Status)
		}
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Actor:    events.ActorFromSession(sess),
		Payload:  events.TicketStatusChangedPayload{OldStatus: change.Previous, NewStatus: change.Status},
	})
	return change, nil
}

// Unmount tears down every view the session holds.
func (s *TicketService) Unmount(sess *domain.Session) {
	s.views.Unmount(sess.ID)
}

// AnalyticsSummary aggregates the tickets visible to the viewer.
type AnalyticsSummary struct {
	Total      int
	Unassigned int
	ByStatus   map[domain.TicketStatus]int
	ByPriority map[domain.TicketPriority]int
	ByCategory map[domain.TicketCategory]int
	ByCompany  []CompanyCount
	LoadedAt   time.Time
}

// CompanyCount is the ticket volume of one company.
type CompanyCount struct {
	Company string
	Total   int
	Open    int
}

// Analytics summarises the session's ticket collection.
func (s *TicketService) Analytics(ctx context.Context, sess *domain.Session, refresh bool) (*AnalyticsSummary, error) {
	if !policy.CanViewAnalytics(sess.Role()) {
		return nil, apperrors.NewForbidden("analytics are not available for your role")
	}
	cache, err := s.mounted(ctx, sess, views.ViewAnalytics, refresh)
	if err != nil {
		return nil, err
	}
	_, loadedAt := cache.Loaded()
	summary := Summarize(cache.Snapshot())
	summary.LoadedAt = loadedAt
	return summary, nil
}

// Summarize counts tickets by status, priority, category and company.
func Summarize(tickets []domain.Ticket) *AnalyticsSummary {
	summary := &AnalyticsSummary{
		Total:      len(tickets),
		ByStatus:   map[domain.TicketStatus]int{},
		ByPriority: map[domain.TicketPriority]int{},
		ByCategory: map[domain.TicketCategory]int{},
	}
	for i := range tickets {
		t := &tickets[i]
		summary.ByStatus[t.Status]++
		if t.Priority != "" {
			summary.ByPriority[t.Priority]++
		}
		if t.Category != "" {
			summary.ByCategory[t.Category]++
		}
		if !t.Assigned() {
			summary.Unassigned++
		}
	}
	for _, g := range ticketcache.GroupByCompany(tickets) {
		count := CompanyCount{Company: g.Company, Total: len(g.Tickets)}
		for _, t := range g.Tickets {
			if t.Status == domain.TicketStatusOpen {
				count.Open++
			}
		}
		summary.ByCompany = append(summary.ByCompany, count)
	}
	sort.SliceStable(summary.ByCompany, func(i, j int) bool {
		return summary.ByCompany[i].Total > summary.ByCompany[j].Total
	})
	return summary
}

// mounted returns the loaded cache of view, fetching it if needed.
func (s *TicketService) mounted(ctx context.Context, sess *domain.Session, view views.View, refresh bool) (*ticketcache.Cache, error) {
	st := s.views.State(sess.ID)
	cache, _ := st.Mount(view, s.loader(sess))
	if loaded, _ := cache.Loaded(); loaded && !refresh {
		return cache, nil
	}
	if err := cache.Load(ctx); err != nil {
		if errors.Is(err, ticketcache.ErrUnmounted) {
			return nil, apperrors.NewAuthExpired("your session has ended, please log in again")
		}
		s.logger.Warn("ticket load failed", zap.String("session_id", sess.ID), zap.String("view", string(view)), zap.Error(err))
		return nil, err
	}
	return cache, nil
}

// loader fetches the session's tickets and resolves bare company ids so
// grouping and search see company names.
func (s *TicketService) loader(sess *domain.Session) ticketcache.LoadFunc {
	token, role := sess.Token, sess.Role()
	own := sess.User.Company
	return func(ctx context.Context) ([]domain.Ticket, error) {
		tickets, err := s.gateway.ListTickets(ctx, token)
		if err != nil {
			return nil, err
		}
		known := make(map[string]domain.Company)
		if own.Kind == domain.RefInline && own.Company != nil {
			known[own.ID] = *own.Company
		}
		if s.companies != nil && policy.CanListCompanies(role) && ticketcache.HasUnresolvedCompanies(tickets) {
			companies, err := s.companies.ListCompanies(ctx, token)
			if err != nil {
				s.logger.Warn("company lookup failed, names stay unresolved", zap.String("session_id", sess.ID), zap.Error(err))
			}
			for _, c := range companies {
				known[c.ID] = c
			}
		}
		return ticketcache.ResolveCompanies(tickets, known), nil
	}
}

func (s *TicketService) rows(role domain.Role, tickets []domain.Ticket) []TicketRow {
	rows := make([]TicketRow, 0, len(tickets))
	for i := range tickets {
		rows = append(rows, TicketRow{Ticket: tickets[i], Actions: policy.TicketActions(role, &tickets[i])})
	}
	return rows
}
