package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/views"
)

const recentTicketCount = 5

// DashboardService assembles the role-specific landing page.
type DashboardService struct {
	tickets   *TicketService
	directory DirectoryGateway
	logger    *zap.Logger
}

// NewDashboardService creates the service.
func NewDashboardService(tickets *TicketService, directory DirectoryGateway, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{tickets: tickets, directory: directory, logger: logger.Named("dashboard")}
}

// DashboardStats counts the tickets on the dashboard.
type DashboardStats struct {
	Total      int
	Open       int
	Pending    int
	Resolved   int
	Unassigned int
}

// Dashboard is the landing page content.
type Dashboard struct {
	Role      domain.Role
	User      domain.User
	Stats     DashboardStats
	Recent    []TicketRow
	Companies int
	Employees int
	Clients   int
	LoadedAt  time.Time
}

// Load builds the dashboard for sess. Admins also get company and user
// counts, fetched concurrently with the tickets.
func (s *DashboardService) Load(ctx context.Context, sess *domain.Session, refresh bool) (*Dashboard, error) {
	dash := &Dashboard{Role: sess.Role(), User: sess.User}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cache, err := s.tickets.mounted(gctx, sess, views.ViewDashboard, refresh)
		if err != nil {
			return err
		}
		tickets := cache.Snapshot()
		_, dash.LoadedAt = cache.Loaded()
		dash.Stats = statsOf(tickets)
		n := len(tickets)
		if n > recentTicketCount {
			n = recentTicketCount
		}
		dash.Recent = s.tickets.rows(sess.Role(), tickets[:n])
		return nil
	})
	if sess.Role() == domain.RoleAdmin {
		g.Go(func() error {
			companies, err := s.directory.ListCompanies(gctx, sess.Token)
			if err != nil {
				return err
			}
			dash.Companies = len(companies)
			return nil
		})
		g.Go(func() error {
			users, err := s.directory.ListUsers(gctx, sess.Token)
			if err != nil {
				return err
			}
			for _, u := range users {
				switch u.Role {
				case domain.RoleEmployee:
					dash.Employees++
				case domain.RoleClient:
					dash.Clients++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("dashboard load failed", zap.String("session_id", sess.ID), zap.Error(err))
		return nil, err
	}
	return dash, nil
}

func statsOf(tickets []domain.Ticket) DashboardStats {
	stats := DashboardStats{Total: len(tickets)}
	for i := range tickets {
		switch tickets[i].Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusPending:
			stats.Pending++
		case domain.TicketStatusResolved:
			stats.Resolved++
		}
		if !tickets[i].Assigned() {
			stats.Unassigned++
		}
	}
	return stats
}
