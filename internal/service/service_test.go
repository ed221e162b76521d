package service

import (
	"context"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/gateway"
	"github.com/spec-kit/helpdesk-portal/internal/policy"
	"github.com/spec-kit/helpdesk-portal/internal/views"
	"github.com/spec-kit/helpdesk-portal/internal/workflow"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// fakeBackend is an in-memory stand-in for the helpdesk API.
type fakeBackend struct {
	mu           sync.Mutex
	tickets      []domain.Ticket
	companies    []domain.Company
	users        []domain.User
	employees    []domain.User
	listCalls    int
	statusCalls  int
	assignCalls  int
	companyCalls int
	attachments  []int

	listErr    error
	companyErr error
	createErr  error
	statusErr  error
	assignErr  error
	staffErr   error
	usersErr   error
}

func (f *fakeBackend) ListTickets(context.Context, string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Ticket(nil), f.tickets...), nil
}

func (f *fakeBackend) CreateTicket(_ context.Context, _ string, in gateway.CreateTicketInput) (*domain.Ticket, error) {
	f.mu.Lock()
	f.attachments = append(f.attachments, len(in.Attachments))
	f.mu.Unlock()
	for _, u := range in.Attachments {
		_, _ = io.Copy(io.Discard, u.Content)
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Ticket{ID: "t-new", TicketNumber: "TCK-100", Subject: in.Subject, Status: domain.TicketStatusOpen}, nil
}

func (f *fakeBackend) UpdateTicketStatus(context.Context, string, string, domain.TicketStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.statusErr
}

func (f *fakeBackend) AssignTicket(context.Context, string, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignCalls++
	return f.assignErr
}

func (f *fakeBackend) ListEligibleEmployees(context.Context, string, string) ([]domain.User, error) {
	return f.employees, f.staffErr
}

func (f *fakeBackend) ListCompanies(context.Context, string) ([]domain.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companyCalls++
	if f.companyErr != nil {
		return nil, f.companyErr
	}
	return f.companies, nil
}

func (f *fakeBackend) CreateCompany(_ context.Context, _ string, c domain.Company) (*domain.Company, error) {
	c.ID = "c-new"
	return &c, nil
}

func (f *fakeBackend) UpdateCompany(_ context.Context, _ string, c domain.Company) (*domain.Company, error) {
	return &c, nil
}

func (f *fakeBackend) DeleteCompany(context.Context, string, string) error { return nil }

func (f *fakeBackend) ListUsers(context.Context, string) ([]domain.User, error) {
	return f.users, f.usersErr
}

func (f *fakeBackend) UpdateUser(_ context.Context, _ string, id string, u gateway.UserUpdate) (*domain.User, error) {
	return &domain.User{ID: id, Name: u.Name, Email: u.Email, Phone: u.Phone}, nil
}

func (f *fakeBackend) UpdateUserRole(_ context.Context, _ string, id string, role domain.Role) (*domain.User, error) {
	return &domain.User{ID: id, Role: role}, nil
}

func (f *fakeBackend) DeleteUser(context.Context, string, string) error { return nil }

func (f *fakeBackend) GetProfile(context.Context, string) (*domain.User, error) {
	return &domain.User{ID: "u-1", Name: "Me"}, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, _ string, u gateway.UserUpdate) (*domain.User, error) {
	return &domain.User{ID: "u-1", Name: u.Name, Phone: u.Phone}, nil
}

type fixture struct {
	backend   *fakeBackend
	registry  *views.Registry
	notifier  *NotificationService
	tickets   *TicketService
	assign    *AssignmentService
	directory *DirectoryService
	dashboard *DashboardService
}

func newFixture(t *testing.T, backend *fakeBackend) *fixture {
	t.Helper()
	dispatcher := events.NewInMemoryDispatcher()
	registry := views.NewRegistry(views.Options{InboxSize: 10, SpoolDir: t.TempDir(), Status: backend})
	notifier := NewNotificationService(dispatcher, registry, nil)
	notifier.RegisterHandlers()
	tickets := NewTicketService(TicketDependencies{Gateway: backend, Companies: backend, Views: registry, Dispatcher: dispatcher})
	return &fixture{
		backend:   backend,
		registry:  registry,
		notifier:  notifier,
		tickets:   tickets,
		assign:    NewAssignmentService(AssignmentDependencies{Tickets: tickets, Gateway: backend, Views: registry, Dispatcher: dispatcher}),
		directory: NewDirectoryService(DirectoryDependencies{Gateway: backend, Dispatcher: dispatcher}),
		dashboard: NewDashboardService(tickets, backend, nil),
	}
}

func session(id string, role domain.Role) *domain.Session {
	return &domain.Session{ID: id, Token: "tok-" + id, User: domain.User{ID: "u-" + id, Role: role}}
}

func sampleTickets() []domain.Ticket {
	acme := domain.InlineCompany(domain.Company{ID: "c-1", Name: "Acme"})
	globex := domain.InlineCompany(domain.Company{ID: "c-2", Name: "Globex"})
	return []domain.Ticket{
		{ID: "t-1", Subject: "Login issue", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh, Company: acme},
		{ID: "t-2", Subject: "Invoice wrong", Status: domain.TicketStatusPending, Category: domain.CategoryBilling, Company: globex,
			AssignedTo: &domain.EmployeeSummary{ID: "e-1", Name: "Asha"}},
		{ID: "t-3", Subject: "Password reset", Status: domain.TicketStatusResolved, Company: acme},
	}
}

func TestListLoadsOnceAndFilters(t *testing.T) {
	f := newFixture(t, &fakeBackend{tickets: sampleTickets()})
	sess := session("s-1", domain.RoleEmployee)

	listing, err := f.tickets.List(context.Background(), sess, TicketQuery{Status: "open"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listing.Rows) != 1 || listing.Rows[0].Ticket.ID != "t-1" || listing.Total != 3 {
		t.Fatalf("unexpected listing: %+v", listing)
	}
	if !policy.Has(listing.Rows[0].Actions, policy.ActionChangeStatus) {
		t.Errorf("employee should be able to change status: %v", listing.Rows[0].Actions)
	}
	if listing.Creation != nil {
		t.Error("employees do not get a creation form")
	}

	listing, err = f.tickets.List(context.Background(), sess, TicketQuery{Search: "invoice", GroupByCompany: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listing.Groups) != 1 || listing.Groups[0].Company != "Globex" {
		t.Fatalf("unexpected groups: %+v", listing.Groups)
	}
	if f.backend.listCalls != 1 {
		t.Fatalf("list calls = %d, want 1", f.backend.listCalls)
	}

	if _, err := f.tickets.List(context.Background(), sess, TicketQuery{Refresh: true}); err != nil {
		t.Fatal(err)
	}
	if f.backend.listCalls != 2 {
		t.Fatalf("refresh should refetch, calls = %d", f.backend.listCalls)
	}
}

func TestListFetchFailure(t *testing.T) {
	f := newFixture(t, &fakeBackend{listErr: apperrors.NewFetchError("backend down", nil)})
	_, err := f.tickets.List(context.Background(), session("s-1", domain.RoleAdmin), TicketQuery{})
	if !apperrors.IsFetchError(err) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func idOnlyTickets() []domain.Ticket {
	return []domain.Ticket{
		{ID: "t-1", Subject: "Login issue", Status: domain.TicketStatusOpen, Company: domain.CompanyID("c-1")},
		{ID: "t-2", Subject: "Invoice wrong", Status: domain.TicketStatusOpen, Company: domain.CompanyID("c-2")},
		{ID: "t-3", Subject: "Password reset", Status: domain.TicketStatusOpen, Company: domain.CompanyID("c-1")},
	}
}

func groupNames(groups []TicketGroup) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g.Company)
	}
	return out
}

func TestListResolvesCompanyIDs(t *testing.T) {
	backend := &fakeBackend{
		tickets:   idOnlyTickets(),
		companies: []domain.Company{{ID: "c-1", Name: "Acme"}, {ID: "c-2", Name: "Globex"}},
	}
	f := newFixture(t, backend)
	sess := session("s-1", domain.RoleAdmin)

	listing, err := f.tickets.List(context.Background(), sess, TicketQuery{GroupByCompany: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := groupNames(listing.Groups); !reflect.DeepEqual(got, []string{"Acme", "Globex"}) {
		t.Fatalf("groups = %v", got)
	}
	listing, err = f.tickets.List(context.Background(), sess, TicketQuery{Search: "globex"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listing.Rows) != 1 || listing.Rows[0].Ticket.ID != "t-2" {
		t.Fatalf("search by company name = %+v", listing.Rows)
	}
	if backend.companyCalls != 1 {
		t.Errorf("company list fetched %d times, want 1", backend.companyCalls)
	}
}

func TestListCompanyLookupFailureKeepsTickets(t *testing.T) {
	backend := &fakeBackend{tickets: idOnlyTickets(), companyErr: apperrors.NewFetchError("companies unavailable", nil)}
	f := newFixture(t, backend)

	listing, err := f.tickets.List(context.Background(), session("s-1", domain.RoleEmployee), TicketQuery{GroupByCompany: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listing.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(listing.Rows))
	}
	if got := groupNames(listing.Groups); !reflect.DeepEqual(got, []string{domain.UnknownCompanyName}) {
		t.Fatalf("groups = %v", got)
	}
}

func TestListResolvesClientOwnCompany(t *testing.T) {
	backend := &fakeBackend{tickets: idOnlyTickets()[:1]}
	f := newFixture(t, backend)
	sess := session("s-1", domain.RoleClient)
	sess.User.Company = domain.InlineCompany(domain.Company{ID: "c-1", Name: "Acme"})

	listing, err := f.tickets.List(context.Background(), sess, TicketQuery{GroupByCompany: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := groupNames(listing.Groups); !reflect.DeepEqual(got, []string{"Acme"}) {
		t.Fatalf("groups = %v", got)
	}
	if backend.companyCalls != 0 {
		t.Error("clients must not fetch the company list")
	}
}

func TestCreatePrependsAndNotifies(t *testing.T) {
	f := newFixture(t, &fakeBackend{tickets: sampleTickets()})
	sess := session("s-1", domain.RoleClient)
	if _, err := f.tickets.List(context.Background(), sess, TicketQuery{}); err != nil {
		t.Fatal(err)
	}

	ticket, err := f.tickets.Create(context.Background(), sess, CreateTicketInput{
		Form: &workflow.TicketForm{
			Subject:     "New laptop",
			Category:    domain.CategoryTechnical,
			Priority:    domain.TicketPriorityLow,
			Description: "needs setup",
		},
		Uploads: []Upload{{FileName: "spec.pdf", Content: strings.NewReader("pdf")}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	listing, _ := f.tickets.List(context.Background(), sess, TicketQuery{})
	if listing.Rows[0].Ticket.ID != ticket.ID || len(listing.Rows) != 4 {
		t.Fatalf("new ticket not at head: %+v", listing.Rows)
	}
	notes := f.notifier.Pending(sess.ID)
	if len(notes) != 1 || notes[0].Level != views.LevelSuccess || !strings.Contains(notes[0].Message, "TCK-100") {
		t.Fatalf("unexpected notifications: %+v", notes)
	}
}

func TestCreateForbiddenForStaff(t *testing.T) {
	f := newFixture(t, &fakeBackend{})
	_, err := f.tickets.Create(context.Background(), session("s-1", domain.RoleAdmin), CreateTicketInput{Form: &workflow.TicketForm{}})
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateFailureKeepsFormAndNotifies(t *testing.T) {
	backend := &fakeBackend{createErr: apperrors.NewWriteFailure("subject too long", 400, nil)}
	f := newFixture(t, backend)
	sess := session("s-1", domain.RoleClient)
	form := workflow.TicketForm{Subject: "x", Category: domain.CategoryOther, Priority: domain.TicketPriorityLow, Description: "y"}

	if _, err := f.tickets.Create(context.Background(), sess, CreateTicketInput{Form: &form}); err == nil {
		t.Fatal("expected failure")
	}
	if snap := f.tickets.CreationForm(sess); snap.State != workflow.CreationFailed || snap.Form != form {
		t.Fatalf("form not kept: %+v", snap)
	}
	notes := f.notifier.Pending(sess.ID)
	if len(notes) != 1 || notes[0].Level != views.LevelError || notes[0].Message != "subject too long" {
		t.Fatalf("unexpected notifications: %+v", notes)
	}

	backend.createErr = nil
	if _, err := f.tickets.Create(context.Background(), sess, CreateTicketInput{}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
}

func TestFreshFormDropsAttachmentsOfFailedAttempt(t *testing.T) {
	backend := &fakeBackend{createErr: apperrors.NewWriteFailure("backend down", 503, nil)}
	f := newFixture(t, backend)
	sess := session("s-1", domain.RoleClient)
	form := workflow.TicketForm{Subject: "x", Category: domain.CategoryOther, Priority: domain.TicketPriorityLow, Description: "y"}
	uploads := []Upload{{FileName: "trace.log", Content: strings.NewReader("stack")}}

	if _, err := f.tickets.Create(context.Background(), sess, CreateTicketInput{Form: &form, Uploads: uploads}); err == nil {
		t.Fatal("expected failure")
	}
	if snap := f.tickets.CreationForm(sess); len(snap.Attachments) != 1 {
		t.Fatalf("failed attempt should keep its attachment: %+v", snap)
	}

	backend.createErr = nil
	other := workflow.TicketForm{Subject: "z", Category: domain.CategoryOther, Priority: domain.TicketPriorityLow, Description: "w"}
	if _, err := f.tickets.Create(context.Background(), sess, CreateTicketInput{Form: &other}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if want := []int{1, 0}; !reflect.DeepEqual(backend.attachments, want) {
		t.Fatalf("attachments sent per attempt = %v, want %v", backend.attachments, want)
	}
}

func TestChangeStatusRevertAndNotify(t *testing.T) {
	backend := &fakeBackend{tickets: sampleTickets(), statusErr: apperrors.NewWriteFailure("backend refused", 500, nil)}
	f := newFixture(t, backend)
	sess := session("s-1", domain.RoleAdmin)

	change, err := f.tickets.ChangeStatus(context.Background(), sess, "t-1", domain.TicketStatusResolved)
	if err == nil || !change.Reverted {
		t.Fatalf("expected revert, got %+v %v", change, err)
	}
	listing, _ := f.tickets.List(context.Background(), sess, TicketQuery{Status: "open"})
	if len(listing.Rows) != 1 {
		t.Fatal("status should be reverted to open")
	}
	notes := f.notifier.Pending(sess.ID)
	if len(notes) != 1 || notes[0].Level != views.LevelError || notes[0].TicketID != "t-1" {
		t.Fatalf("unexpected notifications: %+v", notes)
	}
}

func TestChangeStatusPolicyRejectsClient(t *testing.T) {
	backend := &fakeBackend{tickets: sampleTickets()}
	f := newFixture(t, backend)
	_, err := f.tickets.ChangeStatus(context.Background(), session("s-1", domain.RoleClient), "t-1", domain.TicketStatusPending)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) || backend.statusCalls != 0 {
		t.Fatalf("err=%v calls=%d", err, backend.statusCalls)
	}
}

func TestChangeStatusUpdatesOtherViews(t *testing.T) {
	f := newFixture(t, &fakeBackend{tickets: sampleTickets()})
	sess := session("s-1", domain.RoleEmployee)
	if _, err := f.dashboard.Load(context.Background(), sess, false); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tickets.ChangeStatus(context.Background(), sess, "t-1", domain.TicketStatusPending); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	dash, err := f.dashboard.Load(context.Background(), sess, false)
	if err != nil {
		t.Fatal(err)
	}
	if dash.Stats.Open != 0 || dash.Stats.Pending != 2 {
		t.Fatalf("dashboard not patched: %+v", dash.Stats)
	}
}

func TestAssignmentFlow(t *testing.T) {
	backend := &fakeBackend{tickets: sampleTickets(), employees: []domain.User{{ID: "e-7", Name: "Ravi"}}}
	f := newFixture(t, backend)
	sess := session("s-1", domain.RoleAdmin)

	snap, err := f.assign.Open(context.Background(), sess, "t-1")
	if err != nil || snap.State != workflow.AssignmentReady {
		t.Fatalf("Open: %+v %v", snap, err)
	}
	employee, _, err := f.assign.Confirm(context.Background(), sess, "t-1", "e-7")
	if err != nil || employee.Name != "Ravi" {
		t.Fatalf("Confirm: %+v %v", employee, err)
	}
	listing, _ := f.tickets.List(context.Background(), sess, TicketQuery{})
	if listing.Rows[0].Ticket.AssignedTo == nil || policy.Has(listing.Rows[0].Actions, policy.ActionAssign) {
		t.Fatalf("assigned ticket should lose the assign action: %+v", listing.Rows[0])
	}
	if _, err := f.assign.Open(context.Background(), sess, "t-1"); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("reopening an assigned ticket should conflict, got %v", err)
	}
}

func TestAssignmentForbiddenForEmployee(t *testing.T) {
	f := newFixture(t, &fakeBackend{tickets: sampleTickets()})
	if _, err := f.assign.Open(context.Background(), session("s-1", domain.RoleEmployee), "t-1"); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAssignmentEmployeeFetchFailureKeepsModalOpen(t *testing.T) {
	backend := &fakeBackend{tickets: sampleTickets(), staffErr: apperrors.NewFetchError("staff unavailable", nil)}
	f := newFixture(t, backend)
	snap, err := f.assign.Open(context.Background(), session("s-1", domain.RoleAdmin), "t-1")
	if !apperrors.IsFetchError(err) || snap.State != workflow.AssignmentOpen || snap.Error != "staff unavailable" {
		t.Fatalf("snap=%+v err=%v", snap, err)
	}
}

func TestAnalyticsSummary(t *testing.T) {
	f := newFixture(t, &fakeBackend{tickets: sampleTickets()})
	if _, err := f.tickets.Analytics(context.Background(), session("s-1", domain.RoleClient), false); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("clients should not see analytics, got %v", err)
	}
	summary, err := f.tickets.Analytics(context.Background(), session("s-2", domain.RoleAdmin), false)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 3 || summary.Unassigned != 2 || summary.ByStatus[domain.TicketStatusOpen] != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.ByCompany[0].Company != "Acme" || summary.ByCompany[0].Total != 2 || summary.ByCompany[0].Open != 1 {
		t.Fatalf("unexpected company counts: %+v", summary.ByCompany)
	}
}

func TestDashboardAdminCounts(t *testing.T) {
	backend := &fakeBackend{
		tickets:   sampleTickets(),
		companies: []domain.Company{{ID: "c-1"}, {ID: "c-2"}},
		users: []domain.User{
			{ID: "u-1", Role: domain.RoleAdmin},
			{ID: "u-2", Role: domain.RoleEmployee},
			{ID: "u-3", Role: domain.RoleClient},
			{ID: "u-4", Role: domain.RoleClient},
		},
	}
	f := newFixture(t, backend)
	dash, err := f.dashboard.Load(context.Background(), session("s-1", domain.RoleAdmin), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if dash.Companies != 2 || dash.Employees != 1 || dash.Clients != 2 || dash.Stats.Total != 3 || len(dash.Recent) != 3 {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}
}

func TestDashboardAdminFailsWhenAnyFetchFails(t *testing.T) {
	backend := &fakeBackend{tickets: sampleTickets(), usersErr: apperrors.NewFetchError("users down", nil)}
	f := newFixture(t, backend)
	if _, err := f.dashboard.Load(context.Background(), session("s-1", domain.RoleAdmin), false); !apperrors.IsFetchError(err) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestDirectoryRoleChange(t *testing.T) {
	f := newFixture(t, &fakeBackend{})
	admin := session("s-1", domain.RoleAdmin)

	if _, err := f.directory.ChangeRole(context.Background(), admin, admin.User.ID, domain.RoleClient, domain.RoleAdmin); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("self role change must be forbidden, got %v", err)
	}
	user, err := f.directory.ChangeRole(context.Background(), admin, "u-9", "", domain.RoleClient)
	if err != nil || user.Role != domain.RoleEmployee {
		t.Fatalf("toggle: %+v %v", user, err)
	}
	if _, err := f.directory.ChangeRole(context.Background(), session("s-2", domain.RoleEmployee), "u-9", domain.RoleAdmin, domain.RoleClient); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("employees cannot change roles, got %v", err)
	}
}

func TestDirectoryCompanyValidation(t *testing.T) {
	f := newFixture(t, &fakeBackend{})
	admin := session("s-1", domain.RoleAdmin)
	_, err := f.directory.CreateCompany(context.Background(), admin, domain.Company{Name: " ", Plan: "Gold"})
	de := apperrors.ToDomainError(err)
	if de.Code != apperrors.CodeValidation || de.Details["name"] == nil || de.Details["plan"] == nil {
		t.Fatalf("unexpected error: %+v", de)
	}
	created, err := f.directory.CreateCompany(context.Background(), admin, domain.Company{Name: "Initech", ContactPhone: "098765 43210", Plan: domain.PlanStarter})
	if err != nil || created.ID != "c-new" || created.ContactPhone != "9876543210" {
		t.Fatalf("create: %+v %v", created, err)
	}
}

func TestOverviewResolvesCompanies(t *testing.T) {
	backend := &fakeBackend{
		companies: []domain.Company{{ID: "c-1", Name: "Acme"}},
		users:     []domain.User{{ID: "u-1", Company: domain.CompanyID("c-1")}, {ID: "u-2", Company: domain.CompanyID("c-9")}},
	}
	f := newFixture(t, backend)
	overview, err := f.directory.Overview(context.Background(), session("s-1", domain.RoleAdmin))
	if err != nil {
		t.Fatal(err)
	}
	if overview.Users[0].Company.DisplayName() != "Acme" || overview.Users[1].Company.DisplayName() != domain.UnknownCompanyName {
		t.Fatalf("unexpected companies: %+v", overview.Users)
	}
}

func TestToggleRole(t *testing.T) {
	tests := []struct {
		in, want domain.Role
	}{
		{domain.RoleClient, domain.RoleEmployee},
		{domain.RoleEmployee, domain.RoleClient},
		{domain.RoleAdmin, domain.RoleClient},
	}
	for _, tt := range tests {
		if got := ToggleRole(tt.in); got != tt.want {
			t.Errorf("ToggleRole(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
