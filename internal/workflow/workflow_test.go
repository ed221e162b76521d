package workflow

import (
	"context"
	"errors"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/gateway"
	"github.com/spec-kit/helpdesk-portal/internal/ticketcache"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

type fakeCreator struct {
	err      error
	gotInput gateway.CreateTicketInput
	gotFiles map[string]string
	calls    int
}

func (f *fakeCreator) CreateTicket(_ context.Context, _ string, in gateway.CreateTicketInput) (*domain.Ticket, error) {
	f.calls++
	f.gotInput = in
	f.gotFiles = map[string]string{}
	for _, u := range in.Attachments {
		raw, _ := io.ReadAll(u.Content)
		f.gotFiles[u.FileName] = string(raw)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Ticket{ID: "t-new", Subject: in.Subject, Status: domain.TicketStatusOpen}, nil
}

func validForm() TicketForm {
	return TicketForm{
		Subject:     "Login issue",
		Phone:       "+91 98765-43210",
		Category:    domain.CategoryTechnical,
		Priority:    domain.TicketPriorityHigh,
		Description: "cannot log in",
	}
}

func TestCreationRejectsInvalidFormWithoutSending(t *testing.T) {
	w := NewCreationWorkflow(t.TempDir())
	_ = w.SetForm(TicketForm{Subject: " ", Phone: "12345"})
	creator := &fakeCreator{}

	_, err := w.Submit(context.Background(), creator, "tok")
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"subject", "description", "category", "priority", "phone"} {
		if _, ok := de.Details[field]; !ok {
			t.Errorf("missing violation for %s: %v", field, de.Details)
		}
	}
	if creator.calls != 0 {
		t.Fatal("invalid form must not be sent")
	}
	if w.Snapshot().State != CreationIdle {
		t.Fatalf("state = %s", w.Snapshot().State)
	}
}

func TestCreationSuccessClearsFormAndReleasesAttachments(t *testing.T) {
	dir := t.TempDir()
	w := NewCreationWorkflow(dir)
	_ = w.SetForm(validForm())
	if _, err := w.AddAttachment("screen.png", strings.NewReader("png-bytes")); err != nil {
		t.Fatalf("AddAttachment: %v", err)
	}
	creator := &fakeCreator{}

	ticket, err := w.Submit(context.Background(), creator, "tok")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ticket.ID != "t-new" {
		t.Fatalf("ticket = %+v", ticket)
	}
	if creator.gotInput.Phone != "9876543210" {
		t.Errorf("phone not normalized: %q", creator.gotInput.Phone)
	}
	if creator.gotFiles["screen.png"] != "png-bytes" {
		t.Errorf("attachment content = %v", creator.gotFiles)
	}

	snap := w.Snapshot()
	if snap.State != CreationSuccess || snap.Form != (TicketForm{}) || len(snap.Attachments) != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("spooled files not released: %d left", len(entries))
	}
}

func TestCreationFailureKeepsFormForRetry(t *testing.T) {
	dir := t.TempDir()
	w := NewCreationWorkflow(dir)
	form := validForm()
	_ = w.SetForm(form)
	_, _ = w.AddAttachment("log.txt", strings.NewReader("trace"))
	creator := &fakeCreator{err: apperrors.NewWriteFailure("subject too long", 400, nil)}

	if _, err := w.Submit(context.Background(), creator, "tok"); err == nil {
		t.Fatal("expected failure")
	}
	snap := w.Snapshot()
	if snap.State != CreationFailed || snap.Error != "subject too long" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Form != form || len(snap.Attachments) != 1 {
		t.Fatalf("form not preserved: %+v", snap)
	}

	creator.err = nil
	if _, err := w.Submit(context.Background(), creator, "tok"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if creator.gotFiles["log.txt"] != "trace" {
		t.Errorf("retry lost attachment: %v", creator.gotFiles)
	}
}

func TestCreationDiscardReleasesAttachments(t *testing.T) {
	dir := t.TempDir()
	w := NewCreationWorkflow(dir)
	_, _ = w.AddAttachment("a.txt", strings.NewReader("a"))
	_, _ = w.AddAttachment("b.txt", strings.NewReader("b"))
	w.Discard()

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("discard left %d files", len(entries))
	}
	if w.Snapshot().State != CreationIdle {
		t.Fatal("discard should reset to idle")
	}
}

type blockingCreator struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingCreator) CreateTicket(ctx context.Context, _ string, in gateway.CreateTicketInput) (*domain.Ticket, error) {
	close(b.started)
	<-b.release
	return &domain.Ticket{ID: "t-1"}, nil
}

func TestCreationRejectsDuplicateSubmission(t *testing.T) {
	w := NewCreationWorkflow(t.TempDir())
	_ = w.SetForm(validForm())
	creator := &blockingCreator{started: make(chan struct{}), release: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background(), creator, "tok")
		done <- err
	}()
	<-creator.started

	if _, err := w.Submit(context.Background(), creator, "tok"); !apperrors.HasCode(err, apperrors.CodeInFlight) {
		t.Fatalf("expected in-flight rejection, got %v", err)
	}
	if err := w.SetForm(TicketForm{}); !apperrors.HasCode(err, apperrors.CodeInFlight) {
		t.Fatalf("form edit during submission should be rejected, got %v", err)
	}
	close(creator.release)
	if err := <-done; err != nil {
		t.Fatalf("first submission: %v", err)
	}
}

type fakeLister struct {
	users []domain.User
	err   error
}

func (f fakeLister) ListEligibleEmployees(context.Context, string, string) ([]domain.User, error) {
	return f.users, f.err
}

type countingAssigner struct {
	mu      sync.Mutex
	calls   int
	err     error
	started chan struct{}
	release chan struct{}
}

func (a *countingAssigner) AssignTicket(context.Context, string, string, string) error {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.started != nil {
		close(a.started)
		<-a.release
	}
	return a.err
}

func loadedCache(t *testing.T, tickets ...domain.Ticket) *ticketcache.Cache {
	t.Helper()
	c := ticketcache.New(func(context.Context) ([]domain.Ticket, error) { return tickets, nil })
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

var employees = []domain.User{
	{ID: "e-1", Name: "Asha", Email: "asha@example.com", Role: domain.RoleEmployee},
	{ID: "e-2", Name: "Ravi", Role: domain.RoleEmployee},
}

func TestAssignmentHappyPath(t *testing.T) {
	cache := loadedCache(t, domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen})
	m := NewAssignmentModal("t-1")

	if err := m.Open(context.Background(), fakeLister{users: employees}, "tok"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if snap := m.Snapshot(); snap.State != AssignmentReady || len(snap.Employees) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if err := m.Select("e-1"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	assigner := &countingAssigner{}
	employee, err := m.Confirm(context.Background(), assigner, "tok", cache)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if employee.Name != "Asha" || m.Snapshot().State != AssignmentAssigned {
		t.Fatalf("employee=%+v state=%s", employee, m.Snapshot().State)
	}
	got, _ := cache.Get("t-1")
	if got.AssignedTo == nil || got.AssignedTo.ID != "e-1" {
		t.Fatalf("cache not patched: %+v", got.AssignedTo)
	}
}

func TestAssignmentEmployeeFetchFailureStaysOpen(t *testing.T) {
	m := NewAssignmentModal("t-1")
	err := m.Open(context.Background(), fakeLister{err: apperrors.NewFetchError("backend down", nil)}, "tok")
	if !apperrors.IsFetchError(err) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	snap := m.Snapshot()
	if snap.State != AssignmentOpen || snap.Error != "backend down" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if _, err := m.Confirm(context.Background(), &countingAssigner{}, "tok", nil); err == nil {
		t.Fatal("confirm must fail before employees load")
	}
}

func TestAssignmentRejectsUnknownEmployee(t *testing.T) {
	m := NewAssignmentModal("t-1")
	_ = m.Open(context.Background(), fakeLister{users: employees}, "tok")
	if err := m.Select("e-9"); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := m.Confirm(context.Background(), &countingAssigner{}, "tok", nil); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("confirm without selection should fail validation, got %v", err)
	}
}

func TestAssignmentSingleInFlightSubmission(t *testing.T) {
	cache := loadedCache(t, domain.Ticket{ID: "t-1"})
	m := NewAssignmentModal("t-1")
	_ = m.Open(context.Background(), fakeLister{users: employees}, "tok")
	_ = m.Select("e-2")

	assigner := &countingAssigner{started: make(chan struct{}), release: make(chan struct{})}
	done := make(chan error, 1)
	go func() {
		_, err := m.Confirm(context.Background(), assigner, "tok", cache)
		done <- err
	}()
	<-assigner.started

	if _, err := m.Confirm(context.Background(), assigner, "tok", cache); !apperrors.HasCode(err, apperrors.CodeInFlight) {
		t.Fatalf("expected in-flight, got %v", err)
	}
	m.Close()
	if m.Snapshot().State != AssignmentAssigning {
		t.Fatal("close must not interrupt an outstanding assignment")
	}
	close(assigner.release)
	if err := <-done; err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if assigner.calls != 1 {
		t.Fatalf("assign calls = %d, want 1", assigner.calls)
	}
}

func TestAssignmentFailureAllowsRetry(t *testing.T) {
	cache := loadedCache(t, domain.Ticket{ID: "t-1"})
	m := NewAssignmentModal("t-1")
	_ = m.Open(context.Background(), fakeLister{users: employees}, "tok")
	_ = m.Select("e-1")

	assigner := &countingAssigner{err: apperrors.NewConflict("ticket already assigned", nil)}
	if _, err := m.Confirm(context.Background(), assigner, "tok", cache); err == nil {
		t.Fatal("expected failure")
	}
	snap := m.Snapshot()
	if snap.State != AssignmentFailed || snap.Error != "ticket already assigned" || snap.Selected != "e-1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if got, _ := cache.Get("t-1"); got.AssignedTo != nil {
		t.Fatal("cache must not change on failure")
	}

	assigner.err = nil
	if _, err := m.Confirm(context.Background(), assigner, "tok", cache); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

type blockingLister struct {
	release chan struct{}
}

func (b blockingLister) ListEligibleEmployees(context.Context, string, string) ([]domain.User, error) {
	<-b.release
	return employees, nil
}

func TestAssignmentCloseDiscardsLateEmployeeList(t *testing.T) {
	m := NewAssignmentModal("t-1")
	lister := blockingLister{release: make(chan struct{})}
	done := make(chan error, 1)
	go func() { done <- m.Open(context.Background(), lister, "tok") }()

	for m.Snapshot().State != AssignmentOpen {
		runtime.Gosched()
	}
	m.Close()
	close(lister.release)
	<-done

	if snap := m.Snapshot(); snap.State != AssignmentClosed || len(snap.Employees) != 0 {
		t.Fatalf("late result applied: %+v", snap)
	}
}

type fakeStatusWriter struct {
	calls int
	err   error
}

func (f *fakeStatusWriter) UpdateTicketStatus(context.Context, string, string, domain.TicketStatus) error {
	f.calls++
	return f.err
}

func TestStatusChangeSuccess(t *testing.T) {
	cache := loadedCache(t, domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen})
	writer := &fakeStatusWriter{}
	s := NewStatusChanger(writer)

	change, err := s.Change(context.Background(), cache, domain.RoleEmployee, "tok", "t-1", domain.TicketStatusPending)
	if err != nil {
		t.Fatalf("Change: %v", err)
	}
	if change.Previous != domain.TicketStatusOpen || change.Status != domain.TicketStatusPending || change.Reverted {
		t.Fatalf("unexpected change: %+v", change)
	}
	if got, _ := cache.Get("t-1"); got.Status != domain.TicketStatusPending {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestStatusChangeRevertsOnFailure(t *testing.T) {
	cache := loadedCache(t, domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen, Subject: "keep"})
	writer := &fakeStatusWriter{err: apperrors.NewWriteFailure("backend refused", 500, nil)}
	s := NewStatusChanger(writer)

	change, err := s.Change(context.Background(), cache, domain.RoleAdmin, "tok", "t-1", domain.TicketStatusResolved)
	if err == nil {
		t.Fatal("expected error")
	}
	if !change.Reverted || change.Status != domain.TicketStatusOpen {
		t.Fatalf("unexpected change: %+v", change)
	}
	got, _ := cache.Get("t-1")
	if got.Status != domain.TicketStatusOpen || got.Subject != "keep" {
		t.Fatalf("ticket not restored: %+v", got)
	}
}

func TestStatusChangePolicyRejectsWithoutWrite(t *testing.T) {
	tests := []struct {
		name   string
		role   domain.Role
		ticket domain.Ticket
	}{
		{name: "client", role: domain.RoleClient, ticket: domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen}},
		{name: "employee on resolved", role: domain.RoleEmployee, ticket: domain.Ticket{ID: "t-1", Status: domain.TicketStatusResolved}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := loadedCache(t, tt.ticket)
			writer := &fakeStatusWriter{}
			_, err := NewStatusChanger(writer).Change(context.Background(), cache, tt.role, "tok", "t-1", domain.TicketStatusPending)
			if !apperrors.HasCode(err, apperrors.CodeForbidden) {
				t.Fatalf("expected forbidden, got %v", err)
			}
			if writer.calls != 0 {
				t.Fatal("rejected change must not write")
			}
		})
	}
}

func TestStatusChangeUnknownTicketAndStatus(t *testing.T) {
	cache := loadedCache(t, domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen})
	s := NewStatusChanger(&fakeStatusWriter{})

	if _, err := s.Change(context.Background(), cache, domain.RoleAdmin, "tok", "t-9", domain.TicketStatusPending); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.Change(context.Background(), cache, domain.RoleAdmin, "tok", "t-1", "closed"); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStatusChangeSameStatusIsNoop(t *testing.T) {
	cache := loadedCache(t, domain.Ticket{ID: "t-1", Status: domain.TicketStatusPending})
	writer := &fakeStatusWriter{}
	change, err := NewStatusChanger(writer).Change(context.Background(), cache, domain.RoleAdmin, "tok", "t-1", domain.TicketStatusPending)
	if err != nil || !change.Unchanged || writer.calls != 0 {
		t.Fatalf("change=%+v err=%v calls=%d", change, err, writer.calls)
	}
}

func TestStatusChangeWrapsCause(t *testing.T) {
	cache := loadedCache(t, domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen})
	cause := errors.New("boom")
	_, err := NewStatusChanger(&fakeStatusWriter{err: cause}).Change(context.Background(), cache, domain.RoleAdmin, "tok", "t-1", domain.TicketStatusPending)
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
}
