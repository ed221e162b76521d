package ticketcache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

func sampleTickets() []domain.Ticket {
	acme := domain.InlineCompany(domain.Company{ID: "c-1", Name: "Acme Corp"})
	globex := domain.InlineCompany(domain.Company{ID: "c-2", Name: "Globex"})
	return []domain.Ticket{
		{ID: "t-1", TicketNumber: "TCK-001", Subject: "Login issue", Description: "Cannot sign in", Status: domain.TicketStatusOpen, Company: acme},
		{ID: "t-2", TicketNumber: "TCK-002", Subject: "Invoice wrong", Description: "Billing mismatch", Status: domain.TicketStatusPending, Company: globex},
		{ID: "t-3", TicketNumber: "TCK-003", Subject: "Parcel late", Description: "Delivery delayed", Status: domain.TicketStatusResolved, Company: acme},
		{ID: "t-4", TicketNumber: "TCK-004", Subject: "Reset password", Description: "login loop", Status: domain.TicketStatusOpen, Company: domain.CompanyID("c-3")},
		{ID: "t-5", TicketNumber: "TCK-005", Subject: "Other", Description: "misc", Status: domain.TicketStatusOpen},
	}
}

func ids(tickets []domain.Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.ID)
	}
	return out
}

func TestFilterByStatus(t *testing.T) {
	tickets := sampleTickets()
	if got := ids(FilterByStatus(tickets, StatusAll)); !reflect.DeepEqual(got, ids(tickets)) {
		t.Fatalf("all must be identity, got %v", got)
	}
	if got := ids(FilterByStatus(tickets, "open")); !reflect.DeepEqual(got, []string{"t-1", "t-4", "t-5"}) {
		t.Fatalf("open = %v", got)
	}
	if got := FilterByStatus(tickets, "closed"); len(got) != 0 {
		t.Fatalf("unknown status should match nothing, got %v", ids(got))
	}
}

func TestFilterBySearchTerm(t *testing.T) {
	tickets := sampleTickets()
	tests := []struct {
		term string
		want []string
	}{
		{"", ids(tickets)},
		{"   ", nil},
		{" issue", []string{"t-1"}},
		{"issue ", nil},
		{"LOGIN", []string{"t-1", "t-4"}},
		{"tck-002", []string{"t-2"}},
		{"acme", []string{"t-1", "t-3"}},
		{"delivery", []string{"t-3"}},
		{"unknown company", nil},
	}
	for _, tt := range tests {
		got := ids(FilterBySearchTerm(tickets, tt.term))
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("FilterBySearchTerm(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestFilterBySearchTermIdempotent(t *testing.T) {
	tickets := sampleTickets()
	for _, term := range []string{"", "login", "acme", "TCK", "zzz"} {
		once := FilterBySearchTerm(tickets, term)
		twice := FilterBySearchTerm(once, term)
		if !reflect.DeepEqual(ids(once), ids(twice)) {
			t.Errorf("term %q: %v != %v", term, ids(once), ids(twice))
		}
	}
}

func TestGroupByCompanyPartitions(t *testing.T) {
	tickets := sampleTickets()
	groups := GroupByCompany(tickets)

	var names []string
	seen := map[string]int{}
	for _, g := range groups {
		names = append(names, g.Company)
		for _, tk := range g.Tickets {
			seen[tk.ID]++
		}
	}
	if !reflect.DeepEqual(names, []string{"Acme Corp", "Globex", domain.UnknownCompanyName}) {
		t.Fatalf("group order = %v", names)
	}
	if len(seen) != len(tickets) {
		t.Fatalf("groups cover %d tickets, want %d", len(seen), len(tickets))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("ticket %s appears %d times", id, n)
		}
	}
	if got := ids(groups[0].Tickets); !reflect.DeepEqual(got, []string{"t-1", "t-3"}) {
		t.Errorf("acme tickets = %v", got)
	}
	if got := ids(groups[2].Tickets); !reflect.DeepEqual(got, []string{"t-4", "t-5"}) {
		t.Errorf("unknown tickets = %v", got)
	}
}

func TestResolveCompaniesFeedsGroupingAndSearch(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "t-1", Subject: "Login issue", Company: domain.CompanyID("c-1")},
		{ID: "t-2", Subject: "Invoice wrong", Company: domain.InlineCompany(domain.Company{ID: "c-2", Name: "Globex"})},
		{ID: "t-3", Subject: "Parcel late", Company: domain.CompanyID("c-1")},
		{ID: "t-4", Subject: "Reset password", Company: domain.CompanyID("c-9")},
	}
	if !HasUnresolvedCompanies(tickets) {
		t.Fatal("expected unresolved company ids")
	}
	known := map[string]domain.Company{"c-1": {ID: "c-1", Name: "Acme Corp"}}
	tickets = ResolveCompanies(tickets, known)

	var names []string
	for _, g := range GroupByCompany(tickets) {
		names = append(names, g.Company)
	}
	if !reflect.DeepEqual(names, []string{"Acme Corp", "Globex", domain.UnknownCompanyName}) {
		t.Fatalf("group order = %v", names)
	}
	if got := ids(FilterBySearchTerm(tickets, "acme")); !reflect.DeepEqual(got, []string{"t-1", "t-3"}) {
		t.Errorf("search acme = %v", got)
	}
	if tickets[3].Company.Kind != domain.RefID || tickets[3].Company.ID != "c-9" {
		t.Errorf("unknown id must stay unresolved, got %+v", tickets[3].Company)
	}
	if !HasUnresolvedCompanies(tickets) {
		t.Error("c-9 is still unresolved")
	}
}

func TestGroupByCompanyEmpty(t *testing.T) {
	if groups := GroupByCompany(nil); len(groups) != 0 {
		t.Fatalf("expected no groups, got %v", groups)
	}
}

func loadedCache(t *testing.T) *Cache {
	t.Helper()
	c := New(func(ctx context.Context) ([]domain.Ticket, error) { return sampleTickets(), nil })
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestApplyStatusChange(t *testing.T) {
	c := loadedCache(t)
	before, _ := c.Get("t-2")

	prev, ok := c.ApplyStatusChange("t-2", domain.TicketStatusResolved)
	if !ok || prev != domain.TicketStatusPending {
		t.Fatalf("ApplyStatusChange = %q, %v", prev, ok)
	}
	after, _ := c.Get("t-2")
	if after.Status != domain.TicketStatusResolved {
		t.Fatalf("status = %s", after.Status)
	}
	after.Status = before.Status
	if !reflect.DeepEqual(before, after) {
		t.Fatal("fields other than status changed")
	}

	snapshot := ids(c.Snapshot())
	if _, ok := c.ApplyStatusChange("missing", domain.TicketStatusOpen); ok {
		t.Fatal("missing ticket must report not found")
	}
	if !reflect.DeepEqual(snapshot, ids(c.Snapshot())) {
		t.Fatal("missing ticket changed the collection")
	}
}

func TestApplyAssignment(t *testing.T) {
	c := loadedCache(t)
	if !c.ApplyAssignment("t-1", domain.EmployeeSummary{ID: "e-1", Name: "Ravi"}) {
		t.Fatal("assignment not applied")
	}
	got, _ := c.Get("t-1")
	if got.AssignedTo == nil || got.AssignedTo.ID != "e-1" {
		t.Fatalf("assignedTo = %+v", got.AssignedTo)
	}
	if c.ApplyAssignment("missing", domain.EmployeeSummary{ID: "e-1"}) {
		t.Fatal("missing ticket must report not found")
	}
}

func TestPrepend(t *testing.T) {
	c := loadedCache(t)
	c.Prepend(domain.Ticket{ID: "t-new", Status: domain.TicketStatusOpen})
	snap := c.Snapshot()
	if snap[0].ID != "t-new" || len(snap) != 6 {
		t.Fatalf("prepend failed: %v", ids(snap))
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := loadedCache(t)
	snap := c.Snapshot()
	snap[0].Subject = "mutated"
	got, _ := c.Get(snap[0].ID)
	if got.Subject == "mutated" {
		t.Fatal("snapshot shares backing array with cache")
	}
}

func TestLoadFailureThenRetry(t *testing.T) {
	calls := 0
	c := New(func(ctx context.Context) ([]domain.Ticket, error) {
		calls++
		if calls == 1 {
			return nil, apperrors.NewFetchError("could not load data, please retry", errors.New("connection refused"))
		}
		return sampleTickets(), nil
	})

	err := c.Load(context.Background())
	if !apperrors.IsFetchError(err) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if loaded, _ := c.Loaded(); loaded {
		t.Fatal("failed load must not mark cache loaded")
	}
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if c.Len() != 5 || calls != 2 {
		t.Fatalf("len=%d calls=%d", c.Len(), calls)
	}
}

func TestCloseCancelsInFlightLoad(t *testing.T) {
	started := make(chan struct{})
	c := New(func(ctx context.Context) ([]domain.Ticket, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-started
	c.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrUnmounted) {
			t.Fatalf("expected ErrUnmounted, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("load not cancelled by Close")
	}
	if err := c.Load(context.Background()); !errors.Is(err, ErrUnmounted) {
		t.Fatalf("load after close = %v", err)
	}
}
