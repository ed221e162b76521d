package ticketcache

import (
	"strings"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// Group is the tickets of one company, in collection order.
type Group struct {
	Company string          `json:"company"`
	Tickets []domain.Ticket `json:"tickets"`
}

// FilterByStatus keeps tickets whose status equals status, preserving order.
// An empty status or StatusAll returns the input unchanged.
func FilterByStatus(tickets []domain.Ticket, status string) []domain.Ticket {
	if status == "" || status == StatusAll {
		return tickets
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if string(t.Status) == status {
			out = append(out, t)
		}
	}
	return out
}

// FilterBySearchTerm keeps tickets whose subject, description, ticket number
// or company name contains term, ignoring case. The term is matched as typed,
// surrounding spaces included. An empty term returns the input.
func FilterBySearchTerm(tickets []domain.Ticket, term string) []domain.Ticket {
	if term == "" {
		return tickets
	}
	needle := strings.ToLower(term)
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if matches(t, needle) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t domain.Ticket, needle string) bool {
	fields := [...]string{t.Subject, t.Description, t.TicketNumber, companyName(t)}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func companyName(t domain.Ticket) string {
	if t.Company.Kind == domain.RefInline && t.Company.Company != nil {
		return t.Company.Company.Name
	}
	return ""
}

// HasUnresolvedCompanies reports whether any ticket carries a bare company id.
func HasUnresolvedCompanies(tickets []domain.Ticket) bool {
	for _, t := range tickets {
		if t.Company.Kind == domain.RefID {
			return true
		}
	}
	return false
}

// ResolveCompanies swaps bare company ids for the matching records in known,
// in place. Ids missing from known are left as they are.
func ResolveCompanies(tickets []domain.Ticket, known map[string]domain.Company) []domain.Ticket {
	if len(known) == 0 {
		return tickets
	}
	for i := range tickets {
		tickets[i].Company = tickets[i].Company.Resolve(known)
	}
	return tickets
}

// GroupByCompany partitions tickets by company display name. Groups appear in
// order of first occurrence and every ticket lands in exactly one group.
func GroupByCompany(tickets []domain.Ticket) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, t := range tickets {
		name := t.Company.DisplayName()
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Company: name})
		}
		groups[i].Tickets = append(groups[i].Tickets, t)
	}
	return groups
}
