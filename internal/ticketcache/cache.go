// Package ticketcache holds the tickets fetched for one mounted view and the
// filter and grouping operations the view renders from.
package ticketcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// ErrUnmounted is returned when a load finishes after the owning view went away.
var ErrUnmounted = errors.New("view unmounted")

// LoadFunc fetches every ticket visible to the current actor.
type LoadFunc func(ctx context.Context) ([]domain.Ticket, error)

// Cache is the per-view ticket collection. Writes are patched in only after
// the backend acknowledged them.
type Cache struct {
	mu       sync.RWMutex
	load     LoadFunc
	tickets  []domain.Ticket
	loaded   bool
	loadedAt time.Time

	life   context.Context
	cancel context.CancelFunc
}

// New creates an empty cache backed by load.
func New(load LoadFunc) *Cache {
	life, cancel := context.WithCancel(context.Background())
	return &Cache{load: load, life: life, cancel: cancel}
}

// Load refetches the collection. It is cancelled when either ctx ends or
// the cache is closed, and never overwrites state after Close.
func (c *Cache) Load(ctx context.Context) error {
	if c.life.Err() != nil {
		return ErrUnmounted
	}
	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.life, cancel)
	defer stop()

	tickets, err := c.load(loadCtx)
	if c.life.Err() != nil {
		return ErrUnmounted
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickets = tickets
	c.loaded = true
	c.loadedAt = time.Now()
	return nil
}

// Close cancels in-flight loads and marks the cache unmounted.
func (c *Cache) Close() {
	c.cancel()
}

// Closed reports whether Close has been called.
func (c *Cache) Closed() bool {
	return c.life.Err() != nil
}

// Loaded reports whether at least one load succeeded and when.
func (c *Cache) Loaded() (bool, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded, c.loadedAt
}

// Snapshot returns a copy of the cached tickets in their current order.
func (c *Cache) Snapshot() []domain.Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Ticket, len(c.tickets))
	copy(out, c.tickets)
	return out
}

// Len returns the number of cached tickets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tickets)
}

// Get returns the cached ticket with id.
func (c *Cache) Get(id string) (domain.Ticket, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.tickets[i], true
	}
	return domain.Ticket{}, false
}

// FilterByStatus filters the cached collection; see FilterByStatus.
func (c *Cache) FilterByStatus(status string) []domain.Ticket {
	return FilterByStatus(c.Snapshot(), status)
}

// FilterBySearchTerm filters the cached collection; see FilterBySearchTerm.
func (c *Cache) FilterBySearchTerm(term string) []domain.Ticket {
	return FilterBySearchTerm(c.Snapshot(), term)
}

// GroupByCompany groups the cached collection; see GroupByCompany.
func (c *Cache) GroupByCompany() []Group {
	return GroupByCompany(c.Snapshot())
}

// Prepend puts a newly created ticket at the head of the collection.
func (c *Cache) Prepend(ticket domain.Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickets = append([]domain.Ticket{ticket}, c.tickets...)
}

// ApplyStatusChange replaces only the status of ticket id. It returns the
// previous status and false when the ticket is not cached.
func (c *Cache) ApplyStatusChange(id string, status domain.TicketStatus) (domain.TicketStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return "", false
	}
	prev := c.tickets[i].Status
	c.tickets[i].Status = status
	return prev, true
}

// ApplyAssignment sets the assignee of ticket id.
func (c *Cache) ApplyAssignment(id string, employee domain.EmployeeSummary) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	assignee := employee
	c.tickets[i].AssignedTo = &assignee
	return true
}

func (c *Cache) indexOf(id string) int {
	for i := range c.tickets {
		if c.tickets[i].ID == id {
			return i
		}
	}
	return -1
}
