// Package views keeps the per-session state a browser tab would otherwise
// hold in memory: mounted ticket caches, open assignment modals, the ticket
// creation form and pending notifications.
package views

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/ticketcache"
	"github.com/spec-kit/helpdesk-portal/internal/workflow"
)

// View names a mounted ticket listing.
type View string

const (
	ViewTickets   View = "tickets"
	ViewDashboard View = "dashboard"
	ViewAnalytics View = "analytics"
)

// Options configures the registry.
type Options struct {
	InboxSize int
	SpoolDir  string
	Status    workflow.StatusWriter
	Logger    *zap.Logger
}

// Registry holds view state per session id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*State
	opts     Options
	logger   *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*State),
		opts:     opts,
		logger:   logger.Named("views"),
	}
}

// State returns the state of sessionID, creating it on first use.
func (r *Registry) State(sessionID string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sessions[sessionID]
	if !ok {
		st = newState(r.opts)
		r.sessions[sessionID] = st
	}
	return st
}

// Lookup returns the state of sessionID without creating it.
func (r *Registry) Lookup(sessionID string) (*State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sessions[sessionID]
	return st, ok
}

// Unmount tears down every view of sessionID: caches are closed, which
// cancels in-flight loads, and spooled attachments are released.
func (r *Registry) Unmount(sessionID string) {
	r.mu.Lock()
	st, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	if !ok {
		return
	}
	st.teardown()
	r.logger.Debug("session views unmounted", zap.String("session_id", sessionID))
}

// Sessions reports how many sessions currently hold view state.
func (r *Registry) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// SessionIDs lists the sessions holding view state.
func (r *Registry) SessionIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// State is the view state of one session.
type State struct {
	mu       sync.Mutex
	caches   map[View]*ticketcache.Cache
	modals   map[string]*workflow.AssignmentModal
	creation *workflow.CreationWorkflow
	status   *workflow.StatusChanger
	inbox    *Inbox
}

func newState(opts Options) *State {
	return &State{
		caches:   make(map[View]*ticketcache.Cache),
		modals:   make(map[string]*workflow.AssignmentModal),
		creation: workflow.NewCreationWorkflow(opts.SpoolDir),
		status:   workflow.NewStatusChanger(opts.Status),
		inbox:    NewInbox(opts.InboxSize),
	}
}

// Mount returns the cache for view, creating it with load when absent or
// closed. The second result is true when the cache was created.
func (s *State) Mount(view View, load ticketcache.LoadFunc) (*ticketcache.Cache, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.caches[view]; ok && !c.Closed() {
		return c, false
	}
	c := ticketcache.New(load)
	s.caches[view] = c
	return c, true
}

// Cache returns the mounted cache for view.
func (s *State) Cache(view View) (*ticketcache.Cache, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caches[view]
	if !ok || c.Closed() {
		return nil, false
	}
	return c, true
}

// Caches returns every mounted cache.
func (s *State) Caches() []*ticketcache.Cache {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ticketcache.Cache, 0, len(s.caches))
	for _, c := range s.caches {
		if !c.Closed() {
			out = append(out, c)
		}
	}
	return out
}

// UnmountView closes the cache of view.
func (s *State) UnmountView(view View) {
	s.mu.Lock()
	c, ok := s.caches[view]
	delete(s.caches, view)
	s.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Modal returns the assignment modal for ticketID, creating a closed one.
func (s *State) Modal(ticketID string) *workflow.AssignmentModal {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.modals[ticketID]
	if !ok {
		m = workflow.NewAssignmentModal(ticketID)
		s.modals[ticketID] = m
	}
	return m
}

// DropModal forgets the modal for ticketID.
func (s *State) DropModal(ticketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.modals, ticketID)
}

// Creation returns the session's ticket creation form.
func (s *State) Creation() *workflow.CreationWorkflow { return s.creation }

// StatusChanger returns the session's status changer.
func (s *State) StatusChanger() *workflow.StatusChanger { return s.status }

// Inbox returns the session's notification inbox.
func (s *State) Inbox() *Inbox { return s.inbox }

func (s *State) teardown() {
	s.mu.Lock()
	caches := s.caches
	modals := s.modals
	s.caches = make(map[View]*ticketcache.Cache)
	s.modals = make(map[string]*workflow.AssignmentModal)
	s.mu.Unlock()

	for _, c := range caches {
		c.Close()
	}
	for _, m := range modals {
		m.Close()
	}
	s.creation.Discard()
}
