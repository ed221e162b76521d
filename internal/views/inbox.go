package views

import (
	"sync"
	"time"
)

// Level classifies a notification for display.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a user-facing message produced by a workflow outcome.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	TicketID  string    `json:"ticketId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Inbox is a bounded FIFO of notifications; the oldest entry is dropped once
// capacity is reached.
type Inbox struct {
	mu    sync.Mutex
	limit int
	items []Notification
}

// NewInbox returns an inbox holding at most limit entries.
func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = 20
	}
	return &Inbox{limit: limit}
}

// Push appends n.
func (i *Inbox) Push(n Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.items = append(i.items, n)
	if over := len(i.items) - i.limit; over > 0 {
		i.items = append([]Notification(nil), i.items[over:]...)
	}
}

// List returns the pending notifications, oldest first.
func (i *Inbox) List() []Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Notification(nil), i.items...)
}

// Drain returns and clears the pending notifications.
func (i *Inbox) Drain() []Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.items
	i.items = nil
	return out
}

// Len reports the number of pending notifications.
func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.items)
}
