// Package toast keeps short-lived notices for each caller.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Info    Level = "info"
)

type Toast struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Toaster struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	byOwner map[string][]Toast
}

func New(ttl time.Duration) *Toaster {
	return &Toaster{ttl: ttl, now: time.Now, byOwner: make(map[string][]Toast)}
}

// WithClock replaces the time source.
func (t *Toaster) WithClock(now func() time.Time) *Toaster {
	t.now = now
	return t
}

func (t *Toaster) Push(owner string, level Level, message string) Toast {
	n := Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		ExpiresAt: t.now().Add(t.ttl),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.byOwner[owner] = append(t.byOwner[owner], n)
	return n
}

// Active returns the unexpired toasts of owner, oldest first.
func (t *Toaster) Active(owner string) []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	live := t.pruneLocked(owner, t.now())
	return append([]Toast(nil), live...)
}

func (t *Toaster) Dismiss(owner, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	list := t.byOwner[owner]
	for i, n := range list {
		if n.ID == id {
			t.byOwner[owner] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Sweep drops every expired toast and returns how many were removed.
func (t *Toaster) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for owner, list := range t.byOwner {
		removed += len(list) - len(t.pruneLocked(owner, now))
	}
	return removed
}

func (t *Toaster) pruneLocked(owner string, now time.Time) []Toast {
	list := t.byOwner[owner]
	live := list[:0:0]
	for _, n := range list {
		if now.Before(n.ExpiresAt) {
			live = append(live, n)
		}
	}

	if len(live) == 0 {
		delete(t.byOwner, owner)
		return nil
	}
	t.byOwner[owner] = live
	return live
}
