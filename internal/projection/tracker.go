// Package projection guards against out-of-order fetch results.
package projection

import (
	"errors"
	"sync"
)

// ErrStaleProjection is returned by Commit when a newer fetch already
// published. Callers drop the result.
var ErrStaleProjection = errors.New("stale projection")

// Ticket identifies one fetch.
type Ticket uint64

// Tracker keeps the latest projection published by the most recently started
// fetch that has completed.
type Tracker[T any] struct {
	mu        sync.Mutex
	issued    Ticket
	committed Ticket
	value     T
	ok        bool
}

// Begin issues the ticket for a new fetch.
func (t *Tracker[T]) Begin() Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued++
	return t.issued
}

// Commit publishes value if no fetch started after ticket has committed.
func (t *Tracker[T]) Commit(ticket Ticket, value T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket == 0 || ticket > t.issued || ticket <= t.committed {
		return ErrStaleProjection
	}
	t.committed = ticket
	t.value = value
	t.ok = true
	return nil
}

// Latest returns the most recently committed value.
func (t *Tracker[T]) Latest() (T, Ticket, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value, t.committed, t.ok
}

// Reset forgets the published value, for example on wallet disconnect.
// Fetches started before Reset can no longer commit.
func (t *Tracker[T]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	t.value = zero
	t.ok = false
	t.committed = t.issued
}
