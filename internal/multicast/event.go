package multicast

import (
	"sync"

	"github.com/tessro/chimera/internal/slot"
)

// Event is a multicast bound to a fixed owner. Subscribers always receive
// the owner as their receiver, regardless of who raises the event.
type Event[O, A any] struct {
	list List[O, A]
	// owner and slot are immutable after creation; slot may be nil.
	owner O
	slot  *slot.Slot[*Event[O, A]]
	// +checklocks:mu
	locked bool
	mu     sync.Mutex
}

// NewEvent creates an event owned by owner. s is the slot on the owner that
// holds the event; it is what Lock freezes. s may be nil for an event that
// is never locked.
func NewEvent[O, A any](owner O, s *slot.Slot[*Event[O, A]]) *Event[O, A] {
	return &Event[O, A]{owner: owner, slot: s}
}

// Owner returns the receiver used for every subscriber.
func (e *Event[O, A]) Owner() O {
	return e.owner
}

// Slot returns the slot the event was bound to, or nil.
func (e *Event[O, A]) Slot() *slot.Slot[*Event[O, A]] {
	return e.slot
}

// Subscribe registers a listener. Returns ErrNotCallable if l is nil.
func (e *Event[O, A]) Subscribe(l Listener[O, A]) error {
	return e.list.Push(l)
}

// Raise calls every subscriber in order with the owner as receiver.
// It returns once all subscribers have run or one of them fails.
func (e *Event[O, A]) Raise(args A) error {
	return e.list.Dispatch(e.owner, args)
}

// Len returns the number of subscribers.
func (e *Event[O, A]) Len() int {
	return e.list.Len()
}

// Lock pins the event into its slot and makes the slot read-only.
// Returns ErrUnbound when the event was created without a slot.
func (e *Event[O, A]) Lock() error {
	if e.slot == nil {
		return ErrUnbound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locked {
		return nil
	}
	if e.slot.Locked() && e.slot.Get() == e {
		e.locked = true
		return nil
	}
	if err := e.slot.LockWith(e); err != nil {
		return err
	}
	e.locked = true
	return nil
}
