// Package observable adds change notification to slots.
package observable

import (
	"sync"

	"github.com/tessro/chimera/internal/multicast"
	"github.com/tessro/chimera/internal/slot"
)

// ChangedPrefix is prepended to a slot name to name its change-event slot.
const ChangedPrefix = "onChanged_"

// Change is dispatched to listeners after a watched value is replaced.
type Change[T any] struct {
	New T
	Old T
}

// Value watches a slot. Writes made through Set notify OnChanged listeners
// with the owner as receiver.
type Value[O, T any] struct {
	owner   O
	slot    *slot.Slot[T]
	changed *multicast.Func[O, Change[T]]
	// changedSlot is locked on creation and always yields changed.
	changedSlot *slot.Slot[*multicast.Func[O, Change[T]]]
	// +checklocks:mu
	detached bool
	mu       sync.Mutex
}

// Watch starts observing s on behalf of owner.
func Watch[O, T any](owner O, s *slot.Slot[T]) *Value[O, T] {
	changed := multicast.NewFunc[O, Change[T]]()
	changedSlot := slot.New[*multicast.Func[O, Change[T]]](ChangedPrefix+s.Name(), nil)
	// A fresh slot cannot already be locked.
	_ = changed.Lock(changedSlot)

	return &Value[O, T]{
		owner:       owner,
		slot:        s,
		changed:     changed,
		changedSlot: changedSlot,
	}
}

// Name returns the watched slot's name.
func (v *Value[O, T]) Name() string {
	return v.slot.Name()
}

// Get returns the current value.
func (v *Value[O, T]) Get() T {
	return v.slot.Get()
}

// Set stores x and notifies listeners with the new and previous values.
// Returns slot.ErrLocked without notifying if the slot is locked.
// Listener errors are returned after the value has been stored.
func (v *Value[O, T]) Set(x T) error {
	v.mu.Lock()
	old := v.slot.Get()
	if err := v.slot.Set(x); err != nil {
		v.mu.Unlock()
		return err
	}
	detached := v.detached
	v.mu.Unlock()

	if detached {
		return nil
	}
	return v.changed.Call(v.owner, Change[T]{New: x, Old: old})
}

// OnChanged returns the change multicast. Push listeners onto it.
func (v *Value[O, T]) OnChanged() *multicast.Func[O, Change[T]] {
	return v.changed
}

// ChangedSlot returns the read-only slot holding the change multicast.
func (v *Value[O, T]) ChangedSlot() *slot.Slot[*multicast.Func[O, Change[T]]] {
	return v.changedSlot
}

func (v *Value[O, T]) detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detached = true
}
