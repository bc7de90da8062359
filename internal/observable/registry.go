package observable

import (
	"log/slog"
	"sync"

	"github.com/tessro/chimera/internal/slot"
)

// Registry keeps track of watched slots so they can be released.
// Watched slots stay registered until Unwatch is called.
type Registry struct {
	// +checklocks:mu
	values map[any]detacher
	mu     sync.Mutex
}

type detacher interface {
	detach()
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{values: make(map[any]detacher)}
}

// Register watches s for owner, or returns the existing watcher if s is
// already watched with the same owner and value types. A watcher of other
// type arguments is detached and replaced.
func Register[O, T any](r *Registry, owner O, s *slot.Slot[T]) *Value[O, T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.values[s]; ok {
		if v, ok := existing.(*Value[O, T]); ok {
			return v
		}
		existing.detach()
		slog.Debug("observable: replacing watcher", "slot", s.Name())
	}
	v := Watch(owner, s)
	r.values[s] = v
	slog.Debug("observable: watching slot", "slot", s.Name())
	return v
}

// Lookup returns the watcher registered for s.
func Lookup[O, T any](r *Registry, s *slot.Slot[T]) (*Value[O, T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[s].(*Value[O, T])
	return v, ok
}

// Unwatch stops notifications for key (a watched slot) and forgets it.
// The slot keeps its current value. Returns false if key was not watched.
func (r *Registry) Unwatch(key any) bool {
	r.mu.Lock()
	v, ok := r.values[key]
	delete(r.values, key)
	r.mu.Unlock()

	if !ok {
		return false
	}
	v.detach()
	return true
}

// Len returns the number of watched slots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}
