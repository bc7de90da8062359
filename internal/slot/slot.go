// Package slot provides named, lockable value holders.
//
// A Slot stands in for an assignable field on an owner object. Other packages
// use slots as the unit of identity when they need to replace what a field
// holds (interception, observation) or freeze it (locking).
package slot

import (
	"errors"
	"sync"
)

// ErrLocked is returned when writing to a slot that has been locked.
var ErrLocked = errors.New("slot: locked and cannot be set")

// Slot holds a single value of type T under a name.
type Slot[T any] struct {
	name string // Immutable after creation
	// +checklocks:mu
	value T
	// +checklocks:mu
	locked bool
	mu     sync.RWMutex
}

// New creates an unlocked slot holding v.
func New[T any](name string, v T) *Slot[T] {
	return &Slot[T]{name: name, value: v}
}

// Name returns the slot name.
func (s *Slot[T]) Name() string {
	return s.name
}

// Get returns the current value.
func (s *Slot[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the current value.
// Returns ErrLocked if the slot has been locked.
func (s *Slot[T]) Set(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return ErrLocked
	}
	s.value = v
	return nil
}

// Lock makes the slot read-only. Locking is one-way and idempotent.
func (s *Slot[T]) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = true
}

// LockWith stores v and locks the slot in one step.
// Returns ErrLocked if the slot is already locked.
func (s *Slot[T]) LockWith(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return ErrLocked
	}
	s.value = v
	s.locked = true
	return nil
}

// Locked reports whether the slot is read-only.
func (s *Slot[T]) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locked
}
