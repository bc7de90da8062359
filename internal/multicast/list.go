// Package multicast provides listener lists that forward one invocation to
// every registered listener.
//
// Every listener receives an explicit receiver value alongside the arguments.
// A Func forwards whatever receiver its caller supplies; an Event always uses
// the owner it was created with.
package multicast

import (
	"errors"
	"sync"
)

// Errors returned by multicast operations.
var (
	// ErrNotCallable is returned when a nil listener is registered.
	ErrNotCallable = errors.New("multicast: listener is not callable")

	// ErrUnbound is returned when locking an event that has no slot.
	ErrUnbound = errors.New("multicast: event is not bound to a slot")
)

// Listener is a callable registered on a List. recv is the receiver the
// listener runs against and args the forwarded arguments.
type Listener[R, A any] func(recv R, args A) error

// List is an ordered collection of listeners.
// Insertion order is dispatch order and duplicates are kept.
// The zero value is ready to use.
type List[R, A any] struct {
	// +checklocks:mu
	listeners []Listener[R, A]
	mu        sync.RWMutex
}

// Push appends a listener. Returns ErrNotCallable if l is nil.
func (l *List[R, A]) Push(listener Listener[R, A]) error {
	if listener == nil {
		return ErrNotCallable
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, listener)
	return nil
}

// Dispatch calls every listener in insertion order with recv and args.
//
// Dispatch iterates over a copy of the listener slice, so listeners pushed
// while a dispatch is in progress run from the next dispatch on.
// The first listener error stops the dispatch and is returned unwrapped.
// Must not be called with lock held.
func (l *List[R, A]) Dispatch(recv R, args A) error {
	for _, fn := range l.snapshot() {
		if err := fn(recv, args); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of registered listeners.
func (l *List[R, A]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.listeners)
}

func (l *List[R, A]) snapshot() []Listener[R, A] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	listeners := make([]Listener[R, A], len(l.listeners))
	copy(listeners, l.listeners)
	return listeners
}
