// Package aspect intercepts methods held in slots.
//
// A Proxy replaces the method in a slot and runs entry hooks, the core
// method, then exit hooks. Decorators replace the core with a wrapper that
// decides whether and how the previous core runs. Hooks and decorators can
// be applied repeatedly; the proxy in a slot is created once and reused.
package aspect

import (
	"sync"

	"github.com/tessro/chimera/internal/multicast"
)

// Method is anything callable with a receiver and arguments.
type Method[R, A, T any] interface {
	Invoke(recv R, args A) (T, error)
}

// MethodFunc adapts a plain function to Method.
type MethodFunc[R, A, T any] func(recv R, args A) (T, error)

// Invoke calls f(recv, args).
func (f MethodFunc[R, A, T]) Invoke(recv R, args A) (T, error) {
	return f(recv, args)
}

// EntryHook runs before the core method with the call's receiver and arguments.
type EntryHook[R, A any] func(recv R, args A) error

// ExitHook runs after the core method. ret is the core's return value.
// Exit hooks observe the result; they cannot change it.
type ExitHook[R, A, T any] func(recv R, ret T, args A) error

// Decorator wraps the core method. It is responsible for invoking core (or
// not) and returns the final result of the call.
type Decorator[R, A, T any] func(recv R, core Method[R, A, T], args A) (T, error)

// Return is the payload dispatched to exit hooks.
type Return[A, T any] struct {
	Value T
	Args  A
}

// Proxy is an intercepted method.
type Proxy[R, A, T any] struct {
	entry *multicast.Func[R, A]
	exit  *multicast.Func[R, Return[A, T]]
	// +checklocks:mu
	core Method[R, A, T]
	mu   sync.RWMutex
}

// NewProxy wraps m. Returns multicast.ErrNotCallable if m is nil.
func NewProxy[R, A, T any](m Method[R, A, T]) (*Proxy[R, A, T], error) {
	if isNil(m) {
		return nil, multicast.ErrNotCallable
	}
	return &Proxy[R, A, T]{
		entry: multicast.NewFunc[R, A](),
		exit:  multicast.NewFunc[R, Return[A, T]](),
		core:  m,
	}, nil
}

// Invoke runs entry hooks, the core method and exit hooks in that order, all
// with recv and args, and returns the core's result.
// The first error from any step is returned and the remaining steps are
// skipped.
func (p *Proxy[R, A, T]) Invoke(recv R, args A) (T, error) {
	var zero T

	if err := p.entry.Call(recv, args); err != nil {
		return zero, err
	}

	ret, err := p.Core().Invoke(recv, args)
	if err != nil {
		return zero, err
	}

	if err := p.exit.Call(recv, Return[A, T]{Value: ret, Args: args}); err != nil {
		return zero, err
	}
	return ret, nil
}

// OnEntry appends an entry hook.
func (p *Proxy[R, A, T]) OnEntry(hook EntryHook[R, A]) error {
	return p.entry.Push(multicast.Listener[R, A](hook))
}

// OnExit appends an exit hook.
func (p *Proxy[R, A, T]) OnExit(hook ExitHook[R, A, T]) error {
	if hook == nil {
		return multicast.ErrNotCallable
	}
	return p.exit.Push(func(recv R, r Return[A, T]) error {
		return hook(recv, r.Value, r.Args)
	})
}

// Decorate replaces the core with d wrapped around the previous core.
// The most recently applied decorator runs outermost.
func (p *Proxy[R, A, T]) Decorate(d Decorator[R, A, T]) error {
	if d == nil {
		return multicast.ErrNotCallable
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.core = decorate(d, p.core)
	return nil
}

// Core returns the method currently wrapped by the proxy.
func (p *Proxy[R, A, T]) Core() Method[R, A, T] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.core
}

// Hooks returns the number of entry and exit hooks.
func (p *Proxy[R, A, T]) Hooks() (entry, exit int) {
	return p.entry.Len(), p.exit.Len()
}

// OnFuncEntry adds an entry hook to m, proxying it first unless it already is
// a proxy. It returns the proxy to call instead of m.
func OnFuncEntry[R, A, T any](m Method[R, A, T], hook EntryHook[R, A]) (*Proxy[R, A, T], error) {
	p, err := asProxy(m)
	if err != nil {
		return nil, err
	}
	if err := p.OnEntry(hook); err != nil {
		return nil, err
	}
	return p, nil
}

// OnFuncExit adds an exit hook to m, proxying it first unless it already is
// a proxy. It returns the proxy to call instead of m.
func OnFuncExit[R, A, T any](m Method[R, A, T], hook ExitHook[R, A, T]) (*Proxy[R, A, T], error) {
	p, err := asProxy(m)
	if err != nil {
		return nil, err
	}
	if err := p.OnExit(hook); err != nil {
		return nil, err
	}
	return p, nil
}

func asProxy[R, A, T any](m Method[R, A, T]) (*Proxy[R, A, T], error) {
	if p, ok := m.(*Proxy[R, A, T]); ok && p != nil {
		return p, nil
	}
	return NewProxy(m)
}

func decorate[R, A, T any](d Decorator[R, A, T], core Method[R, A, T]) Method[R, A, T] {
	return MethodFunc[R, A, T](func(recv R, args A) (T, error) {
		return d(recv, core, args)
	})
}

// isNil reports whether m is nil or wraps a nil function or proxy.
func isNil[R, A, T any](m Method[R, A, T]) bool {
	switch v := m.(type) {
	case nil:
		return true
	case MethodFunc[R, A, T]:
		return v == nil
	case *Proxy[R, A, T]:
		return v == nil
	}
	return false
}
