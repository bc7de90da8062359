package aspect

import (
	"log/slog"
	"sync"

	"github.com/tessro/chimera/internal/multicast"
	"github.com/tessro/chimera/internal/slot"
)

// Registry tracks which method slots are proxied.
// Entries are keyed by slot identity and live until Forget is called.
type Registry struct {
	// +checklocks:mu
	proxies map[any]any
	mu      sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{proxies: make(map[any]any)}
}

// Default is the registry used by the OnMethod* helpers.
var Default = NewRegistry()

// Len returns the number of tracked slots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.proxies)
}

// Forget drops the entry for key (a method slot). The slot keeps whatever it
// currently holds; the next hook registration creates a new proxy around it.
func (r *Registry) Forget(key any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.proxies, key)
}

// Lookup returns the proxy installed in s, if any.
func Lookup[R, A, T any](r *Registry, s *slot.Slot[Method[R, A, T]]) (*Proxy[R, A, T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lookupLocked(r, s)
}

// OnEntry proxies the method in s on first use and appends hook to the
// proxy's entry hooks. Later calls reuse the same proxy.
func OnEntry[R, A, T any](r *Registry, s *slot.Slot[Method[R, A, T]], hook EntryHook[R, A]) error {
	if hook == nil {
		return multicast.ErrNotCallable
	}
	p, err := ensureProxy(r, s)
	if err != nil {
		return err
	}
	return p.OnEntry(hook)
}

// OnExit proxies the method in s on first use and appends hook to the
// proxy's exit hooks. Later calls reuse the same proxy.
func OnExit[R, A, T any](r *Registry, s *slot.Slot[Method[R, A, T]], hook ExitHook[R, A, T]) error {
	if hook == nil {
		return multicast.ErrNotCallable
	}
	p, err := ensureProxy(r, s)
	if err != nil {
		return err
	}
	return p.OnExit(hook)
}

// Decorate wraps the method in s with d.
//
// When s holds a proxy, the proxy's core is replaced and its hooks keep
// running around the decorated core. Otherwise the slot's method is replaced
// directly. Either way the newest decorator runs outermost.
func Decorate[R, A, T any](r *Registry, s *slot.Slot[Method[R, A, T]], d Decorator[R, A, T]) error {
	if d == nil {
		return multicast.ErrNotCallable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := lookupLocked(r, s); ok {
		slog.Debug("aspect: decorating proxy core", "slot", s.Name())
		return p.Decorate(d)
	}

	prev := s.Get()
	if p, ok := prev.(*Proxy[R, A, T]); ok && p != nil {
		r.proxies[s] = p
		return p.Decorate(d)
	}
	if isNil(prev) {
		return multicast.ErrNotCallable
	}
	slog.Debug("aspect: decorating method", "slot", s.Name())
	return s.Set(decorate(d, prev))
}

// OnMethodEntry is OnEntry on the Default registry.
func OnMethodEntry[R, A, T any](s *slot.Slot[Method[R, A, T]], hook EntryHook[R, A]) error {
	return OnEntry(Default, s, hook)
}

// OnMethodExit is OnExit on the Default registry.
func OnMethodExit[R, A, T any](s *slot.Slot[Method[R, A, T]], hook ExitHook[R, A, T]) error {
	return OnExit(Default, s, hook)
}

// OnMethodDecorator is Decorate on the Default registry.
func OnMethodDecorator[R, A, T any](s *slot.Slot[Method[R, A, T]], d Decorator[R, A, T]) error {
	return Decorate(Default, s, d)
}

func ensureProxy[R, A, T any](r *Registry, s *slot.Slot[Method[R, A, T]]) (*Proxy[R, A, T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := lookupLocked(r, s); ok {
		return p, nil
	}

	// A proxy built elsewhere (NewProxy, OnFuncEntry) is adopted as is.
	current := s.Get()
	if p, ok := current.(*Proxy[R, A, T]); ok && p != nil {
		r.proxies[s] = p
		return p, nil
	}

	p, err := NewProxy(current)
	if err != nil {
		return nil, err
	}
	if err := s.Set(p); err != nil {
		return nil, err
	}
	r.proxies[s] = p
	slog.Debug("aspect: proxy installed", "slot", s.Name())
	return p, nil
}

// lookupLocked returns the registered proxy for s if s still holds it.
// An entry whose slot has since been reassigned is stale and is dropped.
//
// +checklocks:r.mu
func lookupLocked[R, A, T any](r *Registry, s *slot.Slot[Method[R, A, T]]) (*Proxy[R, A, T], bool) {
	p, ok := r.proxies[s].(*Proxy[R, A, T])
	if !ok {
		return nil, false
	}
	if current, ok := s.Get().(*Proxy[R, A, T]); !ok || current != p {
		delete(r.proxies, s)
		return nil, false
	}
	return p, true
}
