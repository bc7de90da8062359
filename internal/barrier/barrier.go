// Package barrier provides a one-shot completion notifier for a dynamic set
// of jobs.
//
// Jobs may be registered before or after the barrier is armed. Completion
// fires exactly once: when the barrier is armed and no job is pending.
package barrier

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/tessro/chimera/internal/multicast"
)

// Errors returned by barrier operations.
var (
	// ErrComplete is returned when registering a job after completion.
	ErrComplete = errors.New("barrier: already complete")

	// ErrTokenSpent is returned when a job token is invoked a second time.
	ErrTokenSpent = errors.New("barrier: job token already invoked")
)

// State is the lifecycle state of a Barrier.
type State int

const (
	// StateIdle means the barrier has not been armed.
	StateIdle State = iota
	// StateArmed means the barrier is armed and jobs are still pending.
	StateArmed
	// StateComplete means completion has fired. It is terminal.
	StateComplete
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Token finishes the job it was returned for. It must be invoked once.
type Token func() error

// Listener is notified on completion. The receiver is the barrier.
type Listener = multicast.Listener[*Barrier, struct{}]

// Barrier tracks pending jobs and fires completion once all of them have
// finished after Arm was called.
type Barrier struct {
	completed *multicast.Event[*Barrier, struct{}]
	done      chan struct{}
	// +checklocks:mu
	pending map[uuid.UUID]struct{}
	// +checklocks:mu
	armed bool
	// +checklocks:mu
	complete bool
	mu       sync.Mutex
}

// New creates an idle barrier with no jobs.
func New() *Barrier {
	b := &Barrier{
		done:    make(chan struct{}),
		pending: make(map[uuid.UUID]struct{}),
	}
	b.completed = multicast.NewEvent[*Barrier, struct{}](b, nil)
	return b
}

// OnComplete subscribes l to the completion event.
// Listeners run at most once, with the barrier as receiver.
func (b *Barrier) OnComplete(l Listener) error {
	return b.completed.Subscribe(l)
}

// Done returns a channel that is closed once completion has fired.
func (b *Barrier) Done() <-chan struct{} {
	return b.done
}

// RegisterJob adds a pending job backed by fn and returns the token that
// finishes it. Invoking the token runs fn, removes the job and, if the
// barrier is armed and nothing else is pending, fires completion.
//
// An error from fn does not keep the job pending; it is returned from the
// token together with any completion listener error.
func (b *Barrier) RegisterJob(fn func() error) (Token, error) {
	if fn == nil {
		return nil, multicast.ErrNotCallable
	}
	j, err := b.add()
	if err != nil {
		return nil, err
	}
	return func() error { return j.run(b, fn) }, nil
}

// RegisterEmptyJob adds a pending job that does nothing but hold the
// barrier open until its token is invoked.
func (b *Barrier) RegisterEmptyJob() (Token, error) {
	return b.RegisterJob(func() error { return nil })
}

// RegisterAndRun registers fn and immediately invokes its token.
func (b *Barrier) RegisterAndRun(fn func() error) error {
	token, err := b.RegisterJob(fn)
	if err != nil {
		return err
	}
	return token()
}

// Forward registers fn as a job and returns a token that passes its
// argument through to fn.
func Forward[A any](b *Barrier, fn func(A) error) (func(A) error, error) {
	if fn == nil {
		return nil, multicast.ErrNotCallable
	}
	j, err := b.add()
	if err != nil {
		return nil, err
	}
	return func(a A) error {
		return j.run(b, func() error { return fn(a) })
	}, nil
}

// Arm starts the barrier. With no jobs pending, completion fires before Arm
// returns. Arming an armed or complete barrier is a no-op.
func (b *Barrier) Arm() error {
	b.mu.Lock()
	if b.armed || b.complete {
		b.mu.Unlock()
		return nil
	}
	b.armed = true
	fire := b.settleLocked()
	pending := len(b.pending)
	b.mu.Unlock()

	slog.Debug("barrier: armed", "pending", pending)
	if fire {
		return b.fire()
	}
	return nil
}

// State returns the current lifecycle state.
func (b *Barrier) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.complete:
		return StateComplete
	case b.armed:
		return StateArmed
	default:
		return StateIdle
	}
}

// Pending returns the number of jobs whose tokens have not been invoked.
func (b *Barrier) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Complete reports whether completion has fired.
func (b *Barrier) Complete() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.complete
}

func (b *Barrier) add() (*job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.complete {
		return nil, ErrComplete
	}
	j := &job{id: uuid.New()}
	b.pending[j.id] = struct{}{}
	return j, nil
}

func (b *Barrier) finish(id uuid.UUID) error {
	b.mu.Lock()
	delete(b.pending, id)
	fire := b.settleLocked()
	b.mu.Unlock()

	if fire {
		return b.fire()
	}
	return nil
}

// settleLocked marks the barrier complete if it is armed and drained.
// It returns true exactly once, to the caller that must fire completion.
//
// +checklocks:b.mu
func (b *Barrier) settleLocked() bool {
	if !b.armed || b.complete || len(b.pending) > 0 {
		return false
	}
	b.complete = true
	return true
}

// fire runs completion listeners. Must not be called with lock held.
func (b *Barrier) fire() error {
	slog.Debug("barrier: complete")
	defer close(b.done)
	return b.completed.Raise(struct{}{})
}

// job is one pending entry. Its token may run at most once.
type job struct {
	id   uuid.UUID
	once sync.Once
}

func (j *job) run(b *Barrier, fn func() error) error {
	spent := true
	j.once.Do(func() { spent = false })
	if spent {
		return ErrTokenSpent
	}
	return errors.Join(fn(), b.finish(j.id))
}
