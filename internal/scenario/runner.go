package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tessro/chimera/internal/aspect"
	"github.com/tessro/chimera/internal/barrier"
	"github.com/tessro/chimera/internal/logging"
	"github.com/tessro/chimera/internal/multicast"
	"github.com/tessro/chimera/internal/slot"
)

// ErrTimeout is returned when the barrier does not complete in time.
var ErrTimeout = errors.New("scenario timed out")

// DefaultTimeout bounds a run when no timeout is given.
const DefaultTimeout = 30 * time.Second

// StepKind identifies what happened during a run.
type StepKind string

const (
	StepRegistered StepKind = "registered"
	StepArmed      StepKind = "armed"
	StepStart      StepKind = "start"
	StepFinish     StepKind = "finish"
	StepFailed     StepKind = "failed"
	StepReleased   StepKind = "released"
	StepComplete   StepKind = "complete"
)

// holdJob names the empty job that keeps the barrier open.
const holdJob = "hold"

// Step is one recorded event.
type Step struct {
	At   time.Duration // Offset from the start of the run
	Kind StepKind
	Job  string
	Err  string
}

// Result is the outcome of a run.
type Result struct {
	Scenario string
	Steps    []Step
	Elapsed  time.Duration
	Failed   []string
	// Complete is false when the run stopped before the barrier fired.
	Complete bool
}

// jobMethod is the intercepted body of one job.
type jobMethod = aspect.Method[*Runner, Job, string]

// Runner executes a scenario. Jobs finish on timers; the barrier decides when
// the run is over.
type Runner struct {
	sc      *Scenario
	timeout time.Duration
	steps   *multicast.Event[*Runner, Step]
	aspects *aspect.Registry
	// +checklocks:mu
	start time.Time
	// +checklocks:mu
	recorded []Step
	// +checklocks:mu
	failed []string
	mu     sync.Mutex
}

// NewRunner creates a runner for sc. A zero timeout means DefaultTimeout.
func NewRunner(sc *Scenario, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &Runner{
		sc:      sc,
		timeout: timeout,
		aspects: aspect.NewRegistry(),
	}
	r.steps = multicast.NewEvent[*Runner, Step](r, nil)
	return r
}

// Scenario returns the scenario being run.
func (r *Runner) Scenario() *Scenario {
	return r.sc
}

// OnStep subscribes l to every recorded step. Listeners may be called from
// timer goroutines.
func (r *Runner) OnStep(l multicast.Listener[*Runner, Step]) error {
	return r.steps.Subscribe(l)
}

// Run registers every job on a fresh barrier, schedules them and waits for
// completion, ctx cancellation or the timeout.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	r.start = time.Now()
	r.recorded = nil
	r.failed = nil
	r.mu.Unlock()

	b := barrier.New()
	if err := b.OnComplete(func(_ *barrier.Barrier, _ struct{}) error {
		return r.record(StepComplete, "", nil)
	}); err != nil {
		return nil, err
	}

	var timers []*time.Timer
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for _, job := range r.sc.Jobs {
		job := job
		body, err := r.intercept(job)
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", job.Name, err)
		}
		token, err := b.RegisterJob(func() error {
			_, err := body.Get().Invoke(r, job)
			return err
		})
		if err != nil {
			return nil, err
		}
		if err := r.record(StepRegistered, job.Name, nil); err != nil {
			return nil, err
		}
		timers = append(timers, time.AfterFunc(job.Delay, r.finisher(job.Name, token)))
	}

	if r.sc.Hold > 0 {
		hold, err := b.RegisterEmptyJob()
		if err != nil {
			return nil, err
		}
		timers = append(timers, time.AfterFunc(r.sc.Hold, func() {
			_ = r.record(StepReleased, holdJob, nil)
			r.finisher(holdJob, hold)()
		}))
	}

	arm := func() {
		if err := r.record(StepArmed, "", nil); err != nil {
			slog.Warn("scenario: step listener failed", "error", err)
		}
		if err := b.Arm(); err != nil {
			slog.Warn("scenario: completion listener failed", "error", err)
		}
	}
	if r.sc.ArmAfter > 0 {
		timers = append(timers, time.AfterFunc(r.sc.ArmAfter, arm))
	} else {
		arm()
	}

	timeout := time.NewTimer(r.timeout)
	defer timeout.Stop()

	select {
	case <-b.Done():
		return r.result(true), nil
	case <-ctx.Done():
		return r.result(false), ctx.Err()
	case <-timeout.C:
		return r.result(false), fmt.Errorf("%w after %s (%d jobs pending)", ErrTimeout, r.timeout, b.Pending())
	}
}

// intercept puts the job body in a slot and attaches the step-recording
// hooks. Failures are recorded by a decorator so that they are seen even
// though exit hooks are skipped when the body fails.
func (r *Runner) intercept(job Job) (*slot.Slot[jobMethod], error) {
	body := slot.New[jobMethod](job.Name, aspect.MethodFunc[*Runner, Job, string](work))

	if err := aspect.OnEntry(r.aspects, body, func(recv *Runner, j Job) error {
		return recv.record(StepStart, j.Name, nil)
	}); err != nil {
		return nil, err
	}
	if err := aspect.OnExit(r.aspects, body, func(recv *Runner, ret string, _ Job) error {
		return recv.record(StepFinish, ret, nil)
	}); err != nil {
		return nil, err
	}
	if err := aspect.Decorate(r.aspects, body, func(recv *Runner, core jobMethod, j Job) (string, error) {
		ret, err := core.Invoke(recv, j)
		if err != nil {
			recv.markFailed(j.Name)
			return ret, errors.Join(err, recv.record(StepFailed, j.Name, err))
		}
		return ret, nil
	}); err != nil {
		return nil, err
	}
	return body, nil
}

// finisher returns the timer callback that invokes a job token.
func (r *Runner) finisher(name string, token barrier.Token) func() {
	return func() {
		defer logging.LogPanic("job:"+name, nil)
		if err := token(); err != nil {
			slog.Debug("scenario: job finished with error", "job", name, "error", err)
		}
	}
}

// work is the body of every job.
func work(_ *Runner, j Job) (string, error) {
	if j.Fail {
		return j.Name, fmt.Errorf("job %q failed", j.Name)
	}
	return j.Name, nil
}

func (r *Runner) record(kind StepKind, job string, err error) error {
	r.mu.Lock()
	step := Step{At: time.Since(r.start), Kind: kind, Job: job}
	if err != nil {
		step.Err = err.Error()
	}
	r.recorded = append(r.recorded, step)
	r.mu.Unlock()

	return r.steps.Raise(step)
}

func (r *Runner) markFailed(job string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, job)
}

func (r *Runner) result(complete bool) *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	steps := make([]Step, len(r.recorded))
	copy(steps, r.recorded)
	failed := make([]string, len(r.failed))
	copy(failed, r.failed)

	return &Result{
		Scenario: r.sc.Name,
		Steps:    steps,
		Elapsed:  time.Since(r.start),
		Failed:   failed,
		Complete: complete,
	}
}
