package barrier

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tessro/chimera/internal/multicast"
)

// countCompletions subscribes a listener counting completion events.
func countCompletions(t *testing.T, b *Barrier) *int {
	t.Helper()
	var n int
	if err := b.OnComplete(func(recv *Barrier, _ struct{}) error {
		if recv != b {
			t.Errorf("completion receiver = %p, want barrier %p", recv, b)
		}
		n++
		return nil
	}); err != nil {
		t.Fatalf("OnComplete() error = %v", err)
	}
	return &n
}

func TestBarrier_ArmWithNoJobs(t *testing.T) {
	b := New()
	fired := countCompletions(t, b)

	if b.State() != StateIdle {
		t.Errorf("State() = %v, want idle", b.State())
	}
	if err := b.Arm(); err != nil {
		t.Fatalf("Arm() error = %v", err)
	}
	if *fired != 1 {
		t.Errorf("completion fired %d times, want 1 (synchronously in Arm)", *fired)
	}
	if b.State() != StateComplete || !b.Complete() {
		t.Errorf("State() = %v, want complete", b.State())
	}

	// Arming again does nothing
	_ = b.Arm()
	if *fired != 1 {
		t.Errorf("completion fired %d times after re-arm, want 1", *fired)
	}
}

func TestBarrier_JobsAfterArm(t *testing.T) {
	b := New()
	fired := countCompletions(t, b)

	var ran1, ran2, ran3 bool
	token3, _ := b.RegisterJob(func() error {
		ran3 = true
		return nil
	})
	if err := b.Arm(); err != nil {
		t.Fatalf("Arm() error = %v", err)
	}
	token1, _ := b.RegisterJob(func() error {
		ran1 = true
		return nil
	})
	token2, _ := b.RegisterJob(func() error {
		ran2 = true
		return nil
	})

	if b.State() != StateArmed {
		t.Errorf("State() = %v, want armed", b.State())
	}

	_ = token1()
	_ = token2()
	if *fired != 0 {
		t.Fatal("completion fired before the last job finished")
	}
	if b.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", b.Pending())
	}

	_ = token3()
	if *fired != 1 {
		t.Errorf("completion fired %d times, want 1", *fired)
	}
	if !ran1 || !ran2 || !ran3 {
		t.Errorf("ran = %v %v %v, want all true", ran1, ran2, ran3)
	}
}

func TestBarrier_JobsBeforeArm(t *testing.T) {
	b := New()
	fired := countCompletions(t, b)

	for i := 0; i < 3; i++ {
		token, err := b.RegisterJob(func() error { return nil })
		if err != nil {
			t.Fatalf("RegisterJob() error = %v", err)
		}
		_ = token()
	}
	if *fired != 0 {
		t.Fatal("completion should not fire before Arm")
	}

	_ = b.Arm()
	if *fired != 1 {
		t.Errorf("completion fired %d times, want 1 at arm time", *fired)
	}
}

func TestBarrier_EmptyJobHoldsOpen(t *testing.T) {
	b := New()
	fired := countCompletions(t, b)

	hold, err := b.RegisterEmptyJob()
	if err != nil {
		t.Fatalf("RegisterEmptyJob() error = %v", err)
	}
	_ = b.Arm()
	if *fired != 0 {
		t.Fatal("empty job should hold the barrier open")
	}

	_ = hold()
	if *fired != 1 {
		t.Errorf("completion fired %d times, want 1", *fired)
	}
}

func TestBarrier_RegisterAndRun(t *testing.T) {
	b := New()
	fired := countCompletions(t, b)

	var ran bool
	if err := b.RegisterAndRun(func() error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("RegisterAndRun() error = %v", err)
	}
	if !ran {
		t.Error("job should run immediately")
	}
	if b.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", b.Pending())
	}

	_ = b.Arm()
	if *fired != 1 {
		t.Errorf("completion fired %d times, want 1", *fired)
	}
}

func TestBarrier_RegisterAfterComplete(t *testing.T) {
	b := New()
	_ = b.Arm()

	if _, err := b.RegisterJob(func() error { return nil }); !errors.Is(err, ErrComplete) {
		t.Errorf("RegisterJob() error = %v, want ErrComplete", err)
	}
	if _, err := b.RegisterEmptyJob(); !errors.Is(err, ErrComplete) {
		t.Errorf("RegisterEmptyJob() error = %v, want ErrComplete", err)
	}
}

func TestBarrier_TokenSpent(t *testing.T) {
	b := New()
	fired := countCompletions(t, b)

	var runs int
	token, _ := b.RegisterJob(func() error {
		runs++
		return nil
	})
	other, _ := b.RegisterEmptyJob()
	_ = b.Arm()

	if err := token(); err != nil {
		t.Fatalf("token() error = %v", err)
	}
	if err := token(); !errors.Is(err, ErrTokenSpent) {
		t.Errorf("second token() error = %v, want ErrTokenSpent", err)
	}
	if runs != 1 {
		t.Errorf("job ran %d times, want 1", runs)
	}
	if *fired != 0 {
		t.Error("a spent token must not complete the barrier")
	}

	_ = other()
	if *fired != 1 {
		t.Errorf("completion fired %d times, want 1", *fired)
	}
}

func TestBarrier_JobErrorStillFinishes(t *testing.T) {
	b := New()
	fired := countCompletions(t, b)
	boom := errors.New("boom")

	token, _ := b.RegisterJob(func() error { return boom })
	_ = b.Arm()

	if err := token(); !errors.Is(err, boom) {
		t.Errorf("token() error = %v, want boom", err)
	}
	if *fired != 1 {
		t.Errorf("completion fired %d times, want 1", *fired)
	}
}

func TestBarrier_CompletionListenerError(t *testing.T) {
	b := New()
	boom := errors.New("listener failed")
	_ = b.OnComplete(func(_ *Barrier, _ struct{}) error { return boom })

	token, _ := b.RegisterEmptyJob()
	_ = b.Arm()

	if err := token(); !errors.Is(err, boom) {
		t.Errorf("token() error = %v, want listener error", err)
	}
	select {
	case <-b.Done():
	default:
		t.Error("Done() should be closed even when a listener fails")
	}
}

func TestBarrier_NilJob(t *testing.T) {
	b := New()
	if _, err := b.RegisterJob(nil); !errors.Is(err, multicast.ErrNotCallable) {
		t.Errorf("RegisterJob(nil) error = %v, want ErrNotCallable", err)
	}
	if err := b.OnComplete(nil); !errors.Is(err, multicast.ErrNotCallable) {
		t.Errorf("OnComplete(nil) error = %v, want ErrNotCallable", err)
	}
	if _, err := Forward[int](b, nil); !errors.Is(err, multicast.ErrNotCallable) {
		t.Errorf("Forward(nil) error = %v, want ErrNotCallable", err)
	}
}

func TestForward(t *testing.T) {
	b := New()
	fired := countCompletions(t, b)

	var got string
	token, err := Forward(b, func(s string) error {
		got = s
		return nil
	})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	_ = b.Arm()

	_ = token("payload")
	if got != "payload" {
		t.Errorf("forwarded argument = %q, want %q", got, "payload")
	}
	if *fired != 1 {
		t.Errorf("completion fired %d times, want 1", *fired)
	}
	if err := token("again"); !errors.Is(err, ErrTokenSpent) {
		t.Errorf("second token() error = %v, want ErrTokenSpent", err)
	}
}

func TestBarrier_TimerTokens(t *testing.T) {
	b := New()
	var fired atomic.Int32
	_ = b.OnComplete(func(_ *Barrier, _ struct{}) error {
		fired.Add(1)
		return nil
	})

	var ran atomic.Int32
	for i := 1; i <= 20; i++ {
		token, err := b.RegisterJob(func() error {
			ran.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("RegisterJob() error = %v", err)
		}
		time.AfterFunc(time.Duration(i)*time.Millisecond, func() { _ = token() })
	}
	_ = b.Arm()

	select {
	case <-b.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for barrier completion")
	}
	if ran.Load() != 20 {
		t.Errorf("jobs ran = %d, want 20", ran.Load())
	}
	if fired.Load() != 1 {
		t.Errorf("completion fired %d times, want 1", fired.Load())
	}
}

func TestBarrier_ConcurrentArmAndFinish(t *testing.T) {
	for i := 0; i < 50; i++ {
		b := New()
		var fired atomic.Int32
		_ = b.OnComplete(func(_ *Barrier, _ struct{}) error {
			fired.Add(1)
			return nil
		})

		tokens := make([]Token, 5)
		for j := range tokens {
			tokens[j], _ = b.RegisterEmptyJob()
		}

		var wg sync.WaitGroup
		for _, token := range tokens {
			wg.Add(1)
			go func(tok Token) {
				defer wg.Done()
				_ = tok()
			}(token)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Arm()
		}()
		wg.Wait()

		if fired.Load() != 1 {
			t.Fatalf("iteration %d: completion fired %d times, want 1", i, fired.Load())
		}
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateArmed, "armed"},
		{StateComplete, "complete"},
		{State(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
