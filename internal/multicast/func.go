package multicast

import "github.com/tessro/chimera/internal/slot"

// Func is a multicast callable. Calling it calls every listener with the
// caller's receiver and arguments.
//
// The method value f.Call is itself a Listener, so a Func can be used
// anywhere a single listener is expected, including another Func.
type Func[R, A any] struct {
	List[R, A]
}

// NewFunc creates an empty Func.
func NewFunc[R, A any]() *Func[R, A] {
	return &Func[R, A]{}
}

// Call dispatches to every listener with recv and args.
func (f *Func[R, A]) Call(recv R, args A) error {
	return f.Dispatch(recv, args)
}

// Lock pins f into s and makes s read-only. Writes to s fail with
// slot.ErrLocked afterwards.
// Locking a slot that is already locked on f is a no-op.
func (f *Func[R, A]) Lock(s *slot.Slot[*Func[R, A]]) error {
	if s.Locked() {
		if s.Get() == f {
			return nil
		}
		return slot.ErrLocked
	}
	return s.LockWith(f)
}
