package multicast

import (
	"errors"
	"testing"

	"github.com/tessro/chimera/internal/slot"
)

func TestFunc_CallUsesCallerReceiver(t *testing.T) {
	f := NewFunc[*testOwner, int]()
	testVal1 := 10
	obj := &testOwner{val: 20}

	_ = f.Push(func(_ *testOwner, a int) error {
		testVal1 = a
		return nil
	})
	_ = f.Push(func(recv *testOwner, _ int) error {
		recv.val = 200
		return nil
	})

	if err := f.Call(obj, 100); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if testVal1 != 100 {
		t.Errorf("testVal1 = %d, want 100", testVal1)
	}
	if obj.val != 200 {
		t.Errorf("obj.val = %d, want 200 (receiver forwarded)", obj.val)
	}

	other := &testOwner{}
	_ = f.Call(other, 1)
	if other.val != 200 {
		t.Errorf("other.val = %d, want 200", other.val)
	}
}

func TestFunc_NestedAsListener(t *testing.T) {
	inner := NewFunc[*testOwner, int]()
	outer := NewFunc[*testOwner, int]()

	var seen []string
	_ = inner.Push(func(recv *testOwner, v int) error {
		seen = append(seen, recv.name)
		return nil
	})
	if err := outer.Push(inner.Call); err != nil {
		t.Fatalf("Push(inner.Call) error = %v", err)
	}
	_ = outer.Push(func(recv *testOwner, v int) error {
		seen = append(seen, "outer")
		return nil
	})

	_ = outer.Call(&testOwner{name: "obj"}, 1)
	if len(seen) != 2 || seen[0] != "obj" || seen[1] != "outer" {
		t.Errorf("seen = %v, want [obj outer]", seen)
	}
}

func TestFunc_Lock(t *testing.T) {
	f := NewFunc[*testOwner, int]()
	s := slot.New("onTestFunc", f)

	if err := f.Lock(s); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if err := s.Set(nil); !errors.Is(err, slot.ErrLocked) {
		t.Errorf("Set() after Lock error = %v, want ErrLocked", err)
	}
	if s.Get() != f {
		t.Error("locked slot should still yield the same Func")
	}

	// Relocking with the same Func is a no-op
	if err := f.Lock(s); err != nil {
		t.Errorf("second Lock() error = %v, want nil", err)
	}

	// Another Func cannot claim a locked slot
	g := NewFunc[*testOwner, int]()
	if err := g.Lock(s); !errors.Is(err, slot.ErrLocked) {
		t.Errorf("Lock() by other Func error = %v, want ErrLocked", err)
	}
}

func TestFunc_LockPinsIntoSlot(t *testing.T) {
	f := NewFunc[int, int]()
	s := slot.New[*Func[int, int]]("empty", nil)

	if err := f.Lock(s); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if s.Get() != f {
		t.Error("Lock should store the Func in the slot")
	}
}
