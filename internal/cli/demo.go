package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tessro/chimera/internal/aspect"
	"github.com/tessro/chimera/internal/observable"
	"github.com/tessro/chimera/internal/slot"
)

var demoDecorate bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Intercept a method and print what the hooks saw",
	Long: `Intercept a four-argument method with two entry hooks and two exit
hooks, call it with (1, 10, 100, 500) and print the fields the hooks wrote.

The method sets val2 = b*2 and returns d. Entry hooks add a to val1, exit
hooks add c to val3, and the last exit hook stores the result in val4.
With --decorate, a decorator sets val5 and val6, stores the undecorated
result in val4 and negates what it returns.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.OutOrStdout(), demoDecorate)
	},
}

// demoArgs are the method arguments (a, b, c, d).
type demoArgs [4]int

type demoMethod = aspect.Method[*demoTarget, demoArgs, int]

// demoTarget is the object whose method slot gets intercepted.
type demoTarget struct {
	val1, val2, val3, val5, val6 int

	val4   *observable.Value[*demoTarget, int]
	method *slot.Slot[demoMethod]
}

func newDemoTarget() *demoTarget {
	t := &demoTarget{}
	t.val4 = observable.Watch(t, slot.New("val4", 0))
	t.method = slot.New[demoMethod]("method", aspect.MethodFunc[*demoTarget, demoArgs, int](
		func(recv *demoTarget, a demoArgs) (int, error) {
			recv.val2 = a[1] * 2
			return a[3], nil
		}))
	return t
}

// Call invokes whatever the method slot currently holds.
func (t *demoTarget) Call(a demoArgs) (int, error) {
	return t.method.Get().Invoke(t, a)
}

// intercept attaches the demo hooks through the default registry.
func (t *demoTarget) intercept(decorate bool) error {
	addVal1 := func(recv *demoTarget, a demoArgs) error {
		recv.val1 += a[0]
		return nil
	}
	for i := 0; i < 2; i++ {
		if err := aspect.OnMethodEntry(t.method, addVal1); err != nil {
			return err
		}
	}
	if err := aspect.OnMethodExit(t.method, func(recv *demoTarget, _ int, a demoArgs) error {
		recv.val3 += a[2]
		return nil
	}); err != nil {
		return err
	}
	if err := aspect.OnMethodExit(t.method, func(recv *demoTarget, ret int, a demoArgs) error {
		recv.val3 += a[2]
		if decorate {
			return nil
		}
		return recv.val4.Set(ret)
	}); err != nil {
		return err
	}
	if !decorate {
		return nil
	}
	return aspect.OnMethodDecorator(t.method, func(recv *demoTarget, core demoMethod, a demoArgs) (int, error) {
		recv.val5 = a[1] * 1000
		ret, err := core.Invoke(recv, a)
		if err != nil {
			return 0, err
		}
		recv.val6 = a[2] * 1000
		if err := recv.val4.Set(ret); err != nil {
			return 0, err
		}
		return -ret, nil
	})
}

// runDemo intercepts a fresh target, calls it once and prints the fields.
func runDemo(w io.Writer, decorate bool) error {
	t := newDemoTarget()
	if err := t.intercept(decorate); err != nil {
		return fmt.Errorf("intercept: %w", err)
	}
	defer aspect.Default.Forget(t.method)

	if err := t.val4.OnChanged().Push(func(_ *demoTarget, c observable.Change[int]) error {
		_, err := fmt.Fprintf(w, "val4 changed: %d -> %d\n", c.Old, c.New)
		return err
	}); err != nil {
		return err
	}

	ret, err := t.Call(demoArgs{1, 10, 100, 500})
	if err != nil {
		return fmt.Errorf("call: %w", err)
	}

	fmt.Fprintf(w, "val1=%d val2=%d val3=%d val4=%d", t.val1, t.val2, t.val3, t.val4.Get())
	if decorate {
		fmt.Fprintf(w, " val5=%d val6=%d", t.val5, t.val6)
	}
	fmt.Fprintf(w, "\nreturn=%d\n", ret)
	return nil
}

func init() {
	demoCmd.Flags().BoolVar(&demoDecorate, "decorate", false, "wrap the method in a decorator as well")
	rootCmd.AddCommand(demoCmd)
}
