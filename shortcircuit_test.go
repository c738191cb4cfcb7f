package gridsim_test

import (
	"errors"
	"testing"

	"github.com/db47h/gridsim"
)

func TestShortCircuit_Error(t *testing.T) {
	sc := &gridsim.ShortCircuit{
		Kind:       gridsim.ConflictNested,
		ComponentA: 4,
		ComponentB: 4,
		Next: &gridsim.ShortCircuit{
			Kind:       gridsim.ConflictOscillation,
			ComponentA: 2,
			ComponentB: 2,
		},
	}
	const exp = "in component 4: component 2 does not settle"
	if s := sc.Error(); s != exp {
		t.Fatalf("expected %q, got %q", exp, s)
	}
	if sc.Root() != sc.Next {
		t.Fatal("Root() did not return the innermost description")
	}
	if errors.Unwrap(sc.Next) != nil {
		t.Fatal("innermost description unwraps to non-nil")
	}
	var err error = sc
	var target *gridsim.ShortCircuit
	if !errors.As(err, &target) || target != sc {
		t.Fatal("errors.As failed")
	}
}
