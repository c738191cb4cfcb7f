package gridsim_test

import (
	"testing"
	"testing/quick"

	"github.com/db47h/gridsim"
)

func TestPoint_Rotate(t *testing.T) {
	td := []struct {
		r   gridsim.Rotation
		exp gridsim.Point
	}{
		{gridsim.R0, gridsim.Pt(2, 1)},
		{gridsim.R90, gridsim.Pt(-1, 2)},
		{gridsim.R180, gridsim.Pt(-2, -1)},
		{gridsim.R270, gridsim.Pt(1, -2)},
	}
	for _, d := range td {
		if got := gridsim.Pt(2, 1).Rotate(d.r); got != d.exp {
			t.Errorf("Rotate(%d) = %v, expected %v", d.r, got, d.exp)
		}
	}

	f := func(x, y int16) bool {
		p := gridsim.Pt(int(x), int(y))
		return p.Rotate(gridsim.R90).Rotate(gridsim.R270) == p && p.Rotate(4) == p
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestPowerState(t *testing.T) {
	if gridsim.Bool(true) != gridsim.On || gridsim.Bool(false) != gridsim.Off {
		t.Fatal("Bool conversion")
	}
	f := func(b byte, i uint8, v bool) bool {
		line := int(i % 8)
		p := gridsim.PowerState(b).WithLine(line, gridsim.Bool(v))
		if p.Line(line) != gridsim.Bool(v) {
			return false
		}
		// other lines untouched
		return p|1<<uint(line) == gridsim.PowerState(b)|1<<uint(line)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
	for _, d := range []struct {
		p   gridsim.PowerState
		exp string
	}{{gridsim.Off, "Off"}, {gridsim.On, "On"}, {0x2a, "0x2a"}} {
		if s := d.p.String(); s != d.exp {
			t.Errorf("%d.String() = %q, expected %q", uint8(d.p), s, d.exp)
		}
	}
}
