package gridsim_test

import (
	"errors"
	"testing"

	"github.com/db47h/gridsim"
	"github.com/db47h/gridsim/hwlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// notCircuit returns a switch driving a NOT gate that drives a Disp.
func notCircuit(t *testing.T) (s *gridsim.Simulation, sw, disp int) {
	t.Helper()
	s = gridsim.NewSimulation(6, 1)
	sw = place(t, s, hwlib.Switch(), 0, 0)
	place(t, s, hwlib.Not(), 2, 0)
	disp = place(t, s, hwlib.Disp(), 5, 0)
	wire(t, s, 0, 0, 2, 0)
	wire(t, s, 3, 0, 5, 0)
	return s, sw, disp
}

func TestStep_not(t *testing.T) {
	s, sw, disp := notCircuit(t)
	for _, v := range []gridsim.PowerState{gridsim.Off, gridsim.On, gridsim.Off} {
		require.True(t, s.SetSwitch(sw, v))
		require.Nil(t, s.Step(nil, nil))
		exp := gridsim.Bool(!v.On())
		assert.Equal(t, exp, s.PowerStateAt(gridsim.Pt(5, 0)))
		c, _ := s.Component(disp)
		assert.Equal(t, exp, c.Blueprint.Value())
		w, _ := s.Wire(1)
		assert.Equal(t, v, w.PowerState)
		assert.Equal(t, sw, w.LastVisitComponentID)
	}
	assert.False(t, s.SetSwitch(disp, gridsim.On), "not a switch")
}

func TestStep_gates(t *testing.T) {
	td := []struct {
		gate *gridsim.Blueprint
		f    func(a, b bool) bool
	}{
		{hwlib.Nand(), func(a, b bool) bool { return !(a && b) }},
		{hwlib.And(), func(a, b bool) bool { return a && b }},
		{hwlib.Or(), func(a, b bool) bool { return a || b }},
		{hwlib.Nor(), func(a, b bool) bool { return !(a || b) }},
		{hwlib.Xor(), func(a, b bool) bool { return a != b }},
		{hwlib.Xnor(), func(a, b bool) bool { return a == b }},
		{hwlib.AndOfNand(), func(a, b bool) bool { return a && b }},
	}
	for _, d := range td {
		t.Run(d.gate.Name(), func(t *testing.T) {
			s := gridsim.NewSimulation(6, 3)
			a := place(t, s, hwlib.Switch(), 0, 0)
			b := place(t, s, hwlib.Switch(), 0, 2)
			g := place(t, s, d.gate, 2, 0)
			place(t, s, hwlib.Disp(), 5, 0)
			ins, outs := s.Ports(g)
			wire(t, s, 0, 0, ins[0].X, ins[0].Y)
			wire(t, s, 0, 2, ins[1].X, ins[1].Y)
			wire(t, s, outs[0].X, outs[0].Y, 5, 0)
			for i := 0; i < 4; i++ {
				va, vb := i&2 != 0, i&1 != 0
				s.SetSwitch(a, gridsim.Bool(va))
				s.SetSwitch(b, gridsim.Bool(vb))
				require.Nil(t, s.Step(nil, nil))
				assert.Equal(t, gridsim.Bool(d.f(va, vb)), s.PowerStateAt(gridsim.Pt(5, 0)), "%v %v", va, vb)
			}
		})
	}
}

func TestStep_shortCircuit(t *testing.T) {
	s := gridsim.NewSimulation(3, 3)
	on := place(t, s, hwlib.On(), 0, 0)
	disp := place(t, s, hwlib.Disp(), 2, 1)
	w1 := wire(t, s, 0, 0, 2, 1)
	require.Nil(t, s.Step(nil, nil))
	require.Equal(t, gridsim.On, s.PowerStateAt(gridsim.Pt(2, 1)))

	off := place(t, s, hwlib.Off(), 0, 2)
	w2 := wire(t, s, 0, 2, 2, 1)
	sc := s.Step(nil, nil)
	require.NotNil(t, sc)
	assert.Equal(t, gridsim.ConflictDrivers, sc.Kind)
	assert.Equal(t, on, sc.ComponentA)
	assert.Equal(t, off, sc.ComponentB)
	assert.Equal(t, gridsim.On, sc.ValueA)
	assert.Equal(t, gridsim.Off, sc.ValueB)
	assert.Equal(t, w2, sc.WireID)
	assert.Contains(t, sc.Error(), "short circuit on wire 2")

	// the last converged pass is still visible
	assert.Equal(t, gridsim.On, s.PowerStateAt(gridsim.Pt(2, 1)))
	w, _ := s.Wire(w1)
	assert.Equal(t, gridsim.On, w.PowerState)
	c, _ := s.Component(disp)
	assert.Equal(t, gridsim.On, c.Blueprint.Value())

	// agreeing drivers are fine
	s.RemoveComponent(off)
	place(t, s, hwlib.On(), 0, 2)
	require.Nil(t, s.Step(nil, nil))
	w, _ = s.Wire(w2)
	assert.Equal(t, gridsim.On, w.PowerState)
}

// gateAgainstSeed wires AND(On, NOT(Off)) to a seed on the same output net.
// The AND gate is first evaluated with its second input still undriven.
func gateAgainstSeed(t *testing.T, seed *gridsim.Blueprint) (s *gridsim.Simulation, and, other int) {
	t.Helper()
	s = gridsim.NewSimulation(7, 5)
	place(t, s, hwlib.On(), 0, 0)
	place(t, s, hwlib.Off(), 0, 4)
	place(t, s, hwlib.Not(), 0, 2)
	and = place(t, s, hwlib.And(), 2, 0)
	other = place(t, s, seed, 6, 1)
	place(t, s, hwlib.Disp(), 6, 3)
	wire(t, s, 0, 0, 2, 0)
	wire(t, s, 0, 4, 0, 2)
	wire(t, s, 1, 2, 2, 2)
	wire(t, s, 4, 1, 6, 1)
	wire(t, s, 4, 1, 6, 3)
	return s, and, other
}

func TestStep_settledDrivers(t *testing.T) {
	s, and, on := gateAgainstSeed(t, hwlib.On())
	require.Nil(t, s.Step(nil, nil), "drivers agree once settled")
	assert.Equal(t, gridsim.On, s.PowerStateAt(gridsim.Pt(4, 1)))
	assert.Equal(t, gridsim.On, s.PowerStateAt(gridsim.Pt(6, 3)))
	assert.Equal(t, gridsim.On, s.PowerStateAt(gridsim.Pt(6, 1)))
	w, _ := s.Wire(4)
	assert.Equal(t, on, w.LastVisitComponentID)
	c, _ := s.Component(and)
	assert.Equal(t, hwlib.And().Name(), c.Blueprint.Name())

	s, and, off := gateAgainstSeed(t, hwlib.Off())
	sc := s.Step(nil, nil)
	require.NotNil(t, sc)
	assert.Equal(t, gridsim.ConflictDrivers, sc.Kind)
	assert.Equal(t, off, sc.ComponentA)
	assert.Equal(t, and, sc.ComponentB)
	assert.Equal(t, gridsim.Off, sc.ValueA)
	assert.Equal(t, gridsim.On, sc.ValueB, "final value of the gate")
	assert.Equal(t, 4, sc.WireID)
}

func TestStep_delay(t *testing.T) {
	s := gridsim.NewSimulation(6, 1)
	sw := place(t, s, hwlib.Switch(), 0, 0)
	d := place(t, s, hwlib.Delay(), 2, 0)
	place(t, s, hwlib.Disp(), 5, 0)
	wire(t, s, 0, 0, 2, 0)
	wire(t, s, 3, 0, 5, 0)

	prev := gridsim.Off
	for _, v := range []gridsim.PowerState{gridsim.On, gridsim.On, gridsim.Off, gridsim.On, gridsim.Off} {
		s.SetSwitch(sw, v)
		require.Nil(t, s.Step(nil, nil))
		assert.Equal(t, prev, s.PowerStateAt(gridsim.Pt(5, 0)))
		s.RecordDelayValues(nil)
		c, _ := s.Component(d)
		assert.Equal(t, v, c.Blueprint.DelayValue())
		prev = v
	}
}

func TestStep_initialDelay(t *testing.T) {
	s := gridsim.NewSimulation(4, 1)
	s.Place(hwlib.Delay(), gridsim.Pt(0, 0), gridsim.R0, true, 0, gridsim.On)
	place(t, s, hwlib.Disp(), 3, 0)
	wire(t, s, 1, 0, 3, 0)
	require.Nil(t, s.Step(nil, nil))
	assert.Equal(t, gridsim.On, s.PowerStateAt(gridsim.Pt(3, 0)))
	s.RecordDelayValues(nil)
	require.Nil(t, s.Step(nil, nil))
	assert.Equal(t, gridsim.Off, s.PowerStateAt(gridsim.Pt(3, 0)), "unconnected delay input reads Off")
}

func TestStep_oscillation(t *testing.T) {
	s := gridsim.NewSimulation(2, 1)
	not := place(t, s, hwlib.Not(), 0, 0)
	wire(t, s, 1, 0, 0, 0)
	s.MaxEvaluations = 16
	sc := s.Step(nil, nil)
	require.NotNil(t, sc)
	assert.Equal(t, gridsim.ConflictOscillation, sc.Kind)
	assert.Equal(t, not, sc.ComponentA)
}

func TestStep_unreached(t *testing.T) {
	// a NOT gate with a floating input still drives its output
	s := gridsim.NewSimulation(4, 1)
	place(t, s, hwlib.Not(), 0, 0)
	place(t, s, hwlib.Disp(), 3, 0)
	wire(t, s, 1, 0, 3, 0)
	require.Nil(t, s.Step(nil, nil))
	assert.Equal(t, gridsim.On, s.PowerStateAt(gridsim.Pt(3, 0)))
}

func TestStep_nested(t *testing.T) {
	s := gridsim.NewSimulation(6, 2)
	a := place(t, s, hwlib.Switch(), 0, 0)
	b := place(t, s, hwlib.Switch(), 0, 1)
	place(t, s, hwlib.AndOfNand(), 2, 0)
	place(t, s, hwlib.Disp(), 5, 0)
	wire(t, s, 0, 0, 2, 0)
	wire(t, s, 0, 1, 2, 1)
	wire(t, s, 4, 0, 5, 0)

	s.SetSwitch(a, gridsim.On)
	s.SetSwitch(b, gridsim.On)
	require.Nil(t, s.Step(nil, nil))
	assert.Equal(t, gridsim.On, s.PowerStateAt(gridsim.Pt(5, 0)))

	s.SetSwitch(b, gridsim.Off)
	require.Nil(t, s.Step(nil, nil))
	assert.Equal(t, gridsim.Off, s.PowerStateAt(gridsim.Pt(5, 0)))
}

func TestPlace_cycle(t *testing.T) {
	inner := gridsim.NewSimulation(8, 8)
	inner.Place(hwlib.Input(), gridsim.Pt(0, 0), gridsim.R0, true, 0, gridsim.Off)
	inner.Place(hwlib.Output(), gridsim.Pt(7, 7), gridsim.R0, true, 0, gridsim.Off)
	cb := gridsim.NewCustomBlueprint("c", inner)

	// a simulation cannot contain itself, directly or not
	assert.Equal(t, -1, inner.Place(cb, gridsim.Pt(2, 2), gridsim.R0, true, 0, gridsim.Off))
	outer := gridsim.NewSimulation(8, 8)
	place(t, outer, cb, 0, 0)
	ob := gridsim.NewCustomBlueprint("o", outer)
	assert.Equal(t, -1, inner.Place(ob, gridsim.Pt(2, 2), gridsim.R0, true, 0, gridsim.Off))

	assert.True(t, inner.Place(hwlib.AndOfNand(), gridsim.Pt(2, 2), gridsim.R0, true, 0, gridsim.Off) > 0)
	assert.Equal(t, 3, inner.Size())
}

func TestStep_nestedShortCircuit(t *testing.T) {
	inner := gridsim.NewSimulation(3, 3)
	place(t, inner, hwlib.On(), 0, 0)
	place(t, inner, hwlib.Off(), 0, 2)
	inner.Place(hwlib.Output(), gridsim.Pt(2, 1), gridsim.R0, true, 0, gridsim.Off)
	wire(t, inner, 0, 0, 2, 1)
	wire(t, inner, 0, 2, 2, 1)
	bad := gridsim.NewCustomBlueprint("bad", inner)

	s := gridsim.NewSimulation(4, 1)
	g := place(t, s, bad, 0, 0)
	sc := s.Step(nil, nil)
	require.NotNil(t, sc)
	assert.Equal(t, gridsim.ConflictNested, sc.Kind)
	assert.Equal(t, g, sc.ComponentA)
	require.NotNil(t, sc.Next)
	assert.Equal(t, gridsim.ConflictDrivers, sc.Root().Kind)

	var root *gridsim.ShortCircuit
	require.True(t, errors.As(errors.Unwrap(sc), &root))
	assert.Equal(t, sc.Next, root)
	assert.Contains(t, sc.Error(), "in component 1: short circuit")
}

func TestStep_deterministic(t *testing.T) {
	build := func() *gridsim.Simulation {
		s := gridsim.NewSimulation(16, 4)
		a := place(t, s, hwlib.Switch(), 0, 0)
		place(t, s, hwlib.On(), 0, 2)
		fa := place(t, s, hwlib.FullAdder(), 2, 0)
		ins, outs := s.Ports(fa)
		wire(t, s, 0, 0, ins[0].X, ins[0].Y)
		wire(t, s, 0, 0, ins[1].X, ins[1].Y)
		wire(t, s, 0, 2, ins[2].X, ins[2].Y)
		place(t, s, hwlib.Disp(), 8, 0)
		place(t, s, hwlib.Disp(), 8, 1)
		wire(t, s, outs[0].X, outs[0].Y, 8, 0)
		wire(t, s, outs[1].X, outs[1].Y, 8, 1)
		s.SetSwitch(a, gridsim.On)
		return s
	}
	snapshot := func(s *gridsim.Simulation) []gridsim.PowerState {
		var r []gridsim.PowerState
		for y := 0; y < s.Height(); y++ {
			for x := 0; x < s.Width(); x++ {
				r = append(r, s.PowerStateAt(gridsim.Pt(x, y)))
			}
		}
		for _, id := range s.Wires() {
			w, _ := s.Wire(id)
			r = append(r, w.PowerState, gridsim.PowerState(w.LastVisitComponentID))
		}
		return r
	}

	s1, s2 := build(), build()
	require.Nil(t, s1.Step(nil, nil))
	require.Nil(t, s2.Step(nil, nil))
	ref := snapshot(s1)
	assert.Equal(t, ref, snapshot(s2))
	require.Nil(t, s1.Step(nil, nil))
	assert.Equal(t, ref, snapshot(s1))

	// 1 + 1 + 1 = 0b11
	assert.Equal(t, gridsim.On, s1.PowerStateAt(gridsim.Pt(8, 0)))
	assert.Equal(t, gridsim.On, s1.PowerStateAt(gridsim.Pt(8, 1)))
}

func TestPass_Advance(t *testing.T) {
	s, sw, _ := notCircuit(t)
	s.SetSwitch(sw, gridsim.On)
	p := s.StepEnumerator(nil, nil)
	assert.Equal(t, gridsim.Running, p.Status())
	n := 0
	for p.Advance() == gridsim.Running {
		n++
		require.Less(t, n, 100)
	}
	assert.Equal(t, gridsim.Converged, p.Status())
	assert.Nil(t, p.ShortCircuit())
	assert.Equal(t, 0, p.Pending())
	assert.Equal(t, n+1, p.Steps())
	assert.Equal(t, gridsim.On, p.PowerStateAt(gridsim.Pt(2, 0)))
	assert.Equal(t, gridsim.Off, p.PowerStateAt(gridsim.Pt(5, 0)))
	assert.Equal(t, gridsim.Off, p.PowerStateAt(gridsim.Pt(-1, 0)))
	assert.Equal(t, gridsim.Converged, p.Advance(), "terminal state is sticky")
	assert.Equal(t, "converged", p.Status().String())
}

func TestStep_ramPages(t *testing.T) {
	mem := hwlib.Wrap(hwlib.RAM())
	b := hwlib.NewBench(7, 6)
	addr := b.PlaceIO(hwlib.Input(), 0, 0, 0)
	data := b.PlaceIO(hwlib.Input(), 0, 1, 1)
	we := b.PlaceIO(hwlib.Input(), 0, 2, 2)
	m0 := b.Place(mem, 2, 0)
	m1 := b.Place(mem, 2, 3)
	o0 := b.PlaceIO(hwlib.Output(), 6, 0, 0)
	o1 := b.PlaceIO(hwlib.Output(), 6, 3, 1)
	b.Connect(addr, 0, m0, 0)
	b.Connect(data, 0, m0, 1)
	b.Connect(we, 0, m0, 2)
	b.Connect(addr, 0, m1, 0)
	b.Connect(data, 0, m1, 1)
	b.Connect(m0, 0, o0, 0)
	b.Connect(m1, 0, o1, 0)
	banks, err := b.Blueprint("Banks")
	require.NoError(t, err)

	gst := gridsim.NewGlobalStateTable()
	banks.SetInputBuffer(0, 3)
	banks.SetInputBuffer(1, 0x55)
	banks.SetInputBuffer(2, gridsim.On)
	require.Nil(t, banks.Tick(gst))
	assert.Equal(t, gridsim.Off, banks.OutputBuffer(0), "reads see the previous tick")

	banks.SetInputBuffer(2, gridsim.Off)
	require.Nil(t, banks.Tick(gst))
	assert.Equal(t, gridsim.PowerState(0x55), banks.OutputBuffer(0))
	assert.Equal(t, gridsim.Off, banks.OutputBuffer(1), "each instance owns its page")
	assert.Equal(t, 0, gst.Staged())
}
