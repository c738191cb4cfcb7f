// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gridsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// Descriptor identifies the intrinsic behavior of a Blueprint.
//
type Descriptor uint8

// Descriptors. DescNone has no intrinsic behavior: a Blueprint with that
// descriptor and a nested Simulation is a custom component.
//
const (
	DescNone Descriptor = iota
	DescNand
	DescAnd
	DescOr
	DescNor
	DescXor
	DescXnor
	DescNot
	DescOn
	DescOff
	DescInput
	DescOutput
	DescSwitch
	DescDelay
	DescSplitter
	DescJoiner
	DescDisp
	DescRAM
	descCount
)

var descNames = [...]string{
	DescNone:     "None",
	DescNand:     "NAND",
	DescAnd:      "AND",
	DescOr:       "OR",
	DescNor:      "NOR",
	DescXor:      "XOR",
	DescXnor:     "XNOR",
	DescNot:      "NOT",
	DescOn:       "On",
	DescOff:      "Off",
	DescInput:    "Input",
	DescOutput:   "Output",
	DescSwitch:   "Switch",
	DescDelay:    "Delay",
	DescSplitter: "Splitter",
	DescJoiner:   "Joiner",
	DescDisp:     "Disp",
	DescRAM:      "RAM",
}

func (d Descriptor) String() string {
	if d < descCount {
		return descNames[d]
	}
	return "Descriptor(" + strconv.Itoa(int(d)) + ")"
}

// Seed returns true for descriptors that drive their output without
// needing an input: On, Off, Input, Switch and Delay.
//
func (d Descriptor) Seed() bool {
	switch d {
	case DescOn, DescOff, DescInput, DescSwitch, DescDelay:
		return true
	}
	return false
}

// arity returns the fixed number of inputs and outputs of intrinsic
// descriptors. ok is false for DescNone.
//
func (d Descriptor) arity() (in, out int, ok bool) {
	switch d {
	case DescNand, DescAnd, DescOr, DescNor, DescXor, DescXnor:
		return 2, 1, true
	case DescNot, DescDelay:
		return 1, 1, true
	case DescOn, DescOff, DescInput, DescSwitch:
		return 0, 1, true
	case DescOutput, DescDisp:
		return 1, 0, true
	case DescSplitter:
		return 1, 8, true
	case DescJoiner:
		return 8, 1, true
	case DescRAM:
		return 3, 1, true
	}
	return 0, 0, false
}

// shape is the immutable part of a Blueprint, shared by all its clones.
//
type shape struct {
	name    string
	desc    Descriptor
	display [4][]Pixel
	inputs  [4][]Point
	outputs [4][]Point
	sim     *Simulation
}

// A Blueprint describes a component type and carries the mutable state of one
// instance of that type.
//
// The shape (display, ports, descriptor, nested Simulation) is shared between
// a Blueprint and all its clones. Buffers and registers belong to each clone.
//
type Blueprint struct {
	*shape
	rotation Rotation

	in, out   []PowerState
	delay     PowerState // current Delay register value
	nextDelay PowerState // value latched by the next RecordDelayValues
	sw        PowerState // Switch state
	value     PowerState // last value seen by a Disp or Output

	// custom components: per-instance state of nested components, by id.
	locals map[int]*Blueprint
	origin uint64 // serial of the nested component this state belongs to
	addr   uint64 // structural address for RAM cells

	ramStaged bool
	ramAddr   uint64
}

// NewBlueprint returns a Blueprint for the given descriptor and display, in
// rotation R0. The display's input and output pixels must match the
// descriptor's arity.
//
func NewBlueprint(name string, desc Descriptor, display []Pixel) (*Blueprint, error) {
	if desc >= descCount {
		return nil, errors.Errorf("%s: unknown descriptor %d", name, desc)
	}
	sh, err := newShape(name, desc, display)
	if err != nil {
		return nil, err
	}
	if in, out, ok := desc.arity(); ok {
		if len(sh.inputs[0]) != in || len(sh.outputs[0]) != out {
			return nil, errors.Errorf("%s: %v needs %d inputs and %d outputs, display has %d and %d",
				name, desc, in, out, len(sh.inputs[0]), len(sh.outputs[0]))
		}
	}
	return newInstance(sh, R0), nil
}

// NewCustomBlueprint returns a custom Blueprint whose behavior is delegated to
// sim. The display is generated: one column of inputs on the left, a body
// column and one column of outputs on the right, sized after the number of
// Input and Output components in sim.
//
func NewCustomBlueprint(name string, sim *Simulation) *Blueprint {
	nIn, nOut := sim.InputCount(), sim.OutputCount()
	h := nIn
	if nOut > h {
		h = nOut
	}
	if h == 0 {
		h = 1
	}
	display := make([]Pixel, 0, nIn+nOut+h)
	for i := 0; i < nIn; i++ {
		display = append(display, In(0, i))
	}
	for i := 0; i < h; i++ {
		display = append(display, Body(1, i))
	}
	for i := 0; i < nOut; i++ {
		display = append(display, Out(2, i))
	}
	bp, err := NewCustomBlueprintDisplay(name, sim, display)
	if err != nil {
		panic(err)
	}
	return bp
}

// NewCustomBlueprintDisplay is like NewCustomBlueprint but with an explicit
// display. The display must have as many inputs and outputs as sim has Input
// and Output components.
//
func NewCustomBlueprintDisplay(name string, sim *Simulation, display []Pixel) (*Blueprint, error) {
	if sim == nil {
		return nil, errors.New(name + ": nil simulation")
	}
	sh, err := newShape(name, DescNone, display)
	if err != nil {
		return nil, err
	}
	if len(sh.inputs[0]) != sim.InputCount() || len(sh.outputs[0]) != sim.OutputCount() {
		return nil, errors.Errorf("%s: simulation has %d inputs and %d outputs, display has %d and %d",
			name, sim.InputCount(), sim.OutputCount(), len(sh.inputs[0]), len(sh.outputs[0]))
	}
	sh.sim = sim
	return newInstance(sh, R0), nil
}

func newShape(name string, desc Descriptor, display []Pixel) (*shape, error) {
	if len(display) == 0 {
		return nil, errors.New(name + ": empty display")
	}
	seen := make(map[Point]struct{}, len(display))
	for _, px := range display {
		if _, ok := seen[px.Offset]; ok {
			return nil, errors.Errorf("%s: duplicate pixel at %v", name, px.Offset)
		}
		if px.Kind == TileNothing {
			return nil, errors.Errorf("%s: empty pixel at %v", name, px.Offset)
		}
		seen[px.Offset] = struct{}{}
	}
	sh := &shape{name: name, desc: desc}
	for r := R0; r <= R270; r++ {
		d := make([]Pixel, len(display))
		for i, px := range display {
			p := px.Offset.Rotate(r)
			d[i] = Pixel{p, px.Kind}
			switch px.Kind {
			case TileInput:
				sh.inputs[r] = append(sh.inputs[r], p)
			case TileOutput:
				sh.outputs[r] = append(sh.outputs[r], p)
			}
		}
		sh.display[r] = d
	}
	return sh, nil
}

func newInstance(sh *shape, r Rotation) *Blueprint {
	return &Blueprint{
		shape:    sh,
		rotation: r & 3,
		in:       make([]PowerState, len(sh.inputs[0])),
		out:      make([]PowerState, len(sh.outputs[0])),
	}
}

// Clone returns a new instance of b's type in the given rotation, with
// cleared buffers and registers.
//
func (b *Blueprint) Clone(r Rotation) *Blueprint {
	return newInstance(b.shape, r)
}

// Name returns the type name.
//
func (b *Blueprint) Name() string { return b.name }

// Descriptor returns the intrinsic behavior of b.
//
func (b *Blueprint) Descriptor() Descriptor { return b.desc }

// Rotation returns the rotation of this instance.
//
func (b *Blueprint) Rotation() Rotation { return b.rotation }

// Display returns the tiles covered by b in rotation r.
//
func (b *Blueprint) Display(r Rotation) []Pixel { return b.display[r&3] }

// Inputs returns the input port offsets in rotation r.
//
func (b *Blueprint) Inputs(r Rotation) []Point { return b.inputs[r&3] }

// Outputs returns the output port offsets in rotation r.
//
func (b *Blueprint) Outputs(r Rotation) []Point { return b.outputs[r&3] }

// Simulation returns the nested Simulation of a custom Blueprint, or nil.
//
func (b *Blueprint) Simulation() *Simulation { return b.sim }

// Custom returns true if b's behavior is delegated to a nested Simulation.
//
func (b *Blueprint) Custom() bool { return b.desc == DescNone && b.sim != nil }

func (b *Blueprint) generator() bool {
	return b.Custom() && len(b.inputs[0]) == 0
}

// InputBuffer returns the value of input i. Missing entries read Off.
//
func (b *Blueprint) InputBuffer(i int) PowerState {
	if i < 0 || i >= len(b.in) {
		return Off
	}
	return b.in[i]
}

// SetInputBuffer sets input i, growing the buffer as needed.
//
func (b *Blueprint) SetInputBuffer(i int, v PowerState) {
	if i < 0 {
		return
	}
	b.in = grow(b.in, i+1)
	b.in[i] = v
}

// OutputBuffer returns the value of output i. Missing entries read Off.
//
func (b *Blueprint) OutputBuffer(i int) PowerState {
	if i < 0 || i >= len(b.out) {
		return Off
	}
	return b.out[i]
}

func (b *Blueprint) setOutputBuffer(i int, v PowerState) {
	if i < 0 {
		return
	}
	b.out = grow(b.out, i+1)
	b.out[i] = v
}

func (b *Blueprint) clearOutputs() {
	for i := range b.out {
		b.out[i] = Off
	}
}

func grow(s []PowerState, n int) []PowerState {
	for len(s) < n {
		s = append(s, Off)
	}
	return s
}

// DelayValue returns the current Delay register.
//
func (b *Blueprint) DelayValue() PowerState { return b.delay }

// SwitchValue returns the Switch state.
//
func (b *Blueprint) SwitchValue() PowerState { return b.sw }

// SetSwitchValue sets the Switch state. It is picked up by the next pass.
//
func (b *Blueprint) SetSwitchValue(v PowerState) { b.sw = v }

// Value returns the last value received by a Disp or Output component.
//
func (b *Blueprint) Value() PowerState { return b.value }

// local returns the state of the nested component id seen from instance b.
//
func (b *Blueprint) local(id int, c *Component) *Blueprint {
	if l := b.locals[id]; l != nil && l.origin == c.serial {
		return l
	}
	if b.locals == nil {
		b.locals = make(map[int]*Blueprint)
	}
	src := c.Blueprint
	l := src.Clone(src.rotation)
	l.delay = src.delay
	l.sw = src.sw
	l.origin = c.serial
	b.locals[id] = l
	return l
}

// StepStateful runs one propagation pass of b's nested Simulation with b's
// buffers. It is a no-op for non-custom Blueprints.
//
// If recordDelayValue is true and the pass converges, Delay registers are
// latched (see Simulation.RecordDelayValues). Otherwise the pass is
// speculative and registers keep their value.
//
func (b *Blueprint) StepStateful(gst *GlobalStateTable, recordDelayValue bool) *ShortCircuit {
	if !b.Custom() {
		return nil
	}
	if sc := b.sim.Step(b, gst); sc != nil {
		return sc
	}
	if recordDelayValue {
		b.sim.RecordDelayValues(b)
	}
	return nil
}

// Tick runs StepStateful with recording, then swaps gst's buffers on success.
// It is meant to be called by the outermost driver only.
//
func (b *Blueprint) Tick(gst *GlobalStateTable) *ShortCircuit {
	if sc := b.StepStateful(gst, true); sc != nil {
		return sc
	}
	if gst != nil {
		gst.SwapBuffers()
	}
	return nil
}
