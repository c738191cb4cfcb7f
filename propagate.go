// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gridsim

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Status is the state of a propagation Pass.
//
type Status uint8

// Pass states. Converged and Shorted are terminal.
//
const (
	Running Status = iota
	Converged
	Shorted
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case Shorted:
		return "shorted"
	}
	return "unknown"
}

type phase uint8

const (
	phaseReset phase = iota
	phaseSeed
	phaseDrain
	phaseDone
)

// visit is a pending wire traversal during a flood fill.
//
type visit struct {
	wire   int
	to     Point
	value  PowerState
	driver driver
}

// clash is a disagreement met during a flood fill between two drivers, one
// of which may still change its value before the pass ends.
//
type clash struct {
	a, b driver
	wire int
}

// workItem is a component waiting for evaluation after one of its inputs at
// pos received value from source.
//
type workItem struct {
	target int
	pos    Point
	value  PowerState
	source int
}

// A Pass is one propagation pass over a Simulation, run one unit of work at
// a time by Advance. A unit is one wire visit, one seed or one evaluated
// component.
//
// Values observed through a Pass before it terminates are partial and only
// meant for debug display.
//
type Pass struct {
	sim   *Simulation
	host  *Blueprint
	gst   *GlobalStateTable
	scope uint64

	phase  phase
	status Status
	epoch  uint32

	seeds  []int
	cursor int
	fill   []visit
	queue  []workItem
	head   int
	short  *ShortCircuit
	steps  int

	driven  map[driver]PowerState // latest value of each driver
	clashes []clash
}

// StepEnumerator returns a new propagation pass over s.
//
// host, if not nil, supplies the values read by Input components and receives
// the values of Output components. When host is a custom Blueprint whose
// nested simulation is s, the state of s's components (Delay registers,
// switches, nested custom components) is taken from host's private copy.
//
// gst may be nil, in which case RAM components read Off and never write.
//
func (s *Simulation) StepEnumerator(host *Blueprint, gst *GlobalStateTable) *Pass {
	p := &Pass{sim: s, host: host, gst: gst}
	if host != nil {
		p.scope = host.addr
	}
	return p
}

// Step runs a whole propagation pass and returns a non-nil ShortCircuit if it
// failed. See StepEnumerator.
//
func (s *Simulation) Step(host *Blueprint, gst *GlobalStateTable) *ShortCircuit {
	p := s.StepEnumerator(host, gst)
	for p.Advance() == Running {
	}
	return p.short
}

// Status returns the current status of the pass.
//
func (p *Pass) Status() Status { return p.status }

// ShortCircuit returns the conflict that aborted the pass, if any.
//
func (p *Pass) ShortCircuit() *ShortCircuit { return p.short }

// Steps returns the number of units of work done so far.
//
func (p *Pass) Steps() int { return p.steps }

// Pending returns the number of components waiting for evaluation.
//
func (p *Pass) Pending() int { return len(p.queue) - p.head }

// PowerStateAt returns the value at pos as currently known by the pass.
//
func (p *Pass) PowerStateAt(pos Point) PowerState {
	s := p.sim
	if !s.inside(pos) {
		return Off
	}
	d := s.scratch
	if p.status == Converged {
		d = s.power
	}
	if v := d[s.index(pos)]; v.epoch == p.epoch {
		return v.value
	}
	return Off
}

// Advance does one unit of work and returns the resulting status.
//
func (p *Pass) Advance() Status {
	switch p.phase {
	case phaseReset:
		p.reset()
		p.phase = phaseSeed
	case phaseSeed:
		switch {
		case len(p.fill) > 0:
			p.visitNext()
		case p.cursor < len(p.seeds):
			p.seed(p.seeds[p.cursor])
			p.cursor++
		default:
			p.phase = phaseDrain
		}
	case phaseDrain:
		switch {
		case len(p.fill) > 0:
			p.visitNext()
		case p.head < len(p.queue):
			p.process()
		case !p.enqueueUnevaluated():
			p.converge()
		}
	case phaseDone:
		return p.status
	}
	p.steps++
	if p.short != nil {
		p.abort()
	}
	return p.status
}

func (p *Pass) reset() {
	s := p.sim
	s.epoch++
	if s.epoch == 0 {
		// wrapped around: forget every stamp.
		for i := range s.power {
			s.power[i].epoch = 0
			s.scratch[i].epoch = 0
		}
		for _, id := range s.wires.ids() {
			s.wires.get(id).epoch = 0
		}
		s.published = 0
		s.epoch = 1
	}
	p.epoch = s.epoch

	n := s.components.limit()
	if cap(s.evals) < n {
		s.evals = make([]int, n)
		s.pending = make([]bool, n)
	}
	s.evals = s.evals[:n]
	s.pending = s.pending[:n]
	for i := range s.evals {
		s.evals[i] = 0
		s.pending[i] = false
	}

	p.seeds = append(p.seeds[:0], s.seeds...)
	p.driven = make(map[driver]PowerState)
	p.clashes = p.clashes[:0]

	// components that no driven output can ever reach still get evaluated so
	// that their outputs resolve to Off.
	s.updateNets()
	for _, id := range s.components.ids() {
		c := s.components.get(id)
		bp := c.Blueprint
		if bp.desc.Seed() || bp.generator() || len(bp.inputs[0]) == 0 {
			continue
		}
		if !s.reachable(c) {
			p.enqueue(id, c.Position.Add(bp.inputs[bp.rotation][0]), Off, 0)
		}
	}
}

func (p *Pass) seed(id int) {
	s := p.sim
	c := s.components.get(id)
	st := s.state(p.host, id, c)
	switch c.Blueprint.desc {
	case DescOn:
		p.drive(id, c, 0, On)
	case DescOff:
		p.drive(id, c, 0, Off)
	case DescInput:
		v := Off
		if p.host != nil {
			v = p.host.InputBuffer(c.InputOutputID)
		}
		p.drive(id, c, 0, v)
	case DescSwitch:
		p.drive(id, c, 0, st.sw)
	case DescDelay:
		p.drive(id, c, 0, st.delay)
	default:
		// generator
		p.evaluate(id)
	}
}

func (p *Pass) powerAt(pos Point) PowerState {
	if d := p.sim.scratch[p.sim.index(pos)]; d.epoch == p.epoch {
		return d.value
	}
	return Off
}

// drive floods v from output port of component id.
//
func (p *Pass) drive(id int, c *Component, port int, v PowerState) {
	bp := c.Blueprint
	d := driver{id, port}
	p.driven[d] = v
	p.mark(c.Position.Add(bp.outputs[bp.rotation][port]), v, d, 0)
}

// mark records that pos is driven by d with value v, having been reached
// through wire via (0 for an output port), then schedules the wires leaving
// pos.
//
func (p *Pass) mark(pos Point, v PowerState, d driver, via int) {
	s := p.sim
	i := s.index(pos)
	cur := &s.scratch[i]
	if cur.epoch == p.epoch {
		if cur.value == v {
			return
		}
		if cur.driver != d {
			if via == 0 {
				via = p.claimedBy(pos, cur.driver)
			}
			p.clash(cur.driver, cur.value, d, v, via)
			return
		}
	}
	*cur = drive{epoch: p.epoch, value: v, driver: d, serial: s.components.get(d.id).serial}
	if t := s.tiles[i]; t.Kind == TileInput && !s.components.get(t.ComponentID).Blueprint.desc.Seed() {
		p.enqueue(t.ComponentID, pos, v, d.id)
	}
	ns := s.adj.at(pos)
	for k := len(ns) - 1; k >= 0; k-- {
		p.fill = append(p.fill, visit{wire: ns[k].Wire, to: ns[k].Other, value: v, driver: d})
	}
}

// claimedBy returns a wire at pos driven by d in this pass, or 0.
//
func (p *Pass) claimedBy(pos Point, d driver) int {
	for _, n := range p.sim.adj.at(pos) {
		if w := p.sim.wires.get(n.Wire); w.epoch == p.epoch && w.driver == d {
			return n.Wire
		}
	}
	return 0
}

func (p *Pass) visitNext() {
	last := len(p.fill) - 1
	v := p.fill[last]
	p.fill = p.fill[:last]

	w := p.sim.wires.get(v.wire)
	if w.epoch == p.epoch {
		if w.value == v.value {
			return
		}
		if w.driver != v.driver {
			p.clash(w.driver, w.value, v.driver, v.value, v.wire)
			return
		}
	}
	w.epoch, w.value, w.driver = p.epoch, v.value, v.driver
	p.mark(v.to, v.value, v.driver, v.wire)
}

// clash handles two drivers disagreeing on a wire. Seeds never change their
// value within a pass, so a clash between two seeds is final. Any other clash
// is checked again against the final driver values once the queue drains.
//
func (p *Pass) clash(a driver, va PowerState, b driver, vb PowerState, wire int) {
	s := p.sim
	if s.components.get(a.id).Blueprint.desc.Seed() && s.components.get(b.id).Blueprint.desc.Seed() {
		p.conflict(a, va, b, vb, wire)
		return
	}
	p.clashes = append(p.clashes, clash{a, b, wire})
}

func (p *Pass) conflict(a driver, va PowerState, b driver, vb PowerState, wire int) {
	p.short = &ShortCircuit{
		Kind:       ConflictDrivers,
		ComponentA: a.id,
		ComponentB: b.id,
		ValueA:     va,
		ValueB:     vb,
		WireID:     wire,
	}
}

func (p *Pass) enqueue(target int, pos Point, v PowerState, source int) {
	s := p.sim
	if s.pending[target] {
		return
	}
	s.pending[target] = true
	p.queue = append(p.queue, workItem{target: target, pos: pos, value: v, source: source})
}

func (p *Pass) process() {
	it := p.queue[p.head]
	p.head++
	if p.head == len(p.queue) {
		p.queue, p.head = p.queue[:0], 0
	}
	p.sim.pending[it.target] = false
	p.evaluate(it.target)
}

// enqueueUnevaluated schedules every non-seed component that did not run in
// this pass. It returns false if there was none.
//
func (p *Pass) enqueueUnevaluated() bool {
	s := p.sim
	added := false
	for _, id := range s.components.ids() {
		if s.evals[id] > 0 || s.pending[id] {
			continue
		}
		bp := s.components.get(id).Blueprint
		if bp.desc.Seed() || bp.generator() {
			continue
		}
		p.enqueue(id, Point{}, Off, 0)
		added = true
	}
	return added
}

func (p *Pass) evaluate(id int) {
	s := p.sim
	s.evals[id]++
	if s.evals[id] > s.MaxEvaluations {
		p.short = &ShortCircuit{Kind: ConflictOscillation, ComponentA: id, ComponentB: id}
		return
	}
	c := s.components.get(id)
	bp := c.Blueprint
	st := s.state(p.host, id, c)
	in := func(i int) PowerState {
		return p.powerAt(c.Position.Add(bp.inputs[bp.rotation][i]))
	}

	switch bp.desc {
	case DescOutput:
		v := in(0)
		st.value = v
		if p.host != nil {
			p.host.setOutputBuffer(c.InputOutputID, v)
		}
	case DescDisp:
		st.value = in(0)
	case DescNot:
		p.drive(id, c, 0, Bool(!in(0).On()))
	case DescNand, DescAnd, DescOr, DescNor, DescXor, DescXnor:
		p.drive(id, c, 0, Bool(gate(bp.desc, in(0).On(), in(1).On())))
	case DescSplitter:
		v := in(0)
		for i := 0; i < 8 && p.short == nil; i++ {
			p.drive(id, c, i, v.Line(i))
		}
	case DescJoiner:
		var v PowerState
		for i := 0; i < 8; i++ {
			v = v.WithLine(i, in(i))
		}
		p.drive(id, c, 0, v)
	case DescRAM:
		p.drive(id, c, 0, p.ram(c, st, in(0), in(1), in(2)))
	case DescNone:
		if bp.sim != nil {
			p.custom(id, c, st, in)
		}
	default:
		panic(errors.Errorf("component %d: %v cannot be evaluated", id, bp.desc))
	}
}

func gate(d Descriptor, a, b bool) bool {
	switch d {
	case DescNand:
		return !(a && b)
	case DescAnd:
		return a && b
	case DescOr:
		return a || b
	case DescNor:
		return !(a || b)
	case DescXor:
		return a != b
	case DescXnor:
		return a == b
	}
	panic(errors.Errorf("%v is not a gate", d))
}

// ram reads the cell selected by addr and stages a write if writeEnable is
// on. A previous write staged by the same component is dropped first.
//
func (p *Pass) ram(c *Component, st *Blueprint, addr, data, writeEnable PowerState) PowerState {
	if p.gst == nil {
		return Off
	}
	if st.ramStaged {
		p.gst.unstage(st.ramAddr)
		st.ramStaged = false
	}
	cell := CreateAddress(CreateAddress(p.scope, c.Position), Pt(int(addr), 0))
	v := p.gst.TickRam(writeEnable, data, cell)
	if writeEnable.On() {
		st.ramStaged, st.ramAddr = true, cell
	}
	return v
}

func (p *Pass) custom(id int, c *Component, st *Blueprint, in func(int) PowerState) {
	bp := c.Blueprint
	st.addr = CreateAddress(p.scope, c.Position)
	for i := range bp.inputs[bp.rotation] {
		st.SetInputBuffer(i, in(i))
	}
	st.clearOutputs()
	if sc := st.sim.Step(st, p.gst); sc != nil {
		p.short = &ShortCircuit{Kind: ConflictNested, ComponentA: id, ComponentB: id, Next: sc}
		return
	}
	for i := range bp.outputs[bp.rotation] {
		p.drive(id, c, i, st.OutputBuffer(i))
		if p.short != nil {
			return
		}
	}
}

func (p *Pass) converge() {
	s := p.sim
	for _, c := range p.clashes {
		if va, vb := p.driven[c.a], p.driven[c.b]; va != vb {
			p.conflict(c.a, va, c.b, vb, c.wire)
			return
		}
	}
	for _, id := range s.delays {
		c := s.components.get(id)
		bp := c.Blueprint
		s.state(p.host, id, c).nextDelay = p.powerAt(c.Position.Add(bp.inputs[bp.rotation][0]))
	}
	s.power, s.scratch = s.scratch, s.power
	s.published = p.epoch
	for _, id := range s.wires.ids() {
		w := s.wires.get(id)
		if w.epoch == p.epoch {
			w.PowerState, w.LastVisitComponentID = w.value, w.driver.id
		} else {
			w.PowerState, w.LastVisitComponentID = Off, 0
		}
	}
	p.phase = phaseDone
	p.status = Converged
}

func (p *Pass) abort() {
	p.phase = phaseDone
	p.status = Shorted
	p.fill = p.fill[:0]
	Logger().Debug("propagation aborted",
		zap.Error(p.short),
		zap.Int("wire", p.short.WireID),
		zap.Int("componentA", p.short.ComponentA),
		zap.Int("componentB", p.short.ComponentB))
}

// state returns the Blueprint holding the mutable state of component id as
// seen from host.
//
func (s *Simulation) state(host *Blueprint, id int, c *Component) *Blueprint {
	if host != nil && host.sim == s {
		return host.local(id, c)
	}
	return c.Blueprint
}

// RecordDelayValues latches every Delay register to the value its input had
// at the end of the last converged pass, recursing into custom components.
// host must be the one given to the pass.
//
func (s *Simulation) RecordDelayValues(host *Blueprint) {
	for _, id := range s.delays {
		c := s.components.get(id)
		st := s.state(host, id, c)
		st.delay = st.nextDelay
	}
	for _, id := range s.customs {
		c := s.components.get(id)
		st := s.state(host, id, c)
		st.sim.RecordDelayValues(st)
	}
}
