// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gridsim

import (
	"sort"

	"go.uber.org/zap"
)

// DefaultMaxEvaluations is the default per-pass evaluation cap of a
// component (see Simulation.MaxEvaluations).
//
const DefaultMaxEvaluations = 1024

// A Component is a Blueprint instance placed on the grid.
//
type Component struct {
	Position      Point
	Blueprint     *Blueprint
	InputOutputID int
	AllowDelete   bool

	serial uint64
}

// WireKind tells whether a wire carries a single line or an 8 line bundle.
//
type WireKind uint8

// Wire kinds.
//
const (
	WireSingle WireKind = iota
	WireBundle
)

// A Wire connects two grid points.
//
// PowerState and LastVisitComponentID are the value and driving component of
// the last converged pass.
//
type Wire struct {
	A, B                 Point
	Kind                 WireKind
	PowerState           PowerState
	LastVisitComponentID int

	// in-progress pass
	epoch  uint32
	value  PowerState
	driver driver
}

// driver identifies one output port of a component.
//
type driver struct {
	id   int
	port int
}

// drive is the value seen at a grid point during a pass.
//
type drive struct {
	epoch  uint32
	value  PowerState
	driver driver
	serial uint64
}

// Simulation is a grid of components and wires together with the state of the
// last propagation pass.
//
type Simulation struct {
	// MaxEvaluations caps the number of times a component may be evaluated
	// in a single pass. Exceeding it aborts the pass with a
	// ConflictOscillation.
	MaxEvaluations int

	width, height int
	tiles         []Tile
	components    store[Component]
	wires         store[Wire]
	adj           adjacency
	serial        uint64

	seeds   []int // seed and generator components, ascending
	delays  []int
	customs []int

	epoch     uint32
	published uint32
	power     []drive // last converged pass
	scratch   []drive // pass in progress
	evals     []int
	pending   []bool

	netsDirty bool
	nets      []int32
	netDriven []bool
}

// NewSimulation returns an empty simulation of the given grid size.
//
func NewSimulation(width, height int) *Simulation {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	n := width * height
	return &Simulation{
		MaxEvaluations: DefaultMaxEvaluations,
		width:          width,
		height:         height,
		tiles:          make([]Tile, n),
		components:     newStore[Component](),
		wires:          newStore[Wire](),
		adj:            make(adjacency),
		power:          make([]drive, n),
		scratch:        make([]drive, n),
		netsDirty:      true,
	}
}

// Width returns the grid width.
//
func (s *Simulation) Width() int { return s.width }

// Height returns the grid height.
//
func (s *Simulation) Height() int { return s.height }

func (s *Simulation) inside(p Point) bool {
	return p.X >= 0 && p.X < s.width && p.Y >= 0 && p.Y < s.height
}

func (s *Simulation) index(p Point) int { return p.Y*s.width + p.X }

// TileAt returns the tile at p. Out of range positions are empty.
//
func (s *Simulation) TileAt(p Point) Tile {
	if !s.inside(p) {
		return Tile{}
	}
	return s.tiles[s.index(p)]
}

// Size returns the number of live components.
//
func (s *Simulation) Size() int { return s.components.live }

// Components returns the ids of live components in ascending order.
//
func (s *Simulation) Components() []int { return s.components.ids() }

// Wires returns the ids of live wires in ascending order.
//
func (s *Simulation) Wires() []int { return s.wires.ids() }

// Component returns a copy of component id.
//
func (s *Simulation) Component(id int) (Component, bool) {
	if !s.components.alive(id) {
		return Component{}, false
	}
	return *s.components.get(id), true
}

// Wire returns a copy of wire id.
//
func (s *Simulation) Wire(id int) (Wire, bool) {
	if !s.wires.alive(id) {
		return Wire{}, false
	}
	return *s.wires.get(id), true
}

// Ports returns the absolute positions of the input and output ports of
// component id.
//
func (s *Simulation) Ports(id int) (inputs, outputs []Point) {
	if !s.components.alive(id) {
		return nil, nil
	}
	c := s.components.get(id)
	bp := c.Blueprint
	for _, off := range bp.inputs[bp.rotation] {
		inputs = append(inputs, c.Position.Add(off))
	}
	for _, off := range bp.outputs[bp.rotation] {
		outputs = append(outputs, c.Position.Add(off))
	}
	return inputs, outputs
}

// InputCount returns the number of Input slots used by this simulation, that
// is the highest InputOutputID of its Input components plus one.
//
func (s *Simulation) InputCount() int { return s.ioCount(DescInput) }

// OutputCount returns the number of Output slots used by this simulation.
//
func (s *Simulation) OutputCount() int { return s.ioCount(DescOutput) }

func (s *Simulation) ioCount(d Descriptor) int {
	n := 0
	for _, id := range s.components.ids() {
		c := s.components.get(id)
		if c.Blueprint.desc == d && c.InputOutputID+1 > n {
			n = c.InputOutputID + 1
		}
	}
	return n
}

// Place clones bp in rotation r and places it with its origin at pos.
// initialState is the initial Switch or Delay value.
//
// It returns the new component id, or -1 if any tile of the component would
// be out of range or overlap another component, or if bp's nested simulation
// contains s.
//
func (s *Simulation) Place(bp *Blueprint, pos Point, r Rotation, allowDelete bool, inputOutputID int, initialState PowerState) int {
	r &= 3
	for _, px := range bp.display[r] {
		p := pos.Add(px.Offset)
		if !s.inside(p) || s.tiles[s.index(p)].Kind != TileNothing {
			Logger().Debug("placement rejected",
				zap.String("blueprint", bp.name),
				zap.Stringer("pos", pos),
				zap.Stringer("tile", p))
			return -1
		}
	}
	if bp.sim != nil && (bp.sim == s || bp.sim.contains(s, make(map[*Simulation]bool))) {
		Logger().Debug("cyclic composition rejected", zap.String("blueprint", bp.name))
		return -1
	}

	inst := bp.Clone(r)
	inst.sw = initialState
	inst.delay = initialState
	s.serial++
	id, c := s.components.create()
	*c = Component{
		Position:      pos,
		Blueprint:     inst,
		InputOutputID: inputOutputID,
		AllowDelete:   allowDelete,
		serial:        s.serial,
	}
	s.writeTiles(id, c)

	if inst.desc.Seed() || inst.generator() {
		s.seeds = insertID(s.seeds, id)
	}
	if inst.desc == DescDelay {
		s.delays = insertID(s.delays, id)
	}
	if inst.Custom() {
		s.customs = insertID(s.customs, id)
	}
	s.netsDirty = true
	return id
}

// SetMaxEvaluations sets MaxEvaluations of s and of the nested simulations of
// its custom components, recursively.
//
func (s *Simulation) SetMaxEvaluations(n int) {
	s.setMaxEvaluations(n, make(map[*Simulation]bool))
}

func (s *Simulation) setMaxEvaluations(n int, seen map[*Simulation]bool) {
	if seen[s] {
		return
	}
	seen[s] = true
	s.MaxEvaluations = n
	for _, id := range s.customs {
		s.components.get(id).Blueprint.sim.setMaxEvaluations(n, seen)
	}
}

// contains returns true if s transitively contains a custom component whose
// nested simulation is target.
//
func (s *Simulation) contains(target *Simulation, seen map[*Simulation]bool) bool {
	if seen[s] {
		return false
	}
	seen[s] = true
	for _, id := range s.customs {
		sub := s.components.get(id).Blueprint.sim
		if sub == target || sub.contains(target, seen) {
			return true
		}
	}
	return false
}

func (s *Simulation) writeTiles(id int, c *Component) {
	bp := c.Blueprint
	in, out := 0, 0
	for _, px := range bp.display[bp.rotation] {
		t := Tile{Kind: px.Kind, ComponentID: id}
		switch px.Kind {
		case TileInput:
			t.Port = in
			in++
		case TileOutput:
			t.Port = out
			out++
		}
		s.tiles[s.index(c.Position.Add(px.Offset))] = t
	}
}

func (s *Simulation) clearTiles(c *Component) {
	bp := c.Blueprint
	for _, px := range bp.display[bp.rotation] {
		s.tiles[s.index(c.Position.Add(px.Offset))] = Tile{}
	}
}

// DestroyComponent removes the component covering pos. It returns false if
// there is none or if it is not deletable.
//
func (s *Simulation) DestroyComponent(pos Point) bool {
	t := s.TileAt(pos)
	if t.Kind == TileNothing {
		return false
	}
	if !s.components.get(t.ComponentID).AllowDelete {
		return false
	}
	s.remove(t.ComponentID)
	return true
}

// RemoveComponent removes component id regardless of its AllowDelete flag.
//
func (s *Simulation) RemoveComponent(id int) bool {
	if !s.components.alive(id) {
		return false
	}
	s.remove(id)
	return true
}

func (s *Simulation) remove(id int) {
	c := s.components.get(id)
	s.clearTiles(c)
	s.seeds = removeID(s.seeds, id)
	s.delays = removeID(s.delays, id)
	s.customs = removeID(s.customs, id)
	s.components.destroy(id)
	s.netsDirty = true
}

// MoveComponent moves component id so that its origin lands on pos. Every
// tile of the component must land on an empty tile or on one of its own
// current tiles.
//
// Wires with an endpoint on one of the component's ports are dragged along.
// Wires reduced to a single point are destroyed.
//
func (s *Simulation) MoveComponent(id int, pos Point) bool {
	if !s.components.alive(id) {
		return false
	}
	c := s.components.get(id)
	bp := c.Blueprint
	delta := pos.Sub(c.Position)
	if delta == (Point{}) {
		return true
	}
	for _, px := range bp.display[bp.rotation] {
		p := pos.Add(px.Offset)
		if !s.inside(p) {
			return false
		}
		if t := s.tiles[s.index(p)]; t.Kind != TileNothing && t.ComponentID != id {
			return false
		}
	}

	ports := make(map[Point]bool)
	var moved []int
	for _, list := range [2][]Point{bp.inputs[bp.rotation], bp.outputs[bp.rotation]} {
		for _, off := range list {
			p := c.Position.Add(off)
			ports[p] = true
			for _, n := range s.adj.at(p) {
				moved = append(moved, n.Wire)
			}
		}
	}

	s.clearTiles(c)
	c.Position = pos
	s.writeTiles(id, c)

	sort.Ints(moved)
	for i, wid := range moved {
		if i > 0 && moved[i-1] == wid {
			continue
		}
		w := s.wires.get(wid)
		a, b := w.A, w.B
		if ports[a] {
			a = a.Add(delta)
		}
		if ports[b] {
			b = b.Add(delta)
		}
		s.adj.remove(w.A, wid)
		s.adj.remove(w.B, wid)
		if a == b {
			s.wires.destroy(wid)
			continue
		}
		w.A, w.B = a, b
		s.adj.add(a, WireNode{Other: b, Wire: wid})
		s.adj.add(b, WireNode{Other: a, Wire: wid})
	}

	// published values are stale for the moved ports.
	s.published = 0
	s.netsDirty = true
	return true
}

// CreateWire connects a and b with a single line wire. See CreateWireKind.
//
func (s *Simulation) CreateWire(a, b Point) int {
	return s.CreateWireKind(a, b, WireSingle)
}

// CreateWireKind connects a and b with a wire of the given kind and returns its
// id. It returns 0 and does nothing if a == b or either point is out of
// range.
//
func (s *Simulation) CreateWireKind(a, b Point, kind WireKind) int {
	if a == b || !s.inside(a) || !s.inside(b) {
		return 0
	}
	id, w := s.wires.create()
	*w = Wire{A: a, B: b, Kind: kind}
	s.adj.add(a, WireNode{Other: b, Wire: id})
	s.adj.add(b, WireNode{Other: a, Wire: id})
	s.netsDirty = true
	return id
}

// DestroyWire removes wire id.
//
func (s *Simulation) DestroyWire(id int) bool {
	if !s.wires.alive(id) {
		return false
	}
	w := s.wires.get(id)
	s.adj.remove(w.A, id)
	s.adj.remove(w.B, id)
	s.wires.destroy(id)
	// points fed through this wire are stale.
	s.published = 0
	s.netsDirty = true
	return true
}

// WiresAt returns the wires ending at p.
//
func (s *Simulation) WiresAt(p Point) []WireNode {
	ns := s.adj.at(p)
	if len(ns) == 0 {
		return nil
	}
	r := make([]WireNode, len(ns))
	copy(r, ns)
	return r
}

// IdOfWireAt returns the id of a wire ending at p, or else of a straight wire
// running through p. It returns 0 if there is none.
//
func (s *Simulation) IdOfWireAt(p Point) int {
	best := 0
	for _, n := range s.adj.at(p) {
		if best == 0 || n.Wire < best {
			best = n.Wire
		}
	}
	if best != 0 {
		return best
	}
	for _, id := range s.wires.ids() {
		if w := s.wires.get(id); onSegment(w.A, w.B, p) {
			return id
		}
	}
	return 0
}

func onSegment(a, b, p Point) bool {
	ab, ap := b.Sub(a), p.Sub(a)
	if ab.X*ap.Y-ab.Y*ap.X != 0 {
		return false
	}
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}

// PowerStateAt returns the value at p after the last converged pass. Points
// that were not driven, or whose driver has since been destroyed, read Off.
//
func (s *Simulation) PowerStateAt(p Point) PowerState {
	if !s.inside(p) || s.published == 0 {
		return Off
	}
	d := s.power[s.index(p)]
	if d.epoch != s.published || !s.components.alive(d.driver.id) || s.components.get(d.driver.id).serial != d.serial {
		return Off
	}
	return d.value
}

// SetSwitch sets the state of Switch component id.
//
func (s *Simulation) SetSwitch(id int, v PowerState) bool {
	if !s.components.alive(id) {
		return false
	}
	c := s.components.get(id)
	if c.Blueprint.desc != DescSwitch {
		return false
	}
	c.Blueprint.sw = v
	return true
}

// updateNets groups grid points connected by wires and flags the groups that
// contain an output port.
//
func (s *Simulation) updateNets() {
	if !s.netsDirty {
		return
	}
	n := s.width * s.height
	if cap(s.nets) < n {
		s.nets = make([]int32, n)
		s.netDriven = make([]bool, n)
	}
	nets := s.nets[:n]
	for i := range nets {
		nets[i] = int32(i)
		s.netDriven[i] = false
	}
	find := func(i int32) int32 {
		for nets[i] != i {
			nets[i] = nets[nets[i]]
			i = nets[i]
		}
		return i
	}
	for _, id := range s.wires.ids() {
		w := s.wires.get(id)
		a, b := find(int32(s.index(w.A))), find(int32(s.index(w.B)))
		if a != b {
			nets[a] = b
		}
	}
	for i := range nets {
		nets[i] = find(int32(i))
	}
	for _, id := range s.components.ids() {
		c := s.components.get(id)
		bp := c.Blueprint
		for _, off := range bp.outputs[bp.rotation] {
			s.netDriven[nets[s.index(c.Position.Add(off))]] = true
		}
	}
	s.nets = nets
	s.netsDirty = false
}

// reachable returns true if any input of component c shares a net with an
// output port.
//
func (s *Simulation) reachable(c *Component) bool {
	bp := c.Blueprint
	for _, off := range bp.inputs[bp.rotation] {
		if s.netDriven[s.nets[s.index(c.Position.Add(off))]] {
			return true
		}
	}
	return false
}

func insertID(ids []int, id int) []int {
	i := sort.SearchInts(ids, id)
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func removeID(ids []int, id int) []int {
	i := sort.SearchInts(ids, id)
	if i < len(ids) && ids[i] == id {
		return append(ids[:i], ids[i+1:]...)
	}
	return ids
}
