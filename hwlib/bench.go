// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/gridsim"
	"github.com/pkg/errors"
)

// A Bench assembles components on a grid. The first failing operation is
// recorded and turns subsequent ones into no-ops; check it with Err.
//
type Bench struct {
	Sim *gridsim.Simulation
	err error
}

// NewBench returns a Bench with an empty grid of the given size.
//
func NewBench(width, height int) *Bench {
	return &Bench{Sim: gridsim.NewSimulation(width, height)}
}

// Err returns the first error encountered by b.
//
func (b *Bench) Err() error { return b.err }

// Place places bp at (x, y) in rotation R0 and returns its id.
//
func (b *Bench) Place(bp *gridsim.Blueprint, x, y int) int {
	return b.PlaceIO(bp, x, y, 0)
}

// PlaceIO places bp at (x, y) with the given input/output id.
//
func (b *Bench) PlaceIO(bp *gridsim.Blueprint, x, y, io int) int {
	if b.err != nil {
		return -1
	}
	id := b.Sim.Place(bp, gridsim.Pt(x, y), gridsim.R0, true, io, gridsim.Off)
	if id < 0 {
		b.err = errors.Errorf("cannot place %s at (%d,%d)", bp.Name(), x, y)
	}
	return id
}

// Connect wires output port out of component from to input port in of
// component to.
//
func (b *Bench) Connect(from, out, to, in int) {
	b.ConnectKind(from, out, to, in, gridsim.WireSingle)
}

// ConnectKind is like Connect with an explicit wire kind.
//
func (b *Bench) ConnectKind(from, out, to, in int, kind gridsim.WireKind) {
	if b.err != nil {
		return
	}
	_, outs := b.Sim.Ports(from)
	ins, _ := b.Sim.Ports(to)
	if out < 0 || out >= len(outs) || in < 0 || in >= len(ins) {
		b.err = errors.Errorf("no port %d->%d between components %d and %d", out, in, from, to)
		return
	}
	if b.Sim.CreateWireKind(outs[out], ins[in], kind) == 0 {
		b.err = errors.Errorf("cannot wire %v to %v", outs[out], ins[in])
	}
}

// Blueprint wraps the bench's simulation into a custom blueprint.
//
func (b *Bench) Blueprint(name string) (*gridsim.Blueprint, error) {
	if b.err != nil {
		return nil, errors.Wrap(b.err, name)
	}
	return gridsim.NewCustomBlueprint(name, b.Sim), nil
}

// Wrap returns a custom blueprint containing a single instance of bp whose
// inputs and outputs are wired to Input and Output components, in port
// order. Custom blueprints are returned as is.
//
// This makes any blueprint drivable through InputBuffer and OutputBuffer.
//
func Wrap(bp *gridsim.Blueprint) *gridsim.Blueprint {
	if bp.Custom() {
		return bp
	}
	minX, minY, maxX, maxY := 0, 0, 0, 0
	for i, px := range bp.Display(gridsim.R0) {
		p := px.Offset
		if i == 0 || p.X < minX {
			minX = p.X
		}
		if i == 0 || p.Y < minY {
			minY = p.Y
		}
		if i == 0 || p.X > maxX {
			maxX = p.X
		}
		if i == 0 || p.Y > maxY {
			maxY = p.Y
		}
	}
	nIn, nOut := len(bp.Inputs(gridsim.R0)), len(bp.Outputs(gridsim.R0))
	h := maxY - minY + 1
	if nIn > h {
		h = nIn
	}
	if nOut > h {
		h = nOut
	}
	w := maxX - minX + 1
	b := NewBench(w+4, h)
	part := b.Place(bp, 2-minX, -minY)
	for i := 0; i < nIn; i++ {
		id := b.PlaceIO(input, 0, i, i)
		b.Connect(id, 0, part, i)
	}
	for i := 0; i < nOut; i++ {
		id := b.PlaceIO(output, w+3, i, i)
		b.Connect(part, i, id, 0)
	}
	wrapped, err := b.Blueprint(bp.Name())
	if err != nil {
		panic(err)
	}
	return wrapped
}
