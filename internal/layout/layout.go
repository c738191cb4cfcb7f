// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package layout reads grid layouts from YAML documents.
//
// A document describes a top level grid together with the custom types it
// uses:
//
//	name: Adder
//	width: 8
//	height: 4
//	types:
//	  - name: Half
//	    width: 6
//	    height: 7
//	    components:
//	      - {part: Input, at: [0, 0], io: 0}
//	      ...
//	components:
//	  - {part: Input, at: [0, 0], io: 0}
//	  - {part: Half, at: [2, 0]}
//	wires:
//	  - {from: [0, 0], to: [2, 0]}
//	vectors:
//	  - [1, 0]
//
// Parts are resolved against earlier types first, then against the hwlib
// library.
//
package layout

import (
	"os"

	"github.com/db47h/gridsim"
	"github.com/db47h/gridsim/hwlib"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Component is a placed part.
//
type Component struct {
	Part     string `yaml:"part"`
	At       []int  `yaml:"at,flow"`
	Rotation int    `yaml:"rotation,omitempty"`
	IO       int    `yaml:"io,omitempty"`
	On       bool   `yaml:"on,omitempty"`
	Locked   bool   `yaml:"locked,omitempty"`
}

// Wire connects two grid points.
//
type Wire struct {
	From   []int `yaml:"from,flow"`
	To     []int `yaml:"to,flow"`
	Bundle bool  `yaml:"bundle,omitempty"`
}

// Grid is a named grid of components and wires.
//
type Grid struct {
	Name       string      `yaml:"name"`
	Width      int         `yaml:"width"`
	Height     int         `yaml:"height"`
	Components []Component `yaml:"components"`
	Wires      []Wire      `yaml:"wires,omitempty"`
}

// Document is a top level grid with its custom types and the input vectors to
// apply on successive ticks.
//
type Document struct {
	Grid    `yaml:",inline"`
	Types   []Grid  `yaml:"types,omitempty"`
	Vectors [][]int `yaml:"vectors,omitempty"`

	// MaxEvaluations, if positive, overrides the evaluation cap of every
	// simulation built from the document, library composites included.
	MaxEvaluations int `yaml:"-"`
}

// Parse decodes a YAML document.
//
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "decode layout")
	}
	if d.Width <= 0 || d.Height <= 0 {
		return nil, errors.Errorf("%s: invalid grid size %dx%d", d.Name, d.Width, d.Height)
	}
	for i, v := range d.Vectors {
		for j, x := range v {
			if x < 0 || x > 0xff {
				return nil, errors.Errorf("%s: vector %d: input %d: value %d out of range 0..255", d.Name, i, j, x)
			}
		}
	}
	return &d, nil
}

// Load reads and decodes the document in file name.
//
func Load(name string) (*Document, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read layout")
	}
	return Parse(data)
}

// Marshal encodes d as YAML.
//
func (d *Document) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(d)
	return b, errors.Wrap(err, "encode layout")
}

// Build builds the top level grid.
//
func (d *Document) Build() (*gridsim.Simulation, error) {
	types := make(map[string]*gridsim.Blueprint, len(d.Types))
	for i := range d.Types {
		g := &d.Types[i]
		if g.Name == "" {
			return nil, errors.Errorf("type %d: missing name", i)
		}
		if _, ok := types[g.Name]; ok {
			return nil, errors.Errorf("type %s: duplicate name", g.Name)
		}
		sim, err := g.build(types, d.MaxEvaluations)
		if err != nil {
			return nil, err
		}
		types[g.Name] = gridsim.NewCustomBlueprint(g.Name, sim)
	}
	return d.Grid.build(types, d.MaxEvaluations)
}

// Blueprint builds the top level grid and wraps it into a custom blueprint.
//
func (d *Document) Blueprint() (*gridsim.Blueprint, error) {
	sim, err := d.Build()
	if err != nil {
		return nil, err
	}
	return gridsim.NewCustomBlueprint(d.Name, sim), nil
}

// Vector returns the input values for the given tick. The last vector is
// held once the list is exhausted; a document without vectors drives all
// inputs Off.
//
func (d *Document) Vector(tick int) []gridsim.PowerState {
	if len(d.Vectors) == 0 || tick < 0 {
		return nil
	}
	if tick >= len(d.Vectors) {
		tick = len(d.Vectors) - 1
	}
	v := d.Vectors[tick]
	r := make([]gridsim.PowerState, len(v))
	for i, x := range v {
		r[i] = gridsim.PowerState(x)
	}
	return r
}

func point(v []int) (gridsim.Point, bool) {
	if len(v) != 2 {
		return gridsim.Point{}, false
	}
	return gridsim.Pt(v[0], v[1]), true
}

func (g *Grid) build(types map[string]*gridsim.Blueprint, maxEvals int) (*gridsim.Simulation, error) {
	if g.Width <= 0 || g.Height <= 0 {
		return nil, errors.Errorf("%s: invalid grid size %dx%d", g.Name, g.Width, g.Height)
	}
	sim := gridsim.NewSimulation(g.Width, g.Height)
	for i, c := range g.Components {
		bp, ok := types[c.Part]
		if !ok {
			if bp, ok = hwlib.ByName(c.Part); !ok {
				return nil, errors.Errorf("%s: component %d: unknown part %q", g.Name, i, c.Part)
			}
		}
		pos, ok := point(c.At)
		if !ok {
			return nil, errors.Errorf("%s: component %d: invalid position %v", g.Name, i, c.At)
		}
		if c.Rotation < 0 || c.Rotation > 3 {
			return nil, errors.Errorf("%s: component %d: invalid rotation %d", g.Name, i, c.Rotation)
		}
		id := sim.Place(bp, pos, gridsim.Rotation(c.Rotation), !c.Locked, c.IO, gridsim.Bool(c.On))
		if id < 0 {
			return nil, errors.Errorf("%s: cannot place %s at %v", g.Name, c.Part, pos)
		}
	}
	for i, w := range g.Wires {
		a, okA := point(w.From)
		b, okB := point(w.To)
		if !okA || !okB {
			return nil, errors.Errorf("%s: wire %d: invalid endpoints %v-%v", g.Name, i, w.From, w.To)
		}
		kind := gridsim.WireSingle
		if w.Bundle {
			kind = gridsim.WireBundle
		}
		if sim.CreateWireKind(a, b, kind) == 0 {
			return nil, errors.Errorf("%s: cannot wire %v to %v", g.Name, a, b)
		}
	}
	if maxEvals > 0 {
		sim.SetMaxEvaluations(maxEvals)
	}
	return sim, nil
}
