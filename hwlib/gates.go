// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable blueprints for gridsim.
//
// Copyright 2018 Denis Bernard <db047h@gmail.com>
//
// This package is licensed under the MIT license. See license text in the LICENSE file.
//
package hwlib

import (
	"sort"

	"github.com/db47h/gridsim"
)

var (
	in   = gridsim.In
	out  = gridsim.Out
	body = gridsim.Body
)

// gate geometry: a and b on the left, out in the middle of the right side.
var gateDisplay = []gridsim.Pixel{
	in(0, 0), body(1, 0),
	body(1, 1), out(2, 1),
	in(0, 2), body(1, 2),
}

func mustBlueprint(name string, d gridsim.Descriptor, display []gridsim.Pixel) *gridsim.Blueprint {
	bp, err := gridsim.NewBlueprint(name, d, display)
	if err != nil {
		panic(err)
	}
	return bp
}

func column(x, n int, kind func(x, y int) gridsim.Pixel) []gridsim.Pixel {
	r := make([]gridsim.Pixel, n)
	for i := range r {
		r[i] = kind(x, i)
	}
	return r
}

func concat(ps ...[]gridsim.Pixel) []gridsim.Pixel {
	var r []gridsim.Pixel
	for _, p := range ps {
		r = append(r, p...)
	}
	return r
}

var (
	nand = mustBlueprint("NAND", gridsim.DescNand, gateDisplay)
	and  = mustBlueprint("AND", gridsim.DescAnd, gateDisplay)
	or   = mustBlueprint("OR", gridsim.DescOr, gateDisplay)
	nor  = mustBlueprint("NOR", gridsim.DescNor, gateDisplay)
	xor  = mustBlueprint("XOR", gridsim.DescXor, gateDisplay)
	xnor = mustBlueprint("XNOR", gridsim.DescXnor, gateDisplay)
	not  = mustBlueprint("NOT", gridsim.DescNot, []gridsim.Pixel{in(0, 0), out(1, 0)})

	on    = mustBlueprint("On", gridsim.DescOn, []gridsim.Pixel{out(0, 0)})
	off   = mustBlueprint("Off", gridsim.DescOff, []gridsim.Pixel{out(0, 0)})
	input = mustBlueprint("Input", gridsim.DescInput, []gridsim.Pixel{out(0, 0)})
	swtch = mustBlueprint("Switch", gridsim.DescSwitch, []gridsim.Pixel{out(0, 0)})

	output = mustBlueprint("Output", gridsim.DescOutput, []gridsim.Pixel{in(0, 0)})
	disp   = mustBlueprint("Disp", gridsim.DescDisp, []gridsim.Pixel{in(0, 0)})
	delay  = mustBlueprint("Delay", gridsim.DescDelay, []gridsim.Pixel{in(0, 0), out(1, 0)})

	splitter = mustBlueprint("Splitter", gridsim.DescSplitter,
		concat([]gridsim.Pixel{in(0, 0)}, column(1, 8, body), column(2, 8, out)))
	joiner = mustBlueprint("Joiner", gridsim.DescJoiner,
		concat(column(0, 8, in), column(1, 8, body), []gridsim.Pixel{out(2, 0)}))
	ram = mustBlueprint("RAM", gridsim.DescRAM,
		concat([]gridsim.Pixel{in(0, 0), in(0, 1), in(0, 2)}, column(1, 3, body), []gridsim.Pixel{out(2, 1)}))
)

// Nand returns a NAND gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = !(a && b)
//
func Nand() *gridsim.Blueprint { return nand }

// And returns an AND gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a && b
//
func And() *gridsim.Blueprint { return and }

// Or returns an OR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a || b
//
func Or() *gridsim.Blueprint { return or }

// Nor returns a NOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = !(a || b)
//
func Nor() *gridsim.Blueprint { return nor }

// Xor returns a XOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a != b
//
func Xor() *gridsim.Blueprint { return xor }

// Xnor returns a XNOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a == b
//
func Xnor() *gridsim.Blueprint { return xnor }

// Not returns a NOT gate.
//
//	Inputs: in
//	Outputs: out
//	Function: out = !in
//
func Not() *gridsim.Blueprint { return not }

// On returns a constant On source.
//
func On() *gridsim.Blueprint { return on }

// Off returns a constant Off source.
//
func Off() *gridsim.Blueprint { return off }

// Input returns an input pin. Its value is read from the host's InputBuffer
// slot given by the component's InputOutputID.
//
func Input() *gridsim.Blueprint { return input }

// Output returns an output pin. Its value is written to the host's
// OutputBuffer slot given by the component's InputOutputID.
//
func Output() *gridsim.Blueprint { return output }

// Switch returns a manual switch.
//
func Switch() *gridsim.Blueprint { return swtch }

// Disp returns a display probe.
//
func Disp() *gridsim.Blueprint { return disp }

// Delay returns a one tick delay.
//
//	Inputs: in
//	Outputs: out
//	Function: out(t) = in(t-1)
//
func Delay() *gridsim.Blueprint { return delay }

// Splitter returns a bundle splitter.
//
//	Inputs: in (bundle)
//	Outputs: out[8]
//	Function: out[i] = line i of in
//
func Splitter() *gridsim.Blueprint { return splitter }

// Joiner returns a bundle joiner.
//
//	Inputs: in[8]
//	Outputs: out (bundle)
//	Function: line i of out = in[i]
//
func Joiner() *gridsim.Blueprint { return joiner }

// RAM returns a 256 cell memory.
//
//	Inputs: addr (bundle), data (bundle), we
//	Outputs: out (bundle)
//	Function: out = mem[addr]; if we { mem[addr] = data } at the end of the tick
//
func RAM() *gridsim.Blueprint { return ram }

var builtins = map[string]func() *gridsim.Blueprint{
	"NAND":     Nand,
	"AND":      And,
	"OR":       Or,
	"NOR":      Nor,
	"XOR":      Xor,
	"XNOR":     Xnor,
	"NOT":      Not,
	"On":       On,
	"Off":      Off,
	"Input":    Input,
	"Output":   Output,
	"Switch":   Switch,
	"Disp":     Disp,
	"Delay":    Delay,
	"Splitter": Splitter,
	"Joiner":   Joiner,
	"RAM":      RAM,
}

// ByName returns the library blueprint with the given name.
//
func ByName(name string) (*gridsim.Blueprint, bool) {
	if f, ok := builtins[name]; ok {
		return f(), true
	}
	if f, ok := composites[name]; ok {
		return f(), true
	}
	return nil, false
}

// Names returns the sorted names of all library blueprints.
//
func Names() []string {
	r := make([]string, 0, len(builtins)+len(composites))
	for n := range builtins {
		r = append(r, n)
	}
	for n := range composites {
		r = append(r, n)
	}
	sort.Strings(r)
	return r
}
