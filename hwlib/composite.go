// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/gridsim"

var composites = map[string]func() *gridsim.Blueprint{
	"NandAND":     AndOfNand,
	"NandXOR":     XorOfNand,
	"Mux":         Mux,
	"HalfAdder":   HalfAdder,
	"FullAdder":   FullAdder,
	"BitRegister": BitRegister,
}

func mustCustom(name string, b *Bench) *gridsim.Blueprint {
	bp, err := b.Blueprint(name)
	if err != nil {
		panic(err)
	}
	return bp
}

// AndOfNand returns an AND gate built from two NAND gates.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a && b
//
func AndOfNand() *gridsim.Blueprint {
	b := NewBench(10, 3)
	a, bb := b.PlaceIO(input, 0, 0, 0), b.PlaceIO(input, 0, 2, 1)
	n0 := b.Place(nand, 2, 0)
	n1 := b.Place(nand, 6, 0)
	o := b.PlaceIO(output, 9, 1, 0)
	b.Connect(a, 0, n0, 0)
	b.Connect(bb, 0, n0, 1)
	b.Connect(n0, 0, n1, 0)
	b.Connect(n0, 0, n1, 1)
	b.Connect(n1, 0, o, 0)
	return mustCustom("NandAND", b)
}

// XorOfNand returns a XOR gate built from four NAND gates.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a != b
//
func XorOfNand() *gridsim.Blueprint {
	b := NewBench(14, 7)
	a, bb := b.PlaceIO(input, 0, 0, 0), b.PlaceIO(input, 0, 4, 1)
	nab := b.Place(nand, 2, 1)
	w0 := b.Place(nand, 6, 0)
	w1 := b.Place(nand, 6, 4)
	x := b.Place(nand, 10, 2)
	o := b.PlaceIO(output, 13, 3, 0)
	b.Connect(a, 0, nab, 0)
	b.Connect(bb, 0, nab, 1)
	b.Connect(a, 0, w0, 0)
	b.Connect(nab, 0, w0, 1)
	b.Connect(nab, 0, w1, 0)
	b.Connect(bb, 0, w1, 1)
	b.Connect(w0, 0, x, 0)
	b.Connect(w1, 0, x, 1)
	b.Connect(x, 0, o, 0)
	return mustCustom("NandXOR", b)
}

// Mux returns a multiplexer built from basic gates.
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: if sel == 0 { out = a } else { out = b }
//
func Mux() *gridsim.Blueprint {
	b := NewBench(13, 7)
	a := b.PlaceIO(input, 0, 0, 0)
	bb := b.PlaceIO(input, 0, 4, 1)
	sel := b.PlaceIO(input, 0, 6, 2)
	ns := b.Place(not, 2, 6)
	w0 := b.Place(and, 5, 0)
	w1 := b.Place(and, 5, 4)
	either := b.Place(or, 9, 2)
	o := b.PlaceIO(output, 12, 3, 0)
	b.Connect(sel, 0, ns, 0)
	b.Connect(a, 0, w0, 0)
	b.Connect(ns, 0, w0, 1)
	b.Connect(bb, 0, w1, 0)
	b.Connect(sel, 0, w1, 1)
	b.Connect(w0, 0, either, 0)
	b.Connect(w1, 0, either, 1)
	b.Connect(either, 0, o, 0)
	return mustCustom("Mux", b)
}

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder() *gridsim.Blueprint {
	b := NewBench(6, 7)
	a, bb := b.PlaceIO(input, 0, 0, 0), b.PlaceIO(input, 0, 2, 1)
	x := b.Place(xor, 2, 0)
	c := b.Place(and, 2, 4)
	s, co := b.PlaceIO(output, 5, 1, 0), b.PlaceIO(output, 5, 5, 1)
	b.Connect(a, 0, x, 0)
	b.Connect(bb, 0, x, 1)
	b.Connect(a, 0, c, 0)
	b.Connect(bb, 0, c, 1)
	b.Connect(x, 0, s, 0)
	b.Connect(c, 0, co, 0)
	return mustCustom("HalfAdder", b)
}

// FullAdder returns a full adder built from two nested half adders.
//
//	Inputs: a, b, cin
//	Outputs: s, cout
//	Function: s = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
func FullAdder() *gridsim.Blueprint {
	ha := HalfAdder()
	b := NewBench(14, 4)
	a := b.PlaceIO(input, 0, 0, 0)
	bb := b.PlaceIO(input, 0, 1, 1)
	cin := b.PlaceIO(input, 0, 3, 2)
	h0 := b.Place(ha, 2, 0)
	h1 := b.Place(ha, 6, 0)
	either := b.Place(or, 10, 1)
	s, co := b.PlaceIO(output, 13, 0, 0), b.PlaceIO(output, 13, 2, 1)
	b.Connect(a, 0, h0, 0)
	b.Connect(bb, 0, h0, 1)
	b.Connect(h0, 0, h1, 0)
	b.Connect(cin, 0, h1, 1)
	b.Connect(h0, 1, either, 0)
	b.Connect(h1, 1, either, 1)
	b.Connect(h1, 0, s, 0)
	b.Connect(either, 0, co, 0)
	return mustCustom("FullAdder", b)
}

// BitRegister returns a 1 bit register.
//
//	Inputs: in, load
//	Outputs: out
//	Function: out(t) = load(t-1) ? in(t-1) : out(t-1)
//
func BitRegister() *gridsim.Blueprint {
	b := NewBench(15, 7)
	data := b.PlaceIO(input, 0, 0, 0)
	load := b.PlaceIO(input, 0, 6, 1)
	nl := b.Place(not, 2, 6)
	keep := b.Place(and, 5, 0)
	set := b.Place(and, 5, 4)
	either := b.Place(or, 9, 2)
	d := b.Place(delay, 12, 3)
	o := b.PlaceIO(output, 14, 3, 0)
	b.Connect(load, 0, nl, 0)
	b.Connect(d, 0, keep, 0)
	b.Connect(nl, 0, keep, 1)
	b.Connect(data, 0, set, 0)
	b.Connect(load, 0, set, 1)
	b.Connect(keep, 0, either, 0)
	b.Connect(set, 0, either, 1)
	b.Connect(either, 0, d, 0)
	b.Connect(d, 0, o, 0)
	return mustCustom("BitRegister", b)
}
