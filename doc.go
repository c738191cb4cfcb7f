// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package gridsim provides a grid based digital logic simulator.

Components (logic gates, constants, inputs/outputs, delays, switches, bundle
splitters and joiners, RAM) are placed on a 2D grid of tiles and connected with
wires running between grid points. Each simulated tick, a single propagation
pass floods driven values from seed components (constants, inputs, switches and
delay registers) across the wire graph and evaluates gates as their inputs
become known, until the work queue drains or two drivers assert different
values on the same wire (a short circuit).

A Blueprint describes a component type: its shape in 4 rotations, its ports and
its behavior. A custom Blueprint delegates its behavior to a nested Simulation,
whose Input and Output components are the forwarding points for the
Blueprint's InputBuffer and OutputBuffer:

	inner := gridsim.NewSimulation(8, 8)
	// place Input, NAND and Output components in inner and wire them...
	and := gridsim.NewCustomBlueprint("AND", inner)

	outer := gridsim.NewSimulation(32, 32)
	id := outer.Place(and, gridsim.Pt(4, 4), gridsim.R0, true, 0, gridsim.Off)

Delay components latch their input at the end of a converged tick
(RecordDelayValues) so that the next tick observes the value of the previous
one. RAM components read and write an externally owned GlobalStateTable whose
writes only become visible after SwapBuffers.

A Simulation is not safe for concurrent use.

*/
package gridsim
