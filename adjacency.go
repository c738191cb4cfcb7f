// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gridsim

// WireNode is one wire endpoint as seen from the opposite endpoint.
//
type WireNode struct {
	Other Point // opposite endpoint
	Wire  int   // wire id
}

// adjacency maps grid points to the wires ending there.
//
type adjacency map[Point][]WireNode

func (a adjacency) add(p Point, n WireNode) {
	a[p] = append(a[p], n)
}

func (a adjacency) remove(p Point, wire int) {
	ns := a[p]
	for i := range ns {
		if ns[i].Wire == wire {
			last := len(ns) - 1
			ns[i] = ns[last]
			ns[last] = WireNode{}
			ns = ns[:last]
			break
		}
	}
	if len(ns) == 0 {
		delete(a, p)
		return
	}
	a[p] = ns
}

// at returns the wires ending at p. The returned slice must not be modified.
//
func (a adjacency) at(p Point) []WireNode {
	return a[p]
}
