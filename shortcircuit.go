// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gridsim

import (
	"fmt"
	"strings"
)

// ConflictKind tells why a propagation pass was aborted.
//
type ConflictKind uint8

// Conflict kinds.
//
const (
	// two drivers assert different values on the same wire.
	ConflictDrivers ConflictKind = iota
	// a custom component's nested pass failed, see Next.
	ConflictNested
	// a component kept changing its output and exceeded the evaluation cap.
	ConflictOscillation
)

// A ShortCircuit describes why a propagation pass failed.
//
// For ConflictDrivers, ComponentA drove WireID with ValueA and ComponentB
// tried to drive it with ValueB. For ConflictNested, ComponentA and
// ComponentB are both the custom component and Next describes the failure in
// its nested Simulation.
//
type ShortCircuit struct {
	Kind       ConflictKind
	ComponentA int
	ComponentB int
	ValueA     PowerState
	ValueB     PowerState
	WireID     int
	Next       *ShortCircuit
}

func (sc *ShortCircuit) Error() string {
	var b strings.Builder
	for e := sc; e != nil; e = e.Next {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		switch e.Kind {
		case ConflictDrivers:
			fmt.Fprintf(&b, "short circuit on wire %d: component %d drives %v, component %d drives %v",
				e.WireID, e.ComponentA, e.ValueA, e.ComponentB, e.ValueB)
		case ConflictNested:
			fmt.Fprintf(&b, "in component %d", e.ComponentA)
		case ConflictOscillation:
			fmt.Fprintf(&b, "component %d does not settle", e.ComponentA)
		}
	}
	return b.String()
}

// Unwrap returns the nested description, if any.
//
func (sc *ShortCircuit) Unwrap() error {
	if sc.Next == nil {
		return nil
	}
	return sc.Next
}

// Root returns the innermost description in the chain.
//
func (sc *ShortCircuit) Root() *ShortCircuit {
	for sc.Next != nil {
		sc = sc.Next
	}
	return sc
}
