// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing blueprints.
//
package hwtest

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/gridsim"
	"github.com/db47h/gridsim/hwlib"
)

// maxExhaustive is the largest input count for which all input combinations
// are tried.
const maxExhaustive = 12

// randomRounds is the number of random input vectors tried after the
// exhaustive or all-0/all-1 checks.
const randomRounds = 256

type bench struct {
	bp  *gridsim.Blueprint
	gst *gridsim.GlobalStateTable
}

func newBench(bp *gridsim.Blueprint) *bench {
	return &bench{hwlib.Wrap(bp), gridsim.NewGlobalStateTable()}
}

func (b *bench) tick(in []bool) error {
	for i, v := range in {
		b.bp.SetInputBuffer(i, gridsim.Bool(v))
	}
	if sc := b.bp.Tick(b.gst); sc != nil {
		return sc
	}
	return nil
}

// CompareBlueprints ticks bp1 and bp2 in lockstep with the same inputs and
// fails t as soon as their outputs differ. Both blueprints must have the same
// number of inputs and outputs.
//
// Sequential blueprints are compared over the whole input sequence, so they
// must start in the same state.
//
func CompareBlueprints(t *testing.T, bp1, bp2 *gridsim.Blueprint) {
	t.Helper()

	nIn, nOut := len(bp1.Inputs(gridsim.R0)), len(bp1.Outputs(gridsim.R0))
	if n := len(bp2.Inputs(gridsim.R0)); n != nIn {
		t.Fatalf("%s has %d inputs, %s has %d", bp1.Name(), nIn, bp2.Name(), n)
	}
	if n := len(bp2.Outputs(gridsim.R0)); n != nOut {
		t.Fatalf("%s has %d outputs, %s has %d", bp1.Name(), nOut, bp2.Name(), n)
	}

	b1, b2 := newBench(bp1), newBench(bp2)
	inputs := make([]bool, nIn)
	ticks := 0

	errString := func(o int, ex, got gridsim.PowerState) string {
		var b strings.Builder
		for i, v := range inputs {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "in%d=%v", i, v)
		}
		return fmt.Sprintf("\nExpected %s => out%d=%v\nGot %v (tick %d)", b.String(), o, ex, got, ticks)
	}

	check := func() {
		t.Helper()
		if err := b1.tick(inputs); err != nil {
			t.Fatalf("%s: %v", bp1.Name(), err)
		}
		if err := b2.tick(inputs); err != nil {
			t.Fatalf("%s: %v", bp2.Name(), err)
		}
		ticks++
		for o := 0; o < nOut; o++ {
			if v1, v2 := b1.bp.OutputBuffer(o), b2.bp.OutputBuffer(o); v1 != v2 {
				t.Fatal(errString(o, v1, v2))
			}
		}
	}

	start := time.Now()

	if nIn <= maxExhaustive {
		for i := 0; i < 1<<uint(nIn); i++ {
			for in := range inputs {
				inputs[in] = i&(1<<uint(in)) != 0
			}
			check()
		}
	} else {
		check()
		for in := range inputs {
			inputs[in] = true
		}
		check()
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < randomRounds; i++ {
		for in := range inputs {
			inputs[in] = rnd.Int63()&(1<<62) != 0
		}
		check()
	}

	elapsed := time.Since(start)
	t.Logf("%d + %d components. %d ticks in %v => %.2f Hz",
		b1.bp.Simulation().Size(), b2.bp.Simulation().Size(), ticks, elapsed,
		float64(ticks)/(float64(elapsed)/float64(time.Second)))
}
