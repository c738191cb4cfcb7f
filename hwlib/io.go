// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/gridsim"

// Int64 returns n output buffers of bp starting at first as an int64. Output
// first is lsb.
//
func Int64(bp *gridsim.Blueprint, first, n int) int64 {
	var out int64
	for bit := 0; bit < n; bit++ {
		if bp.OutputBuffer(first + bit).On() {
			out |= 1 << uint(bit)
		}
	}
	return out
}

// SetInt64 sets n input buffers of bp starting at first to the bits of v.
//
func SetInt64(bp *gridsim.Blueprint, first, n int, v int64) {
	for bit := 0; bit < n; bit++ {
		bp.SetInputBuffer(first+bit, gridsim.Bool(v&(1<<uint(bit)) != 0))
	}
}

// Bus returns the 8 line bundle value of b.
//
func Bus(b byte) gridsim.PowerState { return gridsim.PowerState(b) }
