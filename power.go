// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gridsim

import "strconv"

// PowerState is the signal carried by a wire or port: a bundle of 8 lines
// packed into one byte. A single line wire only uses bit 0.
//
type PowerState uint8

// Single line power states.
//
const (
	Off PowerState = 0
	On  PowerState = 1
)

// Bool converts a bool to On or Off.
//
func Bool(b bool) PowerState {
	if b {
		return On
	}
	return Off
}

// On returns true if any line of p is set.
//
func (p PowerState) On() bool { return p != 0 }

// Line returns the state of line i (0 to 7) as a single line PowerState.
//
func (p PowerState) Line(i int) PowerState {
	return (p >> uint(i)) & 1
}

// WithLine returns a copy of p with line i set to the given state.
//
func (p PowerState) WithLine(i int, v PowerState) PowerState {
	if v.On() {
		return p | 1<<uint(i)
	}
	return p &^ (1 << uint(i))
}

func (p PowerState) String() string {
	switch p {
	case Off:
		return "Off"
	case On:
		return "On"
	}
	return "0x" + strconv.FormatUint(uint64(p), 16)
}
