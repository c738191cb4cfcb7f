// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gridsim

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// GlobalStateTable is the memory backing RAM components.
//
// It is double buffered: writes staged during a tick only become visible to
// reads after SwapBuffers. Cells are addressed by 64 bit addresses derived
// from the structural location of the RAM component (see CreateAddress), so
// that each RAM instance, at any nesting depth, owns a distinct 256 cell page.
//
// The table is owned by the outermost driver and passed down on every step.
//
type GlobalStateTable struct {
	read  map[uint64]PowerState
	write map[uint64]PowerState
}

// NewGlobalStateTable returns an empty table. All cells read Off.
//
func NewGlobalStateTable() *GlobalStateTable {
	return &GlobalStateTable{
		read:  make(map[uint64]PowerState),
		write: make(map[uint64]PowerState),
	}
}

// CreateAddress hash-combines a parent address with a grid position.
//
func CreateAddress(parent uint64, p Point) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], parent)
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(p.X)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(p.Y)))
	return xxhash.Sum64(buf[:])
}

// Read returns the committed value at address. Never written cells read Off.
//
func (t *GlobalStateTable) Read(address uint64) PowerState {
	return t.read[address]
}

// TickRam returns the committed value at address and, if enableWrite is On,
// stages writeValue for the next SwapBuffers.
//
func (t *GlobalStateTable) TickRam(enableWrite, writeValue PowerState, address uint64) PowerState {
	v := t.read[address]
	if enableWrite.On() {
		t.write[address] = writeValue
	}
	return v
}

func (t *GlobalStateTable) unstage(address uint64) {
	delete(t.write, address)
}

// Staged returns the number of pending writes.
//
func (t *GlobalStateTable) Staged() int { return len(t.write) }

// SwapBuffers commits staged writes.
//
func (t *GlobalStateTable) SwapBuffers() {
	for k, v := range t.write {
		if v == Off {
			delete(t.read, k)
		} else {
			t.read[k] = v
		}
	}
	t.DiscardWrites()
}

// DiscardWrites drops staged writes.
//
func (t *GlobalStateTable) DiscardWrites() {
	for k := range t.write {
		delete(t.write, k)
	}
}

// Reset clears the whole table.
//
func (t *GlobalStateTable) Reset() {
	t.read = make(map[uint64]PowerState)
	t.write = make(map[uint64]PowerState)
}
