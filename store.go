// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gridsim

import "github.com/pkg/errors"

// store is an arena of T values addressed by integer ids. Freed ids go to a
// free stack and are handed out again by create. Id 0 is reserved and never
// live so that the zero value of an id field means "none".
//
type store[T any] struct {
	slots []slot[T]
	free  []int
	live  int
}

type slot[T any] struct {
	v    T
	live bool
}

func newStore[T any]() store[T] {
	return store[T]{slots: make([]slot[T], 1)}
}

// create returns a new id and a pointer to its zeroed value.
//
func (s *store[T]) create() (int, *T) {
	var id int
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[id] = slot[T]{live: true}
	} else {
		id = len(s.slots)
		s.slots = append(s.slots, slot[T]{live: true})
	}
	s.live++
	return id, &s.slots[id].v
}

// destroy releases id. The slot value is zeroed.
//
func (s *store[T]) destroy(id int) {
	if !s.alive(id) {
		panic(errors.Errorf("destroy of dead id %d", id))
	}
	s.slots[id] = slot[T]{}
	s.free = append(s.free, id)
	s.live--
}

func (s *store[T]) alive(id int) bool {
	return id > 0 && id < len(s.slots) && s.slots[id].live
}

// get returns a pointer to the value for id. The pointer is only valid until
// the next call to create.
//
func (s *store[T]) get(id int) *T {
	if !s.alive(id) {
		panic(errors.Errorf("access to dead id %d", id))
	}
	return &s.slots[id].v
}

// ids returns the live ids in ascending order.
//
func (s *store[T]) ids() []int {
	r := make([]int, 0, s.live)
	for id := 1; id < len(s.slots); id++ {
		if s.slots[id].live {
			r = append(r, id)
		}
	}
	return r
}

// limit returns one past the largest id ever handed out.
//
func (s *store[T]) limit() int { return len(s.slots) }
