// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gridsim

import "strconv"

// A Point is a grid position or an offset relative to a component's origin.
//
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{x, y}.
//
func Pt(x, y int) Point { return Point{x, y} }

// Add returns p+q.
//
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
//
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Rotate rotates p around the origin by r quarter turns: (x,y) -> (-y,x) for
// each quarter turn.
//
func (p Point) Rotate(r Rotation) Point {
	for i := Rotation(0); i < r&3; i++ {
		p = Point{-p.Y, p.X}
	}
	return p
}

func (p Point) String() string {
	return "(" + strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y) + ")"
}

// Rotation is a number of 90° turns, R0 to R270.
//
type Rotation uint8

// Rotations.
//
const (
	R0 Rotation = iota
	R90
	R180
	R270
)

// TileKind identifies what occupies a grid tile.
//
type TileKind uint8

// Tile kinds.
//
const (
	TileNothing TileKind = iota
	TileInput
	TileOutput
	TileComponent
)

// A Pixel is one tile of a Blueprint's display, relative to its origin.
// Input and Output pixels are numbered in display order.
//
type Pixel struct {
	Offset Point
	Kind   TileKind
}

// In returns an input pixel at (x, y).
//
func In(x, y int) Pixel { return Pixel{Point{x, y}, TileInput} }

// Out returns an output pixel at (x, y).
//
func Out(x, y int) Pixel { return Pixel{Point{x, y}, TileOutput} }

// Body returns a plain component pixel at (x, y).
//
func Body(x, y int) Pixel { return Pixel{Point{x, y}, TileComponent} }

// Tile is the content of one grid cell. The zero Tile is empty.
//
type Tile struct {
	Kind        TileKind
	ComponentID int
	Port        int // input or output index for TileInput/TileOutput
}
