// Package core provides the laser propagation engine for Khet boards.
// This package is UI-agnostic and deterministic.
package core

import "strings"

// Dir represents a compass direction: the way a beam travels, or the side
// of a tile a beam enters from.
type Dir uint8

const (
	DirNorth Dir = iota
	DirEast
	DirSouth
	DirWest
)

// String returns the string representation of a direction.
func (d Dir) String() string {
	switch d {
	case DirNorth:
		return "north"
	case DirEast:
		return "east"
	case DirSouth:
		return "south"
	case DirWest:
		return "west"
	default:
		return "unknown"
	}
}

// Delta returns the (dx, dy) offset for moving one step in this direction.
// North decreases Y, South increases Y (screen coordinates).
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case DirNorth:
		return 0, -1
	case DirEast:
		return 1, 0
	case DirSouth:
		return 0, 1
	case DirWest:
		return -1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the opposite direction.
// Applied to a travel direction it yields the side the beam enters from.
func (d Dir) Opposite() Dir {
	switch d {
	case DirNorth:
		return DirSouth
	case DirEast:
		return DirWest
	case DirSouth:
		return DirNorth
	case DirWest:
		return DirEast
	default:
		return d
	}
}

// Valid reports whether d is one of the four compass directions.
func (d Dir) Valid() bool {
	return d <= DirWest
}

// ParseDir converts a string to a Dir.
// Accepts full names and single letters, case-insensitive.
func ParseDir(s string) (Dir, bool) {
	switch strings.ToLower(s) {
	case "north", "n", "up":
		return DirNorth, true
	case "east", "e", "right":
		return DirEast, true
	case "south", "s", "down":
		return DirSouth, true
	case "west", "w", "left":
		return DirWest, true
	default:
		return DirNorth, false
	}
}

// AllDirs returns the four directions in clockwise order starting at North.
func AllDirs() []Dir {
	return []Dir{DirNorth, DirEast, DirSouth, DirWest}
}

// Orientation is the diagonal a directional piece faces.
type Orientation uint8

const (
	OrientNone Orientation = iota
	OrientNE
	OrientSE
	OrientSW
	OrientNW
)

// String returns the string representation of an orientation.
func (o Orientation) String() string {
	switch o {
	case OrientNone:
		return "none"
	case OrientNE:
		return "ne"
	case OrientSE:
		return "se"
	case OrientSW:
		return "sw"
	case OrientNW:
		return "nw"
	default:
		return "unknown"
	}
}

// RotateCW returns the orientation after a quarter turn clockwise.
// OrientNone is unchanged.
func (o Orientation) RotateCW() Orientation {
	switch o {
	case OrientNE:
		return OrientSE
	case OrientSE:
		return OrientSW
	case OrientSW:
		return OrientNW
	case OrientNW:
		return OrientNE
	default:
		return o
	}
}

// RotateCCW returns the orientation after a quarter turn counter-clockwise.
// OrientNone is unchanged.
func (o Orientation) RotateCCW() Orientation {
	switch o {
	case OrientNE:
		return OrientNW
	case OrientNW:
		return OrientSW
	case OrientSW:
		return OrientSE
	case OrientSE:
		return OrientNE
	default:
		return o
	}
}

// Diagonal reports whether o is one of the four diagonal orientations.
func (o Orientation) Diagonal() bool {
	return o >= OrientNE && o <= OrientNW
}

// ParseOrientation converts a string to an Orientation.
// Returns OrientNone and false if the string is not recognized.
func ParseOrientation(s string) (Orientation, bool) {
	switch strings.ToLower(s) {
	case "", "none", "-":
		return OrientNone, true
	case "ne":
		return OrientNE, true
	case "se":
		return OrientSE, true
	case "sw":
		return OrientSW, true
	case "nw":
		return OrientNW, true
	default:
		return OrientNone, false
	}
}

// AllOrientations returns the four diagonal orientations, clockwise from NE.
func AllOrientations() []Orientation {
	return []Orientation{OrientNE, OrientSE, OrientSW, OrientNW}
}
