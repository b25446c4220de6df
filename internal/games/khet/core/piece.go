package core

import (
	"fmt"
	"strings"
)

// Kind is the type of piece occupying a cell.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindPharaoh
	KindDjed
	KindPyramid
	KindObelisk
	KindObeliskStacked
)

// String returns the string representation of a kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindPharaoh:
		return "pharaoh"
	case KindDjed:
		return "djed"
	case KindPyramid:
		return "pyramid"
	case KindObelisk:
		return "obelisk"
	case KindObeliskStacked:
		return "obelisk_stacked"
	default:
		return "unknown"
	}
}

// Token returns the board token for the kind: one character per piece,
// two for a stacked obelisk, a single space for an empty cell.
func (k Kind) Token() string {
	switch k {
	case KindPharaoh:
		return "h"
	case KindDjed:
		return "d"
	case KindPyramid:
		return "p"
	case KindObelisk:
		return "o"
	case KindObeliskStacked:
		return "oo"
	default:
		return " "
	}
}

// Oriented reports whether pieces of this kind carry a meaningful orientation.
func (k Kind) Oriented() bool {
	return k == KindDjed || k == KindPyramid
}

// ParseKind converts a name or token to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "empty", "":
		return KindEmpty, true
	case "pharaoh", "h":
		return KindPharaoh, true
	case "djed", "d":
		return KindDjed, true
	case "pyramid", "piramid", "p":
		return KindPyramid, true
	case "obelisk", "o":
		return KindObelisk, true
	case "obelisk_stacked", "oo":
		return KindObeliskStacked, true
	default:
		return KindEmpty, false
	}
}

// Piece is a closed tagged value: kind, owner and orientation.
// The zero value is an empty cell.
type Piece struct {
	Kind        Kind        `json:"kind"`
	Color       Color       `json:"color"`
	Orientation Orientation `json:"orientation"`
}

// Empty returns the empty piece.
func Empty() Piece {
	return Piece{}
}

// NewPiece returns a piece of the given kind.
// Orientation is dropped for kinds that do not use it.
func NewPiece(kind Kind, color Color, o Orientation) Piece {
	if !kind.Oriented() {
		o = OrientNone
	}
	if kind == KindEmpty {
		color = ColorNone
	}
	return Piece{Kind: kind, Color: color, Orientation: o}
}

// IsEmpty reports whether the piece is the empty sentinel.
func (p Piece) IsEmpty() bool {
	return p.Kind == KindEmpty
}

// String returns a compact description such as "silver pyramid ne".
func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	if p.Kind.Oriented() {
		return fmt.Sprintf("%s %s %s", p.Color, p.Kind, p.Orientation)
	}
	return fmt.Sprintf("%s %s", p.Color, p.Kind)
}

// Outcome is the result of a beam entering a piece.
type Outcome struct {
	Hit bool // The beam is absorbed at this tile
	Dir Dir  // New travel direction; valid only when Hit is false
}

// Continue returns an outcome that sends the beam on in direction d.
func Continue(d Dir) Outcome {
	return Outcome{Dir: d}
}

// Absorbed returns the hit outcome.
func Absorbed() Outcome {
	return Outcome{Hit: true}
}

// Reflect returns what happens to a beam entering this piece from the given side.
// It is a pure function of kind, orientation and entry side.
//
// entry names the side of the tile the beam comes in through, which is the
// opposite of its travel direction: a beam travelling South enters from the
// North side. The returned Dir is a travel direction. So a beam travelling
// South into an NE pyramid is Reflect(DirNorth) and leaves travelling East.
// Panics on an entry that is not a compass direction, or on a Djed or
// Pyramid without a diagonal orientation.
func (p Piece) Reflect(entry Dir) Outcome {
	if !entry.Valid() {
		panic(fmt.Sprintf("core: invalid entry side %d", entry))
	}

	switch p.Kind {
	case KindEmpty:
		return Continue(entry.Opposite())
	case KindPharaoh, KindObelisk, KindObeliskStacked:
		return Absorbed()
	case KindPyramid:
		return pyramidTable[p.mustOrientation()][entry]
	case KindDjed:
		return djedTable[p.mustOrientation()][entry]
	default:
		panic(fmt.Sprintf("core: unknown piece kind %d", p.Kind))
	}
}

func (p Piece) mustOrientation() Orientation {
	if !p.Orientation.Diagonal() {
		panic(fmt.Sprintf("core: %s needs a diagonal orientation, got %s", p.Kind, p.Orientation))
	}
	return p.Orientation
}

// pyramidTable is indexed by orientation then entry side.
// The two sides named by the orientation carry the mirror face and reflect
// into each other; the remaining two sides are the solid back.
var pyramidTable = [...][4]Outcome{
	OrientNE: {
		DirNorth: Continue(DirEast),
		DirEast:  Continue(DirNorth),
		DirSouth: Absorbed(),
		DirWest:  Absorbed(),
	},
	OrientSE: {
		DirNorth: Absorbed(),
		DirEast:  Continue(DirSouth),
		DirSouth: Continue(DirEast),
		DirWest:  Absorbed(),
	},
	OrientSW: {
		DirNorth: Absorbed(),
		DirEast:  Absorbed(),
		DirSouth: Continue(DirWest),
		DirWest:  Continue(DirSouth),
	},
	OrientNW: {
		DirNorth: Continue(DirWest),
		DirEast:  Absorbed(),
		DirSouth: Absorbed(),
		DirWest:  Continue(DirNorth),
	},
}

// djedTable is indexed by orientation then entry side.
// A Djed is mirrored on both faces, so NE/SW and SE/NW share a row.
var djedTable = [...][4]Outcome{
	OrientNE: neswDjed,
	OrientSE: senwDjed,
	OrientSW: neswDjed,
	OrientNW: senwDjed,
}

var neswDjed = [4]Outcome{
	DirNorth: Continue(DirEast),
	DirEast:  Continue(DirNorth),
	DirSouth: Continue(DirWest),
	DirWest:  Continue(DirSouth),
}

var senwDjed = [4]Outcome{
	DirNorth: Continue(DirWest),
	DirEast:  Continue(DirSouth),
	DirSouth: Continue(DirEast),
	DirWest:  Continue(DirNorth),
}
