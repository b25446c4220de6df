package core

import "fmt"

// LaserGun is a fixed emitter: the tile the beam starts on and the
// direction it initially travels.
type LaserGun struct {
	Pos   Coord
	Dir   Dir
	Color Color // Owner of the laser; informational
}

// Gun is a convenience constructor for LaserGun.
func Gun(x, y int, d Dir, color Color) LaserGun {
	return LaserGun{Pos: C(x, y), Dir: d, Color: color}
}

// Cell is a read-only view of one board coordinate and its piece.
type Cell struct {
	Coord Coord
	Piece Piece
}

// Board is a fixed-size grid of pieces plus its laser guns.
// Cells are stored in row-major order: index = y*W + x.
//
// A Board is not safe for concurrent mutation. Any number of goroutines may
// fire lasers at a board that is not being modified.
type Board struct {
	W       int
	H       int
	Surface *Surface // Optional; nil means every tile is open

	cells []Piece
	guns  []LaserGun
}

// NewBoard creates an empty board with the given dimensions and guns.
// Panics if the dimensions are not positive or a gun lies outside the board.
func NewBoard(w, h int, guns ...LaserGun) *Board {
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("core: invalid board size %dx%d", w, h))
	}
	b := &Board{
		W:     w,
		H:     h,
		cells: make([]Piece, w*h),
		guns:  make([]LaserGun, len(guns)),
	}
	copy(b.guns, guns)
	for i, g := range b.guns {
		if !b.InBounds(g.Pos) || !g.Dir.Valid() {
			panic(fmt.Sprintf("core: gun %d at %s heading %s is not on the %dx%d board", i, g.Pos, g.Dir, w, h))
		}
	}
	return b
}

// index converts a coordinate to a flat array index.
func (b *Board) index(c Coord) int {
	return c.Y*b.W + c.X
}

// InBounds returns true if the coordinate is within the board boundaries.
func (b *Board) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < b.W && c.Y >= 0 && c.Y < b.H
}

func (b *Board) mustInBounds(c Coord) {
	if !b.InBounds(c) {
		panic(fmt.Sprintf("core: coordinate %s outside %dx%d board", c, b.W, b.H))
	}
}

// PieceAt returns the piece at the given coordinate.
// Panics if the coordinate is out of range.
func (b *Board) PieceAt(c Coord) Piece {
	b.mustInBounds(c)
	return b.cells[b.index(c)]
}

// Cell returns the cell view at the given coordinate.
func (b *Board) Cell(c Coord) Cell {
	return Cell{Coord: c, Piece: b.PieceAt(c)}
}

// Cells returns every cell, ordered by row then column.
func (b *Board) Cells() []Cell {
	cells := make([]Cell, 0, len(b.cells))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			c := C(x, y)
			cells = append(cells, Cell{Coord: c, Piece: b.cells[b.index(c)]})
		}
	}
	return cells
}

// Set places a piece at the given coordinate, replacing what was there.
// Panics if the coordinate is out of range.
func (b *Board) Set(c Coord, p Piece) {
	b.mustInBounds(c)
	b.cells[b.index(c)] = p
}

// Clear empties the cell at the given coordinate.
func (b *Board) Clear(c Coord) {
	b.Set(c, Empty())
}

// Rotate turns the piece at c a quarter turn. Returns false if the cell
// holds nothing that can be rotated.
func (b *Board) Rotate(c Coord, clockwise bool) bool {
	p := b.PieceAt(c)
	if !p.Kind.Oriented() {
		return false
	}
	if clockwise {
		p.Orientation = p.Orientation.RotateCW()
	} else {
		p.Orientation = p.Orientation.RotateCCW()
	}
	b.Set(c, p)
	return true
}

// Guns returns a copy of the board's laser guns.
func (b *Board) Guns() []LaserGun {
	guns := make([]LaserGun, len(b.guns))
	copy(guns, b.guns)
	return guns
}

// GunCount returns the number of laser guns.
func (b *Board) GunCount() int {
	return len(b.guns)
}

// Gun returns the gun at index i.
// Panics if i is out of range.
func (b *Board) Gun(i int) LaserGun {
	if i < 0 || i >= len(b.guns) {
		panic(fmt.Sprintf("core: gun index %d out of range [0,%d)", i, len(b.guns)))
	}
	return b.guns[i]
}

// PlacePieces replaces the board contents with the given placements.
//
// Two obelisks of the same color on one coordinate become a stacked obelisk.
// Any other shared coordinate is rejected with a CONFLICT error. On error
// the board is left unchanged.
func (b *Board) PlacePieces(placements []Placement) error {
	cells := make([]Piece, len(b.cells))

	for _, p := range placements {
		if err := validatePlacement(b, p); err != nil {
			return err
		}

		c := C(p.X, p.Y)
		idx := b.index(c)
		incoming := p.Piece()
		existing := cells[idx]

		if existing.IsEmpty() {
			cells[idx] = incoming
			continue
		}

		if existing.Kind == KindObelisk && incoming.Kind == KindObelisk && existing.Color == incoming.Color {
			cells[idx] = NewPiece(KindObeliskStacked, existing.Color, OrientNone)
			continue
		}

		return ValidationError{
			Code:    CodeConflict,
			Message: fmt.Sprintf("%s and %s both claim %s", existing, incoming, c),
		}
	}

	b.cells = cells
	return nil
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	cells := make([]Piece, len(b.cells))
	copy(cells, b.cells)
	return &Board{
		W:       b.W,
		H:       b.H,
		Surface: b.Surface,
		cells:   cells,
		guns:    b.Guns(),
	}
}

// Equal returns true if two boards have the same dimensions, guns and pieces.
func (b *Board) Equal(other *Board) bool {
	if b.W != other.W || b.H != other.H || len(b.guns) != len(other.guns) {
		return false
	}
	for i, g := range b.guns {
		if g != other.guns[i] {
			return false
		}
	}
	for i, p := range b.cells {
		if p != other.cells[i] {
			return false
		}
	}
	return true
}

// Placements returns the records that rebuild the current contents.
// A stacked obelisk is emitted as two obelisk records.
func (b *Board) Placements() []Placement {
	var out []Placement
	for _, cell := range b.Cells() {
		p := cell.Piece
		if p.IsEmpty() {
			continue
		}
		rec := Placement{X: cell.Coord.X, Y: cell.Coord.Y, Kind: p.Kind, Color: p.Color, Orientation: p.Orientation}
		if p.Kind == KindObeliskStacked {
			rec.Kind = KindObelisk
			out = append(out, rec)
		}
		out = append(out, rec)
	}
	return out
}
