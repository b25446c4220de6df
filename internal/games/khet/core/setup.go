package core

import "fmt"

// Classic board dimensions.
const (
	ClassicW = 10
	ClassicH = 8
)

// Placement is one setup record: a piece and where it goes.
type Placement struct {
	X           int
	Y           int
	Kind        Kind
	Color       Color
	Orientation Orientation
}

// Piece returns the piece described by the record.
func (p Placement) Piece() Piece {
	return NewPiece(p.Kind, p.Color, p.Orientation)
}

// NewBoardFromSetup creates a board and places the given pieces on it.
// A surface must cover the board exactly.
func NewBoardFromSetup(w, h int, surface *Surface, guns []LaserGun, setup []Placement) (*Board, error) {
	if surface != nil && (surface.W != w || surface.H != h) {
		return nil, ValidationError{
			Code:    CodeBadSurface,
			Message: fmt.Sprintf("surface is %dx%d, board is %dx%d", surface.W, surface.H, w, h),
		}
	}
	b := NewBoard(w, h, guns...)
	b.Surface = surface
	if err := b.PlacePieces(setup); err != nil {
		return nil, err
	}
	return b, nil
}

// ClassicSurface returns the rows of the classic 10x8 board.
func ClassicSurface() []string {
	return []string{
		"SRBBBBBBSR",
		"SBBBBBBBBR",
		"SBBBBBBBBR",
		"SBBBBBBBBR",
		"SBBBBBBBBR",
		"SBBBBBBBBR",
		"SBBBBBBBBR",
		"SRBBBBBBSR",
	}
}

// ClassicGuns returns the two lasers of the classic board: silver in the
// top-right corner firing south, red in the bottom-left corner firing north.
func ClassicGuns() []LaserGun {
	return []LaserGun{
		Gun(9, 0, DirSouth, ColorSilver),
		Gun(0, 7, DirNorth, ColorRed),
	}
}

// ClassicSetup returns the classic opening. Each stacked obelisk is listed
// as two obelisk records on the same tile.
func ClassicSetup() []Placement {
	return []Placement{
		{X: 4, Y: 0, Kind: KindObelisk, Color: ColorSilver},
		{X: 4, Y: 0, Kind: KindObelisk, Color: ColorSilver},
		{X: 5, Y: 0, Kind: KindPharaoh, Color: ColorSilver},
		{X: 6, Y: 0, Kind: KindObelisk, Color: ColorSilver},
		{X: 6, Y: 0, Kind: KindObelisk, Color: ColorSilver},
		{X: 7, Y: 0, Kind: KindPyramid, Color: ColorSilver, Orientation: OrientSE},
		{X: 2, Y: 1, Kind: KindPyramid, Color: ColorSilver, Orientation: OrientSW},
		{X: 3, Y: 2, Kind: KindPyramid, Color: ColorRed, Orientation: OrientNW},
		{X: 0, Y: 3, Kind: KindPyramid, Color: ColorSilver, Orientation: OrientNE},
		{X: 2, Y: 3, Kind: KindPyramid, Color: ColorRed, Orientation: OrientSW},
		{X: 4, Y: 3, Kind: KindDjed, Color: ColorSilver, Orientation: OrientNE},
		{X: 5, Y: 3, Kind: KindDjed, Color: ColorSilver, Orientation: OrientSE},
		{X: 7, Y: 3, Kind: KindPyramid, Color: ColorSilver, Orientation: OrientSE},
		{X: 9, Y: 3, Kind: KindPyramid, Color: ColorRed, Orientation: OrientNW},
		{X: 0, Y: 4, Kind: KindPyramid, Color: ColorSilver, Orientation: OrientSE},
		{X: 2, Y: 4, Kind: KindPyramid, Color: ColorRed, Orientation: OrientNW},
		{X: 4, Y: 4, Kind: KindDjed, Color: ColorRed, Orientation: OrientSE},
		{X: 5, Y: 4, Kind: KindDjed, Color: ColorRed, Orientation: OrientNE},
		{X: 7, Y: 4, Kind: KindPyramid, Color: ColorSilver, Orientation: OrientNE},
		{X: 9, Y: 4, Kind: KindPyramid, Color: ColorRed, Orientation: OrientSW},
		{X: 6, Y: 5, Kind: KindPyramid, Color: ColorSilver, Orientation: OrientSE},
		{X: 7, Y: 6, Kind: KindPyramid, Color: ColorRed, Orientation: OrientNE},
		{X: 2, Y: 7, Kind: KindPyramid, Color: ColorRed, Orientation: OrientNW},
		{X: 3, Y: 7, Kind: KindObelisk, Color: ColorRed},
		{X: 3, Y: 7, Kind: KindObelisk, Color: ColorRed},
		{X: 4, Y: 7, Kind: KindPharaoh, Color: ColorRed},
		{X: 5, Y: 7, Kind: KindObelisk, Color: ColorRed},
		{X: 5, Y: 7, Kind: KindObelisk, Color: ColorRed},
	}
}

// NewClassicBoard returns the classic board in its opening position.
func NewClassicBoard() *Board {
	surface, err := NewSurface(ClassicSurface())
	if err != nil {
		panic(err)
	}
	b, err := NewBoardFromSetup(ClassicW, ClassicH, surface, ClassicGuns(), ClassicSetup())
	if err != nil {
		panic(err)
	}
	return b
}
