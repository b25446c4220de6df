package core

import (
	"errors"
	"fmt"
)

// ValidationError contains details about a rejected board setup.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validation error codes.
const (
	CodeOutOfBounds    = "OUT_OF_BOUNDS"
	CodeConflict       = "CONFLICT"
	CodeBadOrientation = "BAD_ORIENTATION"
	CodeBadKind        = "BAD_KIND"
	CodeWrongSurface   = "WRONG_SURFACE"
	CodeBadGun         = "BAD_GUN"
	CodeBadSurface     = "BAD_SURFACE"
	CodeBadColor       = "BAD_COLOR"
)

// IsValidationCode reports whether err is a ValidationError with the given code.
func IsValidationCode(err error, code string) bool {
	var ve ValidationError
	return errors.As(err, &ve) && ve.Code == code
}

// validatePlacement checks a single record against the board it targets.
func validatePlacement(b *Board, p Placement) error {
	c := C(p.X, p.Y)
	if !b.InBounds(c) {
		return ValidationError{
			Code:    CodeOutOfBounds,
			Message: fmt.Sprintf("%s at %s is outside the %dx%d board", p.Kind, c, b.W, b.H),
		}
	}

	switch p.Kind {
	case KindPharaoh, KindObelisk, KindObeliskStacked:
		if p.Orientation != OrientNone {
			return ValidationError{
				Code:    CodeBadOrientation,
				Message: fmt.Sprintf("%s at %s cannot face %s", p.Kind, c, p.Orientation),
			}
		}
	case KindDjed, KindPyramid:
		if !p.Orientation.Diagonal() {
			return ValidationError{
				Code:    CodeBadOrientation,
				Message: fmt.Sprintf("%s at %s needs a diagonal orientation, got %s", p.Kind, c, p.Orientation),
			}
		}
	default:
		return ValidationError{
			Code:    CodeBadKind,
			Message: fmt.Sprintf("cannot place %s at %s", p.Kind, c),
		}
	}

	if p.Color != ColorSilver && p.Color != ColorRed {
		return ValidationError{
			Code:    CodeBadColor,
			Message: fmt.Sprintf("%s at %s has no owner", p.Kind, c),
		}
	}

	if reserved := b.Surface.TileColor(p.X, p.Y); reserved != ColorNone && p.Color != reserved {
		return ValidationError{
			Code:    CodeWrongSurface,
			Message: fmt.Sprintf("%s %s at %s sits on a %s tile", p.Color, p.Kind, c, reserved),
		}
	}

	return nil
}

// BoardStats summarizes the pieces on a board.
type BoardStats struct {
	Width      int
	Height     int
	Guns       int
	Pieces     int
	ByKind     map[Kind]int
	ByColor    map[Color]int
	Pharaohs   map[Color]int
	EmptyCells int
}

// ComputeBoardStats analyzes a board and returns statistics.
// A stacked obelisk counts as one piece.
func ComputeBoardStats(b *Board) BoardStats {
	stats := BoardStats{
		Width:    b.W,
		Height:   b.H,
		Guns:     len(b.guns),
		ByKind:   make(map[Kind]int),
		ByColor:  make(map[Color]int),
		Pharaohs: make(map[Color]int),
	}

	for _, p := range b.cells {
		if p.IsEmpty() {
			stats.EmptyCells++
			continue
		}
		stats.Pieces++
		stats.ByKind[p.Kind]++
		stats.ByColor[p.Color]++
		if p.Kind == KindPharaoh {
			stats.Pharaohs[p.Color]++
		}
	}

	return stats
}
