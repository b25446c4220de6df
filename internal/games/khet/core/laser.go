package core

import (
	"fmt"
	"strings"
)

// Status is the terminal outcome of a fired beam.
type Status uint8

const (
	StatusExitedBoard Status = iota
	StatusAbsorbed
	StatusCycleDetected
)

// String returns the snake_case name of the status.
func (s Status) String() string {
	switch s {
	case StatusExitedBoard:
		return "exited_board"
	case StatusAbsorbed:
		return "absorbed"
	case StatusCycleDetected:
		return "cycle_detected"
	default:
		return "unknown"
	}
}

// ParseStatus converts a snake_case name to a Status.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(s) {
	case "exited_board":
		return StatusExitedBoard, true
	case "absorbed":
		return StatusAbsorbed, true
	case "cycle_detected":
		return StatusCycleDetected, true
	default:
		return StatusExitedBoard, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, ok := ParseStatus(string(text))
	if !ok {
		return fmt.Errorf("core: unknown beam status %q", text)
	}
	*s = v
	return nil
}

// BeamPath is the full trace of one shot.
type BeamPath struct {
	Gun      int     `json:"gun"`
	Tiles    []Coord `json:"tiles"`    // Every tile the beam occupied, in order
	Headings []Dir   `json:"headings"` // Travel direction on entering Tiles[i]
	Status   Status  `json:"status"`

	HitAt    Coord `json:"hit_at"`    // Valid when Status is StatusAbsorbed
	HitPiece Piece `json:"hit_piece"` // Valid when Status is StatusAbsorbed
	Exit     Dir   `json:"exit"`      // Valid when Status is StatusExitedBoard
}

// Len returns the number of tiles on the path.
func (p BeamPath) Len() int {
	return len(p.Tiles)
}

// Last returns the final recorded tile.
func (p BeamPath) Last() Coord {
	return p.Tiles[len(p.Tiles)-1]
}

// Contains reports whether the beam crossed c.
func (p BeamPath) Contains(c Coord) bool {
	for _, t := range p.Tiles {
		if t == c {
			return true
		}
	}
	return false
}

// Hit reports whether the beam was absorbed by a piece.
func (p BeamPath) Hit() bool {
	return p.Status == StatusAbsorbed
}

// String returns a one-line summary such as "absorbed at (4,7) by red pharaoh".
func (p BeamPath) String() string {
	switch p.Status {
	case StatusAbsorbed:
		return fmt.Sprintf("absorbed at %s by %s after %d tiles", p.HitAt, p.HitPiece, len(p.Tiles))
	case StatusExitedBoard:
		return fmt.Sprintf("exited %s from %s after %d tiles", p.Exit, p.Last(), len(p.Tiles))
	default:
		return fmt.Sprintf("%s after %d tiles", p.Status, len(p.Tiles))
	}
}

// FireLaser fires gun i and traces the beam until it leaves the board,
// is absorbed, or repeats a state. The board is not modified.
// Panics if i is not a valid gun index.
func FireLaser(b *Board, i int) BeamPath {
	g := b.Gun(i)

	pos, dir := g.Pos, g.Dir
	path := BeamPath{
		Gun:      i,
		Tiles:    []Coord{pos},
		Headings: []Dir{dir},
	}

	// A (tile, heading) pair fully determines the rest of the beam, so a
	// repeated pair is a loop. There are W*H*4 such pairs, which bounds the run.
	seen := make([]bool, b.W*b.H*4)
	seen[b.index(pos)*4+int(dir)] = true

	for {
		piece := b.cells[b.index(pos)]
		out := piece.Reflect(dir.Opposite())
		if out.Hit {
			path.Status = StatusAbsorbed
			path.HitAt = pos
			path.HitPiece = piece
			return path
		}

		dir = out.Dir
		next := pos.Step(dir)
		if !b.InBounds(next) {
			path.Status = StatusExitedBoard
			path.Exit = dir
			return path
		}

		key := b.index(next)*4 + int(dir)
		if seen[key] {
			path.Status = StatusCycleDetected
			return path
		}
		seen[key] = true

		pos = next
		path.Tiles = append(path.Tiles, pos)
		path.Headings = append(path.Headings, dir)
	}
}

// FireLaser fires gun i on this board. See FireLaser.
func (b *Board) FireLaser(i int) BeamPath {
	return FireLaser(b, i)
}

// FireAll fires every gun in order.
func FireAll(b *Board) []BeamPath {
	paths := make([]BeamPath, b.GunCount())
	for i := range paths {
		paths[i] = FireLaser(b, i)
	}
	return paths
}
