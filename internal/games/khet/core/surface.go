package core

import "fmt"

// Surface describes the printed board: which tiles are reserved for one player.
// Rows use 'S' (silver only), 'R' (red only) and '.' or 'B' (open to both).
type Surface struct {
	W    int
	H    int
	rows []string
}

// NewSurface builds a surface from its rows. All rows must share one width
// and use only the recognized characters.
func NewSurface(rows []string) (*Surface, error) {
	if len(rows) == 0 {
		return nil, ValidationError{Code: CodeBadSurface, Message: "surface has no rows"}
	}
	w := len(rows[0])
	for y, row := range rows {
		if len(row) != w {
			return nil, ValidationError{
				Code:    CodeBadSurface,
				Message: fmt.Sprintf("row %d has width %d, expected %d", y, len(row), w),
			}
		}
		for x, ch := range row {
			if _, ok := surfaceColor(ch); !ok {
				return nil, ValidationError{
					Code:    CodeBadSurface,
					Message: fmt.Sprintf("unknown tile %q at (%d,%d)", ch, x, y),
				}
			}
		}
	}
	cp := make([]string, len(rows))
	copy(cp, rows)
	return &Surface{W: w, H: len(rows), rows: cp}, nil
}

// TileColor returns the color a tile is reserved for, or ColorNone.
// Out-of-range tiles are open.
func (s *Surface) TileColor(x, y int) Color {
	if s == nil || x < 0 || y < 0 || y >= s.H || x >= s.W {
		return ColorNone
	}
	c, _ := surfaceColor(rune(s.rows[y][x]))
	return c
}

// Rows returns a copy of the surface rows.
func (s *Surface) Rows() []string {
	if s == nil {
		return nil
	}
	cp := make([]string, len(s.rows))
	copy(cp, s.rows)
	return cp
}

func surfaceColor(ch rune) (Color, bool) {
	switch ch {
	case 'S':
		return ColorSilver, true
	case 'R':
		return ColorRed, true
	case '.', 'B':
		return ColorNone, true
	default:
		return ColorNone, false
	}
}
