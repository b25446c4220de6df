package core

import (
	"fmt"
	"strings"
)

// RenderTokens returns the board as rows of piece tokens, the format the
// browser view consumes: " " empty, "h" pharaoh, "d" djed, "p" pyramid,
// "o" obelisk and "oo" stacked obelisk.
func RenderTokens(b *Board) [][]string {
	rows := make([][]string, b.H)
	for y := 0; y < b.H; y++ {
		row := make([]string, b.W)
		for x := 0; x < b.W; x++ {
			row[x] = b.cells[b.index(C(x, y))].Kind.Token()
		}
		rows[y] = row
	}
	return rows
}

// PieceGlyph returns a two-character glyph for a piece: color letter plus
// kind token, or orientation arrow for mirrors. Empty cells render as "..".
func PieceGlyph(p Piece) string {
	switch p.Kind {
	case KindEmpty:
		return ".."
	case KindObeliskStacked:
		return string(p.Color.Char()) + "O"
	case KindPyramid, KindDjed:
		return string(p.Color.Char()) + orientationGlyph(p.Kind, p.Orientation)
	default:
		return string(p.Color.Char()) + p.Kind.Token()
	}
}

// orientationGlyph draws the mirror face: pyramids show the corner they
// point at, djeds show the slash of their mirror.
func orientationGlyph(k Kind, o Orientation) string {
	if k == KindDjed {
		switch o {
		case OrientNE, OrientSW:
			return "/"
		case OrientSE, OrientNW:
			return "\\"
		}
		return "?"
	}
	switch o {
	case OrientNE:
		return "L"
	case OrientSE:
		return "F"
	case OrientSW:
		return "7"
	case OrientNW:
		return "J"
	default:
		return "?"
	}
}

// RenderASCII renders the board with coordinates. When path is not nil,
// empty tiles crossed by the beam are drawn as "**" and a status line is
// appended. Used for debugging, the CLI and golden tests.
func RenderASCII(b *Board, path *BeamPath) string {
	var sb strings.Builder

	beam := make(map[Coord]bool)
	if path != nil {
		for _, c := range path.Tiles {
			beam[c] = true
		}
	}

	sb.WriteString("  ")
	for x := 0; x < b.W; x++ {
		sb.WriteString(fmt.Sprintf(" %d ", x%10))
	}
	sb.WriteString("\n")

	for y := 0; y < b.H; y++ {
		sb.WriteString(fmt.Sprintf("%d ", y%10))
		for x := 0; x < b.W; x++ {
			c := C(x, y)
			p := b.cells[b.index(c)]
			glyph := PieceGlyph(p)
			if p.IsEmpty() && beam[c] {
				glyph = "**"
			}
			sb.WriteString(glyph)
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}

	for i, g := range b.guns {
		sb.WriteString(fmt.Sprintf("gun %d: %s at %s heading %s\n", i, g.Color, g.Pos, g.Dir))
	}
	if path != nil {
		sb.WriteString(fmt.Sprintf("shot %d: %s\n", path.Gun, path))
	}

	return sb.String()
}

// RenderTokensCompact renders the token grid as one line per row, with
// empty cells as '.'. Handy for comparing boards in tests.
func RenderTokensCompact(b *Board) string {
	var sb strings.Builder
	for _, row := range RenderTokens(b) {
		for _, tok := range row {
			if tok == " " {
				tok = "."
			}
			sb.WriteString(tok)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
