package khet

import (
	"fmt"

	platformcore "github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/games/khet/core"
)

// Each tile is drawn 4 characters wide: a margin, the 2-char glyph and
// another margin that turns into brackets under the cursor.
const (
	tileW     = 4
	hudHeight = 2
	footerH   = 4
)

// Render draws the board, the last beam and the status lines.
func (g *Game) Render(dst *platformcore.Screen) {
	boardW := g.board.W*tileW + 2
	boardH := g.board.H + 2

	if dst.Width() < boardW || dst.Height() < boardH+hudHeight+footerH {
		dst.DrawTextCentered(dst.Height()/2, "Terminal too small", platformcore.ColorWarn)
		dst.DrawTextCentered(dst.Height()/2+1, fmt.Sprintf("need %dx%d", boardW, boardH+hudHeight+footerH), platformcore.ColorDim)
		return
	}

	g.renderHUD(dst)

	area := platformcore.NewRect(0, hudHeight, dst.Width(), dst.Height()-hudHeight-footerH)
	frame := area.Centered(boardW, boardH)
	dst.DrawBox(frame, platformcore.ColorDim)

	g.renderGuns(dst, frame)
	g.renderTiles(dst, frame)
	g.renderFooter(dst, frame.Bottom())
}

func (g *Game) renderHUD(dst *platformcore.Screen) {
	name := g.level.Name
	if name == "" {
		name = g.level.ID
	}
	dst.DrawTextCentered(0, fmt.Sprintf("%s - %s", g.Title(), name), platformcore.ColorTitle)

	hud := fmt.Sprintf("Shots: %d  Hits: %d", g.shots, g.hits)
	if g.mode == ModeDuel {
		hud += fmt.Sprintf("  Turn: %s", g.turn)
	}
	if g.paused {
		hud += "  [PAUSED]"
	}
	dst.DrawTextCentered(1, hud, platformcore.ColorDim)
}

// renderGuns marks each laser on the frame edge behind it.
func (g *Game) renderGuns(dst *platformcore.Screen, frame platformcore.Rect) {
	for i, gun := range g.board.Guns() {
		x, y := tileScreenPos(frame, gun.Pos)
		x++ // first glyph column

		var arrow rune
		switch gun.Dir {
		case core.DirSouth:
			arrow, y = '▼', frame.Y
		case core.DirNorth:
			arrow, y = '▲', frame.Bottom()-1
		case core.DirEast:
			arrow, x = '►', frame.X
		case core.DirWest:
			arrow, x = '◄', frame.Right()-1
		}

		color := platformcore.ColorGun
		if i == g.gun {
			color = platformcore.ColorCursor
		}
		dst.SetWithColor(x, y, arrow, color)
	}
}

func (g *Game) renderTiles(dst *platformcore.Screen, frame platformcore.Rect) {
	headings := make(map[core.Coord]core.Dir)
	if g.beam != nil {
		for i, c := range g.beam.Tiles {
			headings[c] = g.beam.Headings[i]
		}
	}

	for _, cell := range g.board.Cells() {
		x, y := tileScreenPos(frame, cell.Coord)
		glyph := []rune(core.PieceGlyph(cell.Piece))
		color := pieceColor(cell.Piece)

		if heading, onBeam := headings[cell.Coord]; onBeam {
			if cell.Piece.IsEmpty() {
				glyph = beamGlyph(heading)
			}
			color = platformcore.ColorBeam
			if g.beam.Hit() && g.beam.HitAt == cell.Coord {
				color = platformcore.ColorHit
			}
		} else if cell.Piece.IsEmpty() {
			glyph = []rune(" ·")
		}

		dst.SetWithColor(x+1, y, glyph[0], color)
		dst.SetWithColor(x+2, y, glyph[1], color)

		if cell.Coord == g.cursor {
			dst.SetWithColor(x, y, '[', platformcore.ColorCursor)
			dst.SetWithColor(x+3, y, ']', platformcore.ColorCursor)
		}
	}
}

func (g *Game) renderFooter(dst *platformcore.Screen, y int) {
	p := g.board.PieceAt(g.cursor)
	gun := g.board.Gun(g.gun)
	info := fmt.Sprintf("%s %s   laser %d: %s %s %s", g.cursor, p, g.gun, gun.Color, gun.Pos, gun.Dir)
	dst.DrawTextCentered(y, info, platformcore.ColorDefault)

	if g.message != "" {
		color := platformcore.ColorDefault
		if g.gameOver {
			color = platformcore.ColorHit
		}
		dst.DrawTextCentered(y+1, g.message, color)
	}

	help := "arrows move  e/z rotate  space fire  tab laser  p pause  q quit"
	switch {
	case g.gameOver:
		help = "r restart  q quit"
	case g.mode == ModeDuel:
		help = "arrows move  e/z rotate + fire  space pass + fire  p pause  q quit"
	}
	dst.DrawTextCentered(y+2, help, platformcore.ColorDim)
}

// tileScreenPos returns the left margin column and row of a board tile.
func tileScreenPos(frame platformcore.Rect, c core.Coord) (int, int) {
	return frame.X + 1 + c.X*tileW, frame.Y + 1 + c.Y
}

func pieceColor(p core.Piece) platformcore.Color {
	switch p.Color {
	case core.ColorSilver:
		return platformcore.ColorSilver
	case core.ColorRed:
		return platformcore.ColorRed
	default:
		return platformcore.ColorDim
	}
}

func beamGlyph(heading core.Dir) []rune {
	if heading == core.DirNorth || heading == core.DirSouth {
		return []rune(" │")
	}
	return []rune("──")
}
