package khet

import (
	"fmt"

	platformcore "github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/games/khet/core"
)

// stepDuel handles one tick of a duel. A turn is a rotation of one of the
// mover's own pieces, or a pass, followed by the mover's laser.
func (g *Game) stepDuel(in platformcore.InputFrame) *platformcore.Shot {
	moved := false
	switch {
	case in.Has(platformcore.ActionRotateCW):
		moved = g.rotateOwn(true)
	case in.Has(platformcore.ActionRotateCCW):
		moved = g.rotateOwn(false)
	case in.Has(platformcore.ActionFire):
		moved = true
	}
	if !moved {
		return nil
	}

	path := g.fire(g.gun)
	g.resolveHit(path)
	shot := g.shotFor(path)

	if !g.gameOver {
		g.turn = g.turn.Opponent()
		g.gun = g.gunFor(g.turn)
	}
	return shot
}

func (g *Game) rotateOwn(clockwise bool) bool {
	p := g.board.PieceAt(g.cursor)
	if !p.IsEmpty() && p.Color != g.turn {
		g.message = fmt.Sprintf("%s belongs to %s", p, p.Color)
		return false
	}
	return g.rotate(clockwise)
}

// resolveHit applies the duel capture rules to an absorbed beam: a stacked
// obelisk loses its top, any other piece is removed, and a struck pharaoh
// hands the game to the other side.
func (g *Game) resolveHit(path core.BeamPath) {
	if !path.Hit() {
		return
	}

	p := path.HitPiece
	switch p.Kind {
	case core.KindPharaoh:
		g.board.Clear(path.HitAt)
		g.endRound(p.Color.Opponent())
	case core.KindObeliskStacked:
		g.board.Set(path.HitAt, core.NewPiece(core.KindObelisk, p.Color, core.OrientNone))
		g.message = fmt.Sprintf("%s lost its top stone at %s", p, path.HitAt)
	default:
		g.board.Clear(path.HitAt)
		g.message = fmt.Sprintf("%s removed from %s", p, path.HitAt)
	}
}

// gunFor returns the index of the laser owned by color. Boards without
// owned lasers fall back to alternating by turn order.
func (g *Game) gunFor(color core.Color) int {
	for i, gun := range g.board.Guns() {
		if gun.Color == color {
			return i
		}
	}
	if color == core.ColorRed {
		return platformcore.Wrap(1, g.board.GunCount())
	}
	return 0
}
