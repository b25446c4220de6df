// Package khet provides the interactive Khet board for the terminal: a
// free-form sandbox and a two-player duel on top of the laser engine.
package khet

import (
	"fmt"

	platformcore "github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/games/khet/core"
	"github.com/vovakirdan/khet/internal/games/khet/levels"
	"github.com/vovakirdan/khet/internal/registry"
)

// Mode selects the rules layered over the board.
type Mode int

const (
	// ModeSandbox lets the player rotate anything and fire any gun.
	ModeSandbox Mode = iota
	// ModeDuel alternates turns: rotate one of your pieces (or pass), then
	// your laser fires. Struck pieces leave the board; a struck pharaoh
	// ends the game.
	ModeDuel
)

// String returns the registry id of the mode.
func (m Mode) String() string {
	if m == ModeDuel {
		return "duel"
	}
	return "sandbox"
}

func init() {
	registry.Register("sandbox", func() registry.Game {
		return New(ModeSandbox)
	})
	registry.Register("duel", func() registry.Game {
		return New(ModeDuel)
	})
}

// Game is one board being played in a given mode.
type Game struct {
	mode  Mode
	level levels.Level
	board *core.Board

	// Screen dimensions
	screenW int
	screenH int

	// Selection
	cursor core.Coord
	gun    int

	// Last shot, kept on screen for beamTicks
	beam      *core.BeamPath
	beamLeft  int
	beamTicks int

	// Status
	shots    int
	hits     int
	turn     core.Color
	winner   core.Color
	gameOver bool
	paused   bool
	message  string
}

// New creates a game in the given mode. Reset must be called before use.
func New(mode Mode) *Game {
	return &Game{mode: mode}
}

// ID returns the mode identifier.
func (g *Game) ID() string {
	return g.mode.String()
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeDuel {
		return "Khet Duel"
	}
	return "Khet Sandbox"
}

// Reset loads the configured board and clears all round state.
// A board that fails to load falls back to the classic setup and the
// error is shown in the status line.
func (g *Game) Reset(cfg platformcore.RuntimeConfig) {
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.beamTicks = cfg.BeamTicks
	if g.beamTicks <= 0 {
		g.beamTicks = platformcore.DefaultConfig().BeamTicks
	}

	g.shots = 0
	g.hits = 0
	g.turn = core.ColorSilver
	g.winner = core.ColorNone
	g.gameOver = false
	g.paused = false
	g.beam = nil
	g.beamLeft = 0
	g.gun = 0
	g.message = ""

	id := cfg.BoardID
	if id == "" {
		id = "classic"
	}
	level, board, err := loadBoard(levels.NewLoader(cfg.BoardsDir), id)
	if err != nil {
		g.message = err.Error()
		level = levels.Level{ID: "classic", Name: "Classic"}
		board = core.NewClassicBoard()
	}
	g.level = level
	g.board = board
	g.cursor = core.C(board.W/2, board.H/2)

	if g.mode == ModeDuel {
		g.gun = g.gunFor(g.turn)
	}
}

func loadBoard(loader *levels.Loader, id string) (levels.Level, *core.Board, error) {
	level, err := loader.LoadByID(id)
	if err != nil {
		return levels.Level{}, nil, err
	}
	board, err := level.ToBoard()
	if err != nil {
		return levels.Level{}, nil, fmt.Errorf("board %s: %w", id, err)
	}
	if board.GunCount() == 0 {
		return levels.Level{}, nil, fmt.Errorf("board %s has no lasers", id)
	}
	return level, board, nil
}

// Board returns the live board.
func (g *Game) Board() *core.Board {
	return g.board
}

// BoardID returns the id of the loaded board.
func (g *Game) BoardID() string {
	return g.level.ID
}

// Step advances the game by one tick.
func (g *Game) Step(in platformcore.InputFrame) platformcore.StepResult {
	if in.Has(platformcore.ActionPause) && !g.gameOver {
		g.paused = !g.paused
	}
	if g.paused {
		return platformcore.StepResult{State: g.State()}
	}

	if g.beamLeft > 0 {
		g.beamLeft--
		if g.beamLeft == 0 && !g.gameOver {
			g.beam = nil
		}
	}

	if g.gameOver {
		return platformcore.StepResult{State: g.State()}
	}

	g.moveCursor(in)

	var shot *platformcore.Shot
	switch g.mode {
	case ModeDuel:
		shot = g.stepDuel(in)
	default:
		shot = g.stepSandbox(in)
	}

	return platformcore.StepResult{State: g.State(), Shot: shot}
}

func (g *Game) moveCursor(in platformcore.InputFrame) {
	x, y := g.cursor.X, g.cursor.Y
	if in.Has(platformcore.ActionLeft) {
		x--
	}
	if in.Has(platformcore.ActionRight) {
		x++
	}
	if in.Has(platformcore.ActionUp) {
		y--
	}
	if in.Has(platformcore.ActionDown) {
		y++
	}
	g.cursor = core.C(platformcore.Wrap(x, g.board.W), platformcore.Wrap(y, g.board.H))
}

func (g *Game) stepSandbox(in platformcore.InputFrame) *platformcore.Shot {
	if in.Has(platformcore.ActionNextGun) {
		g.gun = platformcore.Wrap(g.gun+1, g.board.GunCount())
		g.message = ""
	}
	if in.Has(platformcore.ActionRotateCW) {
		g.rotate(true)
	}
	if in.Has(platformcore.ActionRotateCCW) {
		g.rotate(false)
	}
	if !in.Has(platformcore.ActionFire) {
		return nil
	}

	path := g.fire(g.gun)
	if path.Hit() && path.HitPiece.Kind == core.KindPharaoh {
		g.endRound(path.HitPiece.Color.Opponent())
	}
	return g.shotFor(path)
}

func (g *Game) rotate(clockwise bool) bool {
	if g.board.Rotate(g.cursor, clockwise) {
		g.message = ""
		return true
	}
	g.message = fmt.Sprintf("nothing to rotate at %s", g.cursor)
	return false
}

// fire traces the beam of gun i and keeps it on screen.
func (g *Game) fire(i int) core.BeamPath {
	path := g.board.FireLaser(i)
	g.beam = &path
	g.beamLeft = g.beamTicks
	g.shots++
	if path.Hit() {
		g.hits++
	}
	g.message = path.String()
	return path
}

func (g *Game) endRound(winner core.Color) {
	g.winner = winner
	g.gameOver = true
	if winner == core.ColorNone {
		g.message = "pharaoh struck"
		return
	}
	g.message = fmt.Sprintf("%s pharaoh struck, %s wins", winner.Opponent(), winner)
}

func (g *Game) shotFor(path core.BeamPath) *platformcore.Shot {
	shot := ShotFromPath(g.level.ID, g.board, path)
	return &shot
}

// ShotFromPath flattens a traced beam into the record kept in shot history
// and sent to web clients.
func ShotFromPath(boardID string, b *core.Board, path core.BeamPath) platformcore.Shot {
	shot := platformcore.Shot{
		BoardID: boardID,
		Gun:     path.Gun,
		Color:   b.Gun(path.Gun).Color.String(),
		Status:  path.Status.String(),
		Path:    make([][2]int, len(path.Tiles)),
		Hit:     path.Hit(),
	}
	for i, c := range path.Tiles {
		shot.Path[i] = [2]int{c.X, c.Y}
	}
	if path.Hit() {
		shot.HitX = path.HitAt.X
		shot.HitY = path.HitAt.Y
		shot.HitKind = path.HitPiece.Kind.String()
	}
	return shot
}

// State returns the current game state.
func (g *Game) State() platformcore.GameState {
	st := platformcore.GameState{
		Shots:    g.shots,
		Hits:     g.hits,
		GameOver: g.gameOver,
		Paused:   g.paused,
	}
	if g.mode == ModeDuel {
		st.Turn = g.turn.String()
	}
	if g.winner != core.ColorNone {
		st.Winner = g.winner.String()
	}
	return st
}
