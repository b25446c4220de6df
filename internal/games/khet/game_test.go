package khet

import (
	"strings"
	"testing"

	platformcore "github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/games/khet/core"
)

func testConfig(board string) platformcore.RuntimeConfig {
	cfg := platformcore.DefaultConfig()
	cfg.BoardID = board
	cfg.BeamTicks = 3
	return cfg
}

func input(actions ...platformcore.Action) platformcore.InputFrame {
	in := platformcore.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

func TestResetLoadsBoard(t *testing.T) {
	g := New(ModeSandbox)
	g.Reset(testConfig("djed-loop"))

	if g.BoardID() != "djed-loop" {
		t.Errorf("expected djed-loop, got %s", g.BoardID())
	}
	if g.board.W != 3 || g.board.H != 3 {
		t.Errorf("expected 3x3 board, got %dx%d", g.board.W, g.board.H)
	}
	if g.message != "" {
		t.Errorf("unexpected message %q", g.message)
	}
}

func TestResetUnknownBoardFallsBack(t *testing.T) {
	g := New(ModeSandbox)
	g.Reset(testConfig("no-such-board"))

	if g.BoardID() != "classic" {
		t.Errorf("expected fallback to classic, got %s", g.BoardID())
	}
	if !strings.Contains(g.message, "no-such-board") {
		t.Errorf("expected load error in message, got %q", g.message)
	}
}

func TestSandboxFireReportsShot(t *testing.T) {
	g := New(ModeSandbox)
	g.Reset(testConfig("classic"))

	result := g.Step(input(platformcore.ActionFire))
	if result.Shot == nil {
		t.Fatal("expected a shot")
	}
	if result.Shot.Status != "exited_board" || result.Shot.Hit {
		t.Errorf("expected silver beam to exit, got %+v", result.Shot)
	}
	if len(result.Shot.Path) != 12 || result.Shot.Path[0] != [2]int{9, 0} {
		t.Errorf("unexpected path %v", result.Shot.Path)
	}
	if result.State.Shots != 1 {
		t.Errorf("expected 1 shot, got %d", result.State.Shots)
	}

	// No shot on ticks without fire
	if r := g.Step(input()); r.Shot != nil {
		t.Error("expected no shot without fire")
	}
}

func TestSandboxBeamExpires(t *testing.T) {
	g := New(ModeSandbox)
	g.Reset(testConfig("classic"))

	g.Step(input(platformcore.ActionFire))
	if g.beam == nil {
		t.Fatal("expected beam after firing")
	}
	for i := 0; i < 3; i++ {
		g.Step(input())
	}
	if g.beam != nil {
		t.Error("expected beam to expire after BeamTicks")
	}
}

func TestSandboxNextGun(t *testing.T) {
	g := New(ModeSandbox)
	g.Reset(testConfig("classic"))

	g.Step(input(platformcore.ActionNextGun))
	if g.gun != 1 {
		t.Errorf("expected gun 1, got %d", g.gun)
	}
	g.Step(input(platformcore.ActionNextGun))
	if g.gun != 0 {
		t.Errorf("expected gun to wrap to 0, got %d", g.gun)
	}
}

func TestSandboxCursorWraps(t *testing.T) {
	g := New(ModeSandbox)
	g.Reset(testConfig("classic"))
	g.cursor = core.C(0, 0)

	g.Step(input(platformcore.ActionLeft))
	if g.cursor != core.C(9, 0) {
		t.Errorf("expected cursor to wrap to (9,0), got %v", g.cursor)
	}
	g.Step(input(platformcore.ActionUp))
	if g.cursor != core.C(9, 7) {
		t.Errorf("expected cursor to wrap to (9,7), got %v", g.cursor)
	}
}

func TestSandboxPharaohHitEndsRound(t *testing.T) {
	g := New(ModeSandbox)
	g.Reset(testConfig("s-bend"))

	result := g.Step(input(platformcore.ActionFire))
	if !result.State.GameOver {
		t.Fatal("expected game over after striking the pharaoh")
	}
	if result.State.Winner != "silver" {
		t.Errorf("expected silver to win, got %q", result.State.Winner)
	}
	if result.Shot == nil || result.Shot.HitKind != "pharaoh" {
		t.Errorf("expected pharaoh hit in shot, got %+v", result.Shot)
	}

	// Further input is ignored
	if r := g.Step(input(platformcore.ActionFire)); r.Shot != nil {
		t.Error("expected no shot after game over")
	}
}

func TestSandboxRotate(t *testing.T) {
	g := New(ModeSandbox)
	g.Reset(testConfig("classic"))
	g.cursor = core.C(9, 3)

	g.Step(input(platformcore.ActionRotateCW))
	if o := g.board.PieceAt(core.C(9, 3)).Orientation; o != core.OrientNE {
		t.Errorf("expected NE after rotation, got %s", o)
	}

	g.cursor = core.C(5, 0)
	g.Step(input(platformcore.ActionRotateCW))
	if !strings.Contains(g.message, "nothing to rotate") {
		t.Errorf("expected rotate warning, got %q", g.message)
	}
}

func TestPauseFreezesGame(t *testing.T) {
	g := New(ModeSandbox)
	g.Reset(testConfig("classic"))

	r := g.Step(input(platformcore.ActionPause))
	if !r.State.Paused {
		t.Fatal("expected paused")
	}
	if r := g.Step(input(platformcore.ActionFire)); r.Shot != nil {
		t.Error("expected no shot while paused")
	}
	if r := g.Step(input(platformcore.ActionPause)); r.State.Paused {
		t.Error("expected unpaused")
	}
}

func TestDuelAlternatesTurns(t *testing.T) {
	g := New(ModeDuel)
	g.Reset(testConfig("classic"))

	if g.turn != core.ColorSilver || g.gun != 0 {
		t.Fatalf("expected silver to start with gun 0, got %s gun %d", g.turn, g.gun)
	}

	r := g.Step(input(platformcore.ActionFire))
	if r.Shot == nil || r.Shot.Color != "silver" {
		t.Fatalf("expected silver shot, got %+v", r.Shot)
	}
	if r.State.Turn != "red" || g.gun != 1 {
		t.Errorf("expected red to move next with gun 1, got %s gun %d", r.State.Turn, g.gun)
	}
}

func TestDuelRejectsOpponentPiece(t *testing.T) {
	g := New(ModeDuel)
	g.Reset(testConfig("classic"))
	g.cursor = core.C(9, 3) // red pyramid

	r := g.Step(input(platformcore.ActionRotateCW))
	if r.Shot != nil {
		t.Error("rotating an opponent piece should not fire")
	}
	if g.board.PieceAt(core.C(9, 3)).Orientation != core.OrientNW {
		t.Error("opponent piece should not rotate")
	}
	if g.turn != core.ColorSilver {
		t.Error("turn should not pass")
	}
}

func TestDuelRotationFiresAndCaptures(t *testing.T) {
	g := New(ModeDuel)
	g.Reset(testConfig("classic"))

	// Silver turns its pyramid at (7,3) from SE to SW: the beam coming west
	// along row 3 now strikes its back and the piece is lost.
	g.cursor = core.C(7, 3)
	r := g.Step(input(platformcore.ActionRotateCW))
	if r.Shot == nil {
		t.Fatal("expected rotation to fire")
	}
	if !r.Shot.Hit || r.Shot.HitX != 7 || r.Shot.HitY != 3 {
		t.Errorf("expected hit at (7,3), got %+v", r.Shot)
	}
	if !g.board.PieceAt(core.C(7, 3)).IsEmpty() {
		t.Error("struck pyramid should be removed")
	}
	if g.turn != core.ColorRed {
		t.Errorf("expected red to move, got %s", g.turn)
	}
}

func TestDuelStackedObeliskLosesTop(t *testing.T) {
	g := New(ModeDuel)
	g.Reset(testConfig("classic"))

	path := core.BeamPath{
		Status:   core.StatusAbsorbed,
		Tiles:    []core.Coord{core.C(4, 0)},
		HitAt:    core.C(4, 0),
		HitPiece: g.board.PieceAt(core.C(4, 0)),
	}
	g.resolveHit(path)

	p := g.board.PieceAt(core.C(4, 0))
	if p.Kind != core.KindObelisk || p.Color != core.ColorSilver {
		t.Errorf("expected single silver obelisk, got %v", p)
	}
	if g.gameOver {
		t.Error("obelisk hit should not end the game")
	}
}

func TestDuelPharaohHitEndsGame(t *testing.T) {
	g := New(ModeDuel)
	g.Reset(testConfig("classic"))

	path := core.BeamPath{
		Status:   core.StatusAbsorbed,
		Tiles:    []core.Coord{core.C(4, 7)},
		HitAt:    core.C(4, 7),
		HitPiece: g.board.PieceAt(core.C(4, 7)),
	}
	g.resolveHit(path)

	st := g.State()
	if !st.GameOver || st.Winner != "silver" {
		t.Errorf("expected silver win, got %+v", st)
	}
}

func TestRender(t *testing.T) {
	g := New(ModeSandbox)
	g.Reset(testConfig("classic"))
	g.Step(input(platformcore.ActionFire))

	screen := platformcore.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()

	for _, want := range []string{"Khet Sandbox - Classic", "Sh", "Rh", "▼", "▲", "Shots: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in rendered screen:\n%s", want, out)
		}
	}

	beam := false
	for y := 0; y < screen.Height(); y++ {
		for x := 0; x < screen.Width(); x++ {
			if screen.GetCell(x, y).Color == platformcore.ColorBeam {
				beam = true
			}
		}
	}
	if !beam {
		t.Error("expected beam cells in rendered screen")
	}
}

func TestRenderTooSmall(t *testing.T) {
	g := New(ModeSandbox)
	g.Reset(testConfig("classic"))

	screen := platformcore.NewScreen(20, 5)
	g.Render(screen)
	if !strings.Contains(screen.String(), "too small") {
		t.Error("expected too small warning")
	}
}
