package core_test

import (
	"testing"

	"github.com/vovakirdan/khet/internal/games/khet/core"
)

// rotateCW turns a direction a quarter turn clockwise.
func rotateCW(d core.Dir) core.Dir {
	return core.Dir((int(d) + 1) % 4)
}

func TestPyramidReflectTable(t *testing.T) {
	testCases := []struct {
		orient core.Orientation
		entry  core.Dir
		hit    bool
		out    core.Dir
	}{
		{core.OrientNE, core.DirNorth, false, core.DirEast},
		{core.OrientNE, core.DirEast, false, core.DirNorth},
		{core.OrientNE, core.DirSouth, true, 0},
		{core.OrientNE, core.DirWest, true, 0},
		{core.OrientSE, core.DirNorth, true, 0},
		{core.OrientSE, core.DirEast, false, core.DirSouth},
		{core.OrientSE, core.DirSouth, false, core.DirEast},
		{core.OrientSE, core.DirWest, true, 0},
		{core.OrientSW, core.DirNorth, true, 0},
		{core.OrientSW, core.DirEast, true, 0},
		{core.OrientSW, core.DirSouth, false, core.DirWest},
		{core.OrientSW, core.DirWest, false, core.DirSouth},
		{core.OrientNW, core.DirNorth, false, core.DirWest},
		{core.OrientNW, core.DirEast, true, 0},
		{core.OrientNW, core.DirSouth, true, 0},
		{core.OrientNW, core.DirWest, false, core.DirNorth},
	}

	for _, tc := range testCases {
		p := core.NewPiece(core.KindPyramid, core.ColorSilver, tc.orient)
		out := p.Reflect(tc.entry)
		if out.Hit != tc.hit {
			t.Errorf("pyramid %s entry %s: expected hit=%v, got %v", tc.orient, tc.entry, tc.hit, out.Hit)
			continue
		}
		if !tc.hit && out.Dir != tc.out {
			t.Errorf("pyramid %s entry %s: expected %s, got %s", tc.orient, tc.entry, tc.out, out.Dir)
		}
	}
}

// Entry sides are the opposite of travel: these cases are phrased by the way
// the beam is moving before it reaches the piece.
func TestReflectInTravelTerms(t *testing.T) {
	testCases := []struct {
		name      string
		piece     core.Piece
		traveling core.Dir
		out       core.Dir
	}{
		{"southbound into NE pyramid", core.NewPiece(core.KindPyramid, core.ColorSilver, core.OrientNE), core.DirSouth, core.DirEast},
		{"westbound into NE pyramid", core.NewPiece(core.KindPyramid, core.ColorSilver, core.OrientNE), core.DirWest, core.DirNorth},
		{"southbound into NW pyramid", core.NewPiece(core.KindPyramid, core.ColorRed, core.OrientNW), core.DirSouth, core.DirWest},
		{"eastbound into SW pyramid", core.NewPiece(core.KindPyramid, core.ColorRed, core.OrientSW), core.DirEast, core.DirSouth},
		{"northbound into NE djed", core.NewPiece(core.KindDjed, core.ColorRed, core.OrientNE), core.DirNorth, core.DirWest},
		{"eastbound through empty", core.Empty(), core.DirEast, core.DirEast},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := tc.piece.Reflect(tc.traveling.Opposite())
			if out.Hit {
				t.Fatalf("expected the beam to continue, got absorbed")
			}
			if out.Dir != tc.out {
				t.Errorf("expected to leave traveling %s, got %s", tc.out, out.Dir)
			}
		})
	}
}

func TestPyramidTwoMirrorTwoSolid(t *testing.T) {
	for _, o := range core.AllOrientations() {
		p := core.NewPiece(core.KindPyramid, core.ColorRed, o)
		hits := 0
		for _, entry := range core.AllDirs() {
			out := p.Reflect(entry)
			if out.Hit {
				hits++
				continue
			}
			// The mirror sides reflect into each other.
			back := p.Reflect(out.Dir)
			if back.Hit || back.Dir != entry {
				t.Errorf("pyramid %s: entry %s exits %s, but entry %s does not exit %s", o, entry, out.Dir, out.Dir, entry)
			}
		}
		if hits != 2 {
			t.Errorf("pyramid %s: expected 2 absorbing sides, got %d", o, hits)
		}
	}
}

func TestPyramidRotationConsistency(t *testing.T) {
	for _, o := range core.AllOrientations() {
		p := core.NewPiece(core.KindPyramid, core.ColorSilver, o)
		rotated := core.NewPiece(core.KindPyramid, core.ColorSilver, o.RotateCW())
		for _, entry := range core.AllDirs() {
			out := p.Reflect(entry)
			got := rotated.Reflect(rotateCW(entry))
			if out.Hit != got.Hit {
				t.Errorf("pyramid %s entry %s: rotation changed hit from %v to %v", o, entry, out.Hit, got.Hit)
				continue
			}
			if !out.Hit && got.Dir != rotateCW(out.Dir) {
				t.Errorf("pyramid %s entry %s: rotated output %s, expected %s", o, entry, got.Dir, rotateCW(out.Dir))
			}
		}
	}
}

func TestDjedNeverAbsorbs(t *testing.T) {
	for _, o := range core.AllOrientations() {
		p := core.NewPiece(core.KindDjed, core.ColorSilver, o)
		outs := make(map[core.Dir]bool)
		for _, entry := range core.AllDirs() {
			out := p.Reflect(entry)
			if out.Hit {
				t.Errorf("djed %s absorbed beam entering from %s", o, entry)
			}
			outs[out.Dir] = true
		}
		if len(outs) != 4 {
			t.Errorf("djed %s: expected a permutation of 4 directions, got %d distinct", o, len(outs))
		}
	}
}

func TestDjedAlignments(t *testing.T) {
	nesw := map[core.Dir]core.Dir{
		core.DirNorth: core.DirEast,
		core.DirEast:  core.DirNorth,
		core.DirSouth: core.DirWest,
		core.DirWest:  core.DirSouth,
	}
	senw := map[core.Dir]core.Dir{
		core.DirNorth: core.DirWest,
		core.DirWest:  core.DirNorth,
		core.DirEast:  core.DirSouth,
		core.DirSouth: core.DirEast,
	}

	testCases := []struct {
		orient core.Orientation
		want   map[core.Dir]core.Dir
	}{
		{core.OrientNE, nesw},
		{core.OrientSW, nesw},
		{core.OrientSE, senw},
		{core.OrientNW, senw},
	}

	for _, tc := range testCases {
		p := core.NewPiece(core.KindDjed, core.ColorRed, tc.orient)
		for entry, want := range tc.want {
			if got := p.Reflect(entry).Dir; got != want {
				t.Errorf("djed %s entry %s: expected %s, got %s", tc.orient, entry, want, got)
			}
		}
	}
}

func TestEmptyPassesThrough(t *testing.T) {
	for _, entry := range core.AllDirs() {
		out := core.Empty().Reflect(entry)
		if out.Hit {
			t.Errorf("empty tile absorbed beam from %s", entry)
		}
		if out.Dir != entry.Opposite() {
			t.Errorf("empty tile entry %s: expected %s, got %s", entry, entry.Opposite(), out.Dir)
		}
	}
}

func TestSolidPiecesAlwaysAbsorb(t *testing.T) {
	kinds := []core.Kind{core.KindPharaoh, core.KindObelisk, core.KindObeliskStacked}
	for _, k := range kinds {
		p := core.NewPiece(k, core.ColorSilver, core.OrientNone)
		for _, entry := range core.AllDirs() {
			if !p.Reflect(entry).Hit {
				t.Errorf("%s did not absorb beam from %s", k, entry)
			}
		}
	}
}

func TestReflectPanicsWithoutOrientation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for pyramid without orientation")
		}
	}()
	p := core.Piece{Kind: core.KindPyramid, Color: core.ColorRed}
	p.Reflect(core.DirNorth)
}

func TestReflectPanicsOnInvalidEntry(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid entry side")
		}
	}()
	core.Empty().Reflect(core.Dir(9))
}

func TestNewPieceDropsOrientation(t *testing.T) {
	p := core.NewPiece(core.KindPharaoh, core.ColorRed, core.OrientNE)
	if p.Orientation != core.OrientNone {
		t.Errorf("expected pharaoh orientation none, got %s", p.Orientation)
	}
	e := core.NewPiece(core.KindEmpty, core.ColorRed, core.OrientNone)
	if e != core.Empty() {
		t.Errorf("expected empty piece, got %v", e)
	}
}

func TestOrientationRotation(t *testing.T) {
	for _, o := range core.AllOrientations() {
		if got := o.RotateCW().RotateCCW(); got != o {
			t.Errorf("%s: CW then CCW gave %s", o, got)
		}
		r := o
		for i := 0; i < 4; i++ {
			r = r.RotateCW()
		}
		if r != o {
			t.Errorf("%s: four CW turns gave %s", o, r)
		}
	}
	if core.OrientNone.RotateCW() != core.OrientNone {
		t.Error("OrientNone should not rotate")
	}
}

func TestParseHelpers(t *testing.T) {
	if d, ok := core.ParseDir("S"); !ok || d != core.DirSouth {
		t.Errorf("ParseDir(S) = %v, %v", d, ok)
	}
	if _, ok := core.ParseDir("up-left"); ok {
		t.Error("ParseDir accepted a diagonal")
	}
	if k, ok := core.ParseKind("piramid"); !ok || k != core.KindPyramid {
		t.Errorf("ParseKind(piramid) = %v, %v", k, ok)
	}
	if o, ok := core.ParseOrientation("NW"); !ok || o != core.OrientNW {
		t.Errorf("ParseOrientation(NW) = %v, %v", o, ok)
	}
	if c, ok := core.ParseColor("red"); !ok || c != core.ColorRed {
		t.Errorf("ParseColor(red) = %v, %v", c, ok)
	}
}
