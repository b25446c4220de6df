package core

import (
	"strings"
	"testing"
)

func rows(s *Screen) []string {
	return strings.Split(s.String(), "\n")
}

func TestNewScreenIsBlank(t *testing.T) {
	s := NewScreen(12, 4)
	if s.Width() != 12 || s.Height() != 4 {
		t.Fatalf("size = %dx%d, expected 12x4", s.Width(), s.Height())
	}
	want := strings.Repeat(" ", 12)
	for y, row := range rows(s) {
		if row != want {
			t.Errorf("row %d = %q, expected blank", y, row)
		}
	}
}

func TestScreenCells(t *testing.T) {
	s := NewScreen(6, 3)
	s.SetWithColor(2, 1, 'h', ColorSilver)
	s.Set(3, 1, '.')

	tests := []struct {
		name string
		x, y int
		want Cell
	}{
		{"colored piece", 2, 1, Cell{Rune: 'h', Color: ColorSilver}},
		{"default color", 3, 1, Cell{Rune: '.', Color: ColorDefault}},
		{"untouched", 0, 0, blank},
		{"left of screen", -1, 1, blank},
		{"below screen", 2, 3, blank},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.GetCell(tc.x, tc.y); got != tc.want {
				t.Errorf("GetCell(%d, %d) = %+v, expected %+v", tc.x, tc.y, got, tc.want)
			}
		})
	}

	// Writes outside the buffer are dropped
	s.SetWithColor(6, 0, 'x', ColorBeam)
	s.SetWithColor(0, -1, 'x', ColorBeam)
	if strings.Contains(s.String(), "x") {
		t.Error("out of bounds writes should be ignored")
	}

	s.Clear()
	if got := s.GetCell(2, 1); got != blank {
		t.Errorf("Clear left %+v behind", got)
	}
}

func TestScreenTextClipsAndCounts(t *testing.T) {
	s := NewScreen(8, 2)
	s.DrawTextWithColor(5, 0, "beam", ColorBeam)
	if got := rows(s)[0]; got != "     bea" {
		t.Errorf("clipped row = %q", got)
	}
	if c := s.GetCell(5, 0); c.Color != ColorBeam {
		t.Errorf("text color = %v, expected beam", c.Color)
	}

	// Arrows are multi-byte but take one cell each
	s.DrawTextWithColor(0, 1, "▲►x", ColorGun)
	if s.Get(1, 1) != '►' || s.Get(2, 1) != 'x' {
		t.Errorf("row 1 = %q", rows(s)[1])
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(11, 1)
	s.DrawTextCentered(0, "KHET", ColorTitle)
	if got := rows(s)[0]; got != "   KHET    " {
		t.Errorf("centered row = %q", got)
	}
	if s.GetCell(3, 0).Color != ColorTitle {
		t.Error("centered text should keep its color")
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(6, 4)
	s.DrawBox(NewRect(0, 0, 5, 3), ColorDim)

	want := []string{
		"┌───┐ ",
		"│   │ ",
		"└───┘ ",
		"      ",
	}
	got := rows(s)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, expected %q", i, got[i], want[i])
		}
	}
	if s.GetCell(0, 0).Color != ColorDim {
		t.Error("box should use the given color")
	}
}

func TestScreenResizeKeepsTopLeft(t *testing.T) {
	s := NewScreen(10, 6)
	s.DrawTextWithColor(0, 0, "Khet", ColorTitle)
	s.DrawTextWithColor(0, 5, "gone", ColorDefault)

	s.Resize(3, 2)
	if got := s.String(); got != "Khe\n   " {
		t.Errorf("after shrinking = %q", got)
	}

	s.Resize(6, 3)
	if got := rows(s)[0]; got != "Khe   " {
		t.Errorf("after growing row 0 = %q", got)
	}
	if s.GetCell(0, 0).Color != ColorTitle {
		t.Error("resize should keep cell colors")
	}
}
