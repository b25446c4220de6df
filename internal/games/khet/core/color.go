package core

import "strings"

// Color identifies the player owning a piece or a laser, or the player a
// surface tile is reserved for.
type Color uint8

const (
	ColorNone Color = iota
	ColorSilver
	ColorRed
)

// String returns the string representation of a color.
func (c Color) String() string {
	switch c {
	case ColorNone:
		return "none"
	case ColorSilver:
		return "silver"
	case ColorRed:
		return "red"
	default:
		return "unknown"
	}
}

// Char returns a single character for the color, as used in surface rows.
func (c Color) Char() rune {
	switch c {
	case ColorSilver:
		return 'S'
	case ColorRed:
		return 'R'
	default:
		return '.'
	}
}

// Opponent returns the other player's color. ColorNone has no opponent.
func (c Color) Opponent() Color {
	switch c {
	case ColorSilver:
		return ColorRed
	case ColorRed:
		return ColorSilver
	default:
		return ColorNone
	}
}

// ParseColor converts a string to a Color.
// Returns ColorNone and false if the string is not recognized.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(s) {
	case "", "none":
		return ColorNone, true
	case "silver", "s":
		return ColorSilver, true
	case "red", "r":
		return ColorRed, true
	default:
		return ColorNone, false
	}
}
