// Package core provides fundamental types and utilities for the terminal
// front end. It contains no Bubble Tea dependency so game logic stays pure
// and testable.
package core

// Rect represents an axis-aligned area of the screen.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate one past the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate one past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Centered returns a w×h rectangle centered inside r.
// The result is clamped so it never starts left of or above r.
func (r Rect) Centered(w, h int) Rect {
	x := r.X + max(0, (r.W-w)/2)
	y := r.Y + max(0, (r.H-h)/2)
	return NewRect(x, y, w, h)
}

// Wrap maps val into [0, n) so that stepping past either end wraps around.
func Wrap(val, n int) int {
	if n <= 0 {
		return 0
	}
	val %= n
	if val < 0 {
		val += n
	}
	return val
}
