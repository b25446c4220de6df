package core

// Color is the foreground role of a screen cell. The tui package maps each
// role to a terminal color.
type Color uint8

const (
	ColorDefault Color = iota
	ColorSilver        // Silver player's pieces
	ColorRed           // Red player's pieces
	ColorBeam          // Laser path
	ColorHit           // Tile where the beam was absorbed
	ColorCursor        // Selection highlight
	ColorGun           // Laser gun markers
	ColorTitle         // Headings
	ColorDim           // Grid lines, empty tiles, hints
	ColorWarn          // Errors and warnings
)
