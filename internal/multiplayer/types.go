// Package multiplayer pairs SSH sessions into online duels.
// A host opens a lobby and shares its join code; the joiner plays red and
// the host plays silver. The match loop owns the game and only applies
// input from the side whose turn it is.
package multiplayer

import (
	platformcore "github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/games/khet/core"
)

// SessionID uniquely identifies a player's connection.
type SessionID string

// MatchID uniquely identifies a running match.
type MatchID string

// Side is the color a session plays.
type Side = core.Color

// Sides of a match. The host is always silver.
const (
	SideNone   = core.ColorNone
	SideSilver = core.ColorSilver
	SideRed    = core.ColorRed
)

// Snapshot is one rendered frame of a match as seen by both players.
type Snapshot struct {
	Screen *platformcore.Screen // Fresh per frame; receivers may keep it
	State  platformcore.GameState
}

// seatAllowed lists the actions a seated player may send. Pause, restart
// and quit are handled by each session, not by the shared game.
var seatAllowed = []platformcore.Action{
	platformcore.ActionUp,
	platformcore.ActionDown,
	platformcore.ActionLeft,
	platformcore.ActionRight,
	platformcore.ActionFire,
	platformcore.ActionRotateCW,
	platformcore.ActionRotateCCW,
}
