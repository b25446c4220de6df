package core

// RuntimeConfig contains configuration passed to games at initialization.
type RuntimeConfig struct {
	ScreenW   int    // Screen width in characters
	ScreenH   int    // Screen height in characters
	TickRate  int    // Simulation ticks per second
	BoardID   string // Board to load; empty means the default board
	BoardsDir string // Extra board files; empty means built-in boards only
	BeamTicks int    // How long a fired beam stays on screen
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:   80,
		ScreenH:   24,
		TickRate:  30,
		BoardID:   "classic",
		BeamTicks: 45,
	}
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Shots    int    // Lasers fired since the last reset
	Hits     int    // Shots that ended on a piece
	Turn     string // Color to move; empty outside turn-based modes
	Winner   string // Set when a pharaoh has fallen
	GameOver bool   // Whether the round has ended
	Paused   bool   // Whether the game is paused
}

// Shot describes one fired laser for history and broadcast.
type Shot struct {
	BoardID string
	Gun     int
	Color   string
	Status  string
	Path    [][2]int
	Hit     bool
	HitX    int
	HitY    int
	HitKind string
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State GameState
	Shot  *Shot // Non-nil on the tick a laser was fired
}
