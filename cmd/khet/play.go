package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/khet/internal/platform/tui"
	"github.com/vovakirdan/khet/internal/registry"
)

var flagMode string

var playCmd = &cobra.Command{
	Use:   "play [board]",
	Short: "Play a board",
	Long: `Open a board in the terminal.

Modes:
  sandbox - Rotate any piece and fire any laser
  duel    - Silver and red take turns; each turn ends with your laser

Controls:
  Arrows/WASD/HJKL - Move cursor
  E/X, Z           - Rotate clockwise, counter-clockwise
  Space/F          - Fire laser
  Tab/G            - Select next laser (sandbox)
  P                - Pause
  R                - Restart
  Q/Ctrl+C         - Quit

Examples:
  khet play
  khet play s-bend
  khet play classic --mode duel
  khet play classic --fps 60`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMode, "mode", "", "Play mode: sandbox or duel (default from config)")
}

func runPlay(_ *cobra.Command, args []string) {
	mode := cfg.Board.Mode
	if flagMode != "" {
		mode = flagMode
	}
	if !registry.Exists(mode) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", mode)
		fmt.Fprintln(os.Stderr, "Available modes: sandbox, duel")
		os.Exit(1)
	}

	boardID := ""
	if len(args) == 1 {
		boardID = args[0]
	}
	rc := runtimeConfig(boardID)
	if _, err := boardLoader().LoadByID(rc.BoardID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'khet boards' to see available boards.")
		os.Exit(1)
	}

	game, err := registry.Create(mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	// Continue without storage if the database cannot be opened
	store := openStore()

	_, runErr := tui.Run(game, shotSaver(store), rc)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
