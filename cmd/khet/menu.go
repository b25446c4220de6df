package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/khet/internal/platform/tui"
	"github.com/vovakirdan/khet/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a mode and board interactively",
	Long: `Start khet in interactive menu mode.

Controls:
  Up/Down/j/k  - Choose mode
  Left/Right   - Choose board
  Enter/Space  - Play
  Tab          - Shot history
  Q            - Quit

After a round you return to the menu with B or Esc.

Examples:
  khet menu
  khet menu --boards ./my-boards`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	store := openStore()
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	rc := runtimeConfig("")

	for {
		result, err := tui.RunMenu(rc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		rc = result.Config

		if result.Quit {
			return
		}

		if result.WantsHistory {
			var history tui.ShotHistory
			if store != nil {
				history = store
			}
			goBack, hErr := tui.RunHistory(history, rc.ScreenW, rc.ScreenH)
			if hErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", hErr)
			}
			if goBack {
				continue
			}
			return
		}

		if result.ModeID == "" {
			return
		}

		game, err := registry.Create(result.ModeID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			continue
		}

		backToMenu, err := tui.Run(game, shotSaver(store), rc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
			continue
		}
		if !backToMenu {
			return
		}
	}
}
