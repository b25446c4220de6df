// khet fires lasers across Khet boards in the terminal, over SSH and to
// browsers.
//
// Usage:
//
//	khet boards [board]      - List boards or print one
//	khet fire <board>        - Trace a laser and print its path
//	khet play [board]        - Play a board
//	khet menu                - Pick a mode and board interactively
//	khet history [board]     - Show recorded shots
//	khet serve               - Start SSH server for remote play
//	khet web                 - Serve boards and beams over HTTP and websocket
//
// Global flags:
//
//	--config <path> - Config file (default: ~/.khet/configs/khet.yaml)
//	--fps <rate>    - Set tick rate
//	--db <path>     - Set database path
//	--boards <dir>  - Extra board files
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/khet/internal/config"
	"github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/games/khet/levels"
	"github.com/vovakirdan/khet/internal/storage"

	// Register play modes
	_ "github.com/vovakirdan/khet/internal/games/khet"
)

var (
	// Global flags
	flagConfig    string
	flagFPS       int
	flagDBPath    string
	flagBoardsDir string

	// Loaded in PersistentPreRunE, flags applied on top
	cfg config.KhetConfig
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "khet",
	Short: "Khet - laser reflection boards in your terminal",
	Long: `Khet traces laser beams across boards of mirrored pieces.

Available commands:
  boards   - List boards or print one
  fire     - Fire a laser and print its path
  play     - Play a board in the terminal
  menu     - Interactive mode and board picker
  history  - View recorded shots
  serve    - Start SSH server for remote play
  web      - Serve boards over HTTP and websocket

Examples:
  khet boards
  khet fire classic --gun 1
  khet play s-bend --mode duel
  khet serve --ssh :2222
  khet web --http :8080`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to shot history database")
	rootCmd.PersistentFlags().StringVar(&flagBoardsDir, "boards", "", "Directory of extra board files")

	rootCmd.AddCommand(boardsCmd)
	rootCmd.AddCommand(fireCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
}

// loadConfig reads the config file and applies the global flags that were
// set on the command line.
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.LoadKhet(flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.Beam.FPS = flagFPS
	}
	if flags.Changed("db") {
		cfg.Storage.DBPath = flagDBPath
	}
	if flags.Changed("boards") {
		cfg.Board.Dir = flagBoardsDir
	}
	return cfg.Validate()
}

// boardLoader returns the loader for built-in and configured boards.
func boardLoader() *levels.Loader {
	return levels.NewLoader(cfg.Board.Dir)
}

// runtimeConfig builds the game config for the current terminal.
func runtimeConfig(boardID string) core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	if boardID == "" {
		boardID = cfg.Board.Default
	}

	return core.RuntimeConfig{
		ScreenW:   width,
		ScreenH:   height,
		TickRate:  cfg.Beam.FPS,
		BoardID:   boardID,
		BoardsDir: cfg.Board.Dir,
		BeamTicks: cfg.Beam.DisplayTicks,
	}
}

// openStore opens the shot database. A failure is reported as a warning
// and the caller continues without history.
func openStore() *storage.Store {
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open shot database: %v\n", err)
		return nil
	}
	return store
}

// shotSaver returns store as a ShotSaver, or a nil interface for a nil store.
func shotSaver(store *storage.Store) storage.ShotSaver {
	if store == nil {
		return nil
	}
	return store
}
