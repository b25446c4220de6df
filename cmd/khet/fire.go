package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/khet/internal/games/khet"
	"github.com/vovakirdan/khet/internal/games/khet/core"
)

var (
	flagGun    int
	flagAll    bool
	flagJSON   bool
	flagRecord bool
)

var fireCmd = &cobra.Command{
	Use:   "fire <board>",
	Short: "Fire a laser and print its path",
	Long: `Trace a laser across a board without changing it.

The board is printed with the beam drawn as ** on empty tiles,
followed by where the beam ended.

Examples:
  khet fire classic
  khet fire classic --gun 1
  khet fire s-bend --all
  khet fire classic --json
  khet fire classic --record`,
	Args: cobra.ExactArgs(1),
	Run:  runFire,
}

func init() {
	fireCmd.Flags().IntVar(&flagGun, "gun", 0, "Laser to fire")
	fireCmd.Flags().BoolVar(&flagAll, "all", false, "Fire every laser in order")
	fireCmd.Flags().BoolVar(&flagJSON, "json", false, "Print beam paths as JSON")
	fireCmd.Flags().BoolVar(&flagRecord, "record", false, "Save shots to the history database")
}

func runFire(_ *cobra.Command, args []string) {
	lvl, err := boardLoader().LoadByID(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'khet boards' to see available boards.")
		os.Exit(1)
	}
	b, err := lvl.ToBoard()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: board %s: %v\n", lvl.ID, err)
		os.Exit(1)
	}

	var paths []core.BeamPath
	if flagAll {
		paths = core.FireAll(b)
	} else {
		if flagGun < 0 || flagGun >= b.GunCount() {
			fmt.Fprintf(os.Stderr, "Error: board %s has %d lasers, no laser %d\n", lvl.ID, b.GunCount(), flagGun)
			os.Exit(1)
		}
		paths = []core.BeamPath{core.FireLaser(b, flagGun)}
	}

	if flagRecord {
		if store := openStore(); store != nil {
			for _, p := range paths {
				if _, err := store.SaveShot(khet.ShotFromPath(lvl.ID, b, p)); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: could not record shot: %v\n", err)
				}
			}
			store.Close()
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		var v any = paths
		if !flagAll {
			v = paths[0]
		}
		if err := enc.Encode(v); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	for i := range paths {
		if i > 0 {
			fmt.Println()
		}
		fmt.Print(core.RenderASCII(b, &paths[i]))
	}
}
