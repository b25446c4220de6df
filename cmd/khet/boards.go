package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/khet/internal/games/khet/core"
)

var boardsCmd = &cobra.Command{
	Use:   "boards [board]",
	Short: "List boards or print one",
	Long: `List every built-in and configured board, or print a single board
with its piece glyphs.

Glyphs are the owner (S silver, R red) followed by the piece:
  h pharaoh, / or \ djed, o obelisk, O stacked obelisk,
  L F 7 J pyramid facing NE SE SW NW

With --tokens the board is printed as the token grid web clients
receive (h pharaoh, d djed, p pyramid, o obelisk, oo stacked, . empty).

Examples:
  khet boards
  khet boards classic
  khet boards classic --tokens
  khet boards --boards ./my-boards`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBoards,
}

var flagTokens bool

func init() {
	boardsCmd.Flags().BoolVar(&flagTokens, "tokens", false, "Print the token grid instead of glyphs")
}

func runBoards(_ *cobra.Command, args []string) {
	loader := boardLoader()

	if len(args) == 1 {
		lvl, err := loader.LoadByID(args[0])
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

		fmt.Printf("%s (%dx%d)\n\n", lvl.Name, lvl.Width, lvl.Height)
		if flagTokens {
			fmt.Print(core.RenderTokensCompact(b))
		} else {
			fmt.Print(core.RenderASCII(b, nil))
		}
		fmt.Println()
		printBoardStats(core.ComputeBoardStats(b))
		return
	}

	lvls, err := loader.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Available boards:")
	fmt.Println()

	// Find max ID length for alignment
	maxLen := 0
	for _, l := range lvls {
		if len(l.ID) > maxLen {
			maxLen = len(l.ID)
		}
	}

	for _, l := range lvls {
		source := "built-in"
		if !l.Builtin() {
			source = l.FilePath
		}
		fmt.Printf("  %-*s  %-24s %2dx%-2d  %d lasers  %s\n",
			maxLen, l.ID, l.Name, l.Width, l.Height, len(l.Guns), source)
	}

	fmt.Println()
	fmt.Println("Print one with: khet boards <board>")
}

func printBoardStats(st core.BoardStats) {
	fmt.Printf("Pieces: %d (silver %d, red %d), empty tiles %d, lasers %d\n",
		st.Pieces, st.ByColor[core.ColorSilver], st.ByColor[core.ColorRed], st.EmptyCells, st.Guns)

	var kinds []string
	for k := core.KindPharaoh; k <= core.KindObeliskStacked; k++ {
		if n := st.ByKind[k]; n > 0 {
			kinds = append(kinds, fmt.Sprintf("%s %d", k, n))
		}
	}
	if len(kinds) > 0 {
		fmt.Printf("  %s\n", strings.Join(kinds, ", "))
	}

	for _, c := range []core.Color{core.ColorSilver, core.ColorRed} {
		if st.Pharaohs[c] == 0 {
			fmt.Printf("  %s has no pharaoh, so %s cannot win a duel here\n", c, c.Opponent())
		}
	}
}
