package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagLimit int
	flagClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history [board]",
	Short: "Show recorded shots",
	Long: `Display the most recent shots and their totals.

Without a board, shots from every board are listed.

Examples:
  khet history
  khet history classic --limit 5
  khet history classic --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of shots to show")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete recorded shots")
}

func runHistory(_ *cobra.Command, args []string) {
	boardID := ""
	if len(args) == 1 {
		boardID = args[0]
	}

	store := openStore()
	if store == nil {
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearShots(boardID); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing shots: %v\n", err)
			return
		}
		fmt.Println("Shot history cleared.")
		return
	}

	shots, err := store.RecentShots(boardID, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving shots: %v\n", err)
		return
	}

	title := "all boards"
	if boardID != "" {
		title = boardID
	}
	fmt.Printf("Shot History - %s\n", title)
	fmt.Println()

	if len(shots) == 0 {
		fmt.Println("No shots recorded yet.")
		fmt.Println()
		fmt.Println("Fire one with 'khet fire classic --record' or 'khet play'.")
		return
	}

	fmt.Printf("  %-5s  %-12s  %-9s  %-12s  %4s  %-18s  %s\n", "#", "Board", "Laser", "Result", "Len", "Hit", "Date")
	fmt.Printf("  %-5s  %-12s  %-9s  %-12s  %4s  %-18s  %s\n", "-", "-----", "-----", "------", "---", "---", "----")

	for _, s := range shots {
		hit := "-"
		if s.Hit {
			hit = fmt.Sprintf("%s (%d,%d)", s.HitKind, s.HitX, s.HitY)
		}
		fmt.Printf("  %-5d  %-12s  %-9s  %-12s  %4d  %-18s  %s\n",
			s.ID, s.BoardID, fmt.Sprintf("%d %s", s.Gun, s.Color), s.Status, s.Length, hit,
			s.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.Stats(boardID); err == nil && stats.Shots > 0 {
		fmt.Println()
		fmt.Printf("Total: %d shots, %d hits, %d exits, %d loops, avg %.1f tiles, longest %d\n",
			stats.Shots, stats.Hits, stats.Exits, stats.Cycles, stats.AvgLength, stats.MaxLength)
	}
}
