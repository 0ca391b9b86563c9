package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/platform/tui"
)

var flagLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores [kind]",
	Short: "Show high scores",
	Long: `Without a kind, opens the interactive scoreboard. With a kind, prints
the best completed sessions and the kind's totals.

Examples:
  petarcade scores
  petarcade scores snake --limit 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of scores to print")
}

func runScores(_ *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer store.Close()

	if len(args) == 0 {
		rc := runtimeConfig()
		return tui.RunScoreboard(store, rc.ScreenW, rc.ScreenH)
	}

	kind, err := core.ParseKind(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scores, err := store.TopScores(ctx, string(kind), flagLimit)
	if err != nil {
		return fmt.Errorf("error retrieving scores: %w", err)
	}

	fmt.Printf("High Scores - %s\n", kind)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'petarcade play %s' to set the first high score!\n", kind)
		return nil
	}

	fmt.Printf("  %-4s  %-16s  %-10s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Printf("  %-4s  %-16s  %-10s  %s\n", "----", "------", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-16s  %-10d  %s\n",
			i+1, entry.UserID, entry.Score, entry.CompletedAt.Local().Format("2006-01-02 15:04"))
	}

	stats, err := store.Stats(ctx, string(kind))
	if err == nil {
		fmt.Println()
		fmt.Printf("Games: %d  Best: %d  Average: %.1f  Gold paid: %d\n",
			stats.GamesCount, stats.HighScore, stats.AvgScore, stats.TotalMoney)
	}
	return nil
}
