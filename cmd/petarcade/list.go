package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/registry"
	"github.com/vovakirdan/pet-arcade/internal/session"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all minigames",
	Long:  `Shows every registered minigame with its wire number and reward rate.`,
	Args:  cobra.NoArgs,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()
	if len(games) == 0 {
		fmt.Println("No minigames available.")
		return
	}

	fmt.Println("Available minigames:")
	fmt.Println()

	maxIDLen := 4 // "Kind" header
	for _, g := range games {
		maxIDLen = max(maxIDLen, len(g.ID))
	}

	fmt.Printf("  %-*s  %-3s  %-14s  %s\n", maxIDLen, "Kind", "No", "Title", "Reward")
	fmt.Printf("  %-*s  %-3s  %-14s  %s\n", maxIDLen, "----", "--", "-----", "------")
	for _, g := range games {
		kind := core.GameKind(g.ID)
		fmt.Printf("  %-*s  %-3d  %-14s  %d gold/pt\n",
			maxIDLen, g.ID, kind.Number(), g.Title, session.TunedGoldPerPoint(kind, ""))
	}

	fmt.Println()
	fmt.Println("Run 'petarcade play <kind>' to play a minigame.")
}
