package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/pet-arcade/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the arcade with a minigame picker",
	Long: `Start the arcade in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to play a minigame.
After a session ends you return to the menu; your gold balance is
shown at the top.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Play
  Tab          - High scores (local database only)
  Q            - Quit

Examples:
  petarcade menu
  petarcade menu --user alice --fps 60`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	l, closeLog := fileLogger()
	defer closeLog.Close()

	svc, store, err := openService(l)
	if err != nil {
		return err
	}

	deps := tui.Deps{Service: svc, Logger: l}
	if store != nil {
		defer store.Close()
		deps.Scores = store
	}

	return tui.RunArcade(deps, appCfg.UserID, runtimeConfig())
}
