package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pet-arcade/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Re-simulate a recorded run",
	Long: `Load a run saved with 'petarcade play --record', replay its inputs on a
fresh engine and check that the score and ending match.

Examples:
  petarcade replay snake-run.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(_ *cobra.Command, args []string) error {
	run, err := replay.Load(args[0])
	if err != nil {
		return err
	}

	res, err := replay.Run(run)
	if err != nil {
		return err
	}

	fmt.Printf("%s run, seed %d, %d frames\n", run.Kind, run.Seed, res.Steps)
	fmt.Printf("  recorded: score %d, ended %t\n", run.Score, run.Ended)
	fmt.Printf("  replayed: score %d, ended %t\n", res.Score, res.Ended)

	if err := replay.Verify(run); err != nil {
		if errors.Is(err, replay.ErrMismatch) {
			return fmt.Errorf("run does not reproduce: %w", err)
		}
		return err
	}
	fmt.Println("OK")
	return nil
}
