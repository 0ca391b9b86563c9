package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pet-arcade/internal/config"
	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/platform/tui"
	"github.com/vovakirdan/pet-arcade/internal/registry"
	"github.com/vovakirdan/pet-arcade/internal/replay"
	"github.com/vovakirdan/pet-arcade/internal/session"
)

var (
	flagGameConfig string
	flagPreset     string
	flagRecord     string
)

var playCmd = &cobra.Command{
	Use:   "play <kind>",
	Short: "Play a minigame",
	Long: `Start one minigame session. The result service is asked for a play
first; when today's quota is used up the game does not start.

Controls:
  Arrows/WASD  - Move (blocks: up rotates, down soft-drops)
  Space        - Hard drop (blocks) / stop (dodge)
  P            - Pause
  R            - Play again (on the result screen)
  Q/Esc        - Leave
  Ctrl+S       - Save a screenshot

Difficulty presets:
  easy, normal, hard, fixed

Examples:
  petarcade play snake
  petarcade play blocks --preset hard
  petarcade play dodge --game-config ./dodge.yaml
  petarcade play snake --seed 42 --record snake-run.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagGameConfig, "game-config", "", "Path to a custom game tuning YAML")
	playCmd.Flags().StringVar(&flagPreset, "preset", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().StringVar(&flagRecord, "record", "", "Save the last session's inputs to this file")
}

func runPlay(_ *cobra.Command, args []string) error {
	kind, err := core.ParseKind(args[0])
	if err != nil {
		return fmt.Errorf("%w (run 'petarcade list' to see the minigames)", err)
	}
	if _, ok := config.ParsePreset(flagPreset); !ok {
		return fmt.Errorf("unknown preset %q", flagPreset)
	}

	game, err := registry.Create(string(kind))
	if err != nil {
		return err
	}
	var rec *replay.Recorder
	if flagRecord != "" {
		rec = replay.NewRecorder(game, kind)
		game = rec
	}

	l, closeLog := fileLogger()
	defer closeLog.Close()

	svc, store, err := openService(l)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	rc := runtimeConfig()
	rc.ConfigPath = flagGameConfig
	rc.Preset = flagPreset

	ctrl := session.NewController(session.Options{
		Kind:    kind,
		UserID:  appCfg.UserID,
		Game:    game,
		Service: svc,
		Runtime: rc,
		Logger:  l,
		Seed:    seedFunc(),
	})
	if err := tui.Run(ctrl, svc, rc); err != nil {
		return fmt.Errorf("error running game: %w", err)
	}

	if notice, ok := ctrl.Notice(); ok {
		fmt.Println(notice.Message)
	}
	res := ctrl.Result()
	if res.SessionID != "" {
		fmt.Printf("Score %d, earned %d gold.\n", res.Score, res.Money)
	}

	if rec != nil {
		run := rec.Log()
		if run.Steps() == 0 {
			return nil
		}
		if err := replay.Save(flagRecord, run); err != nil {
			return err
		}
		fmt.Printf("Run recorded to %s\n", flagRecord)
	}
	return nil
}
