// petarcade runs the virtual-pet minigames in the terminal, over SSH, or as
// the HTTP result service the games report to.
//
// Usage:
//
//	petarcade list                 - List the minigames
//	petarcade play <kind>          - Play one minigame session
//	petarcade menu                 - Pick minigames from a menu
//	petarcade serve                - Host the arcade over SSH
//	petarcade api                  - Run the HTTP result service
//	petarcade scores [kind]        - Show high scores
//	petarcade replay <file>        - Re-simulate a recorded run
//
// Global flags:
//
//	--config <path>  - Application config YAML (default: ~/.petarcade/config.yaml)
//	--user <id>      - Player id used for quotas and balance
//	--api <url>      - Report to a remote result service instead of the local database
//	--fps <rate>     - Host frame rate (default: 30)
//	--seed <value>   - RNG seed for reproducible runs
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/pet-arcade/internal/config"

	// Import games to register them
	_ "github.com/vovakirdan/pet-arcade/internal/games/blocks"
	_ "github.com/vovakirdan/pet-arcade/internal/games/dodge"
	_ "github.com/vovakirdan/pet-arcade/internal/games/snake"
)

var (
	// Global flags
	flagAppConfig string
	flagUser      string
	flagAPI       string
	flagFPS       int
	flagSeed      int64
	flagVerbose   bool

	appCfg config.AppConfig
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "petarcade",
	Short: "Pet Arcade - minigames that earn your pet gold",
	Long: `Pet Arcade hosts the pet's minigames: falling blocks, snake and dodge.
Every finished session is reported to the result service, which enforces
the daily play quota and credits the earned gold to your balance.

Available commands:
  list     - Show all minigames
  play     - Play a minigame directly
  menu     - Interactive minigame picker
  serve    - Host the arcade over SSH
  api      - Run the HTTP result service
  scores   - View high scores
  replay   - Verify a recorded run

Examples:
  petarcade list
  petarcade play snake
  petarcade play blocks --preset hard --record run.yaml
  petarcade menu --user alice
  petarcade api --listen :8080
  petarcade play dodge --api http://localhost:8080`,
	SilenceUsage:      true,
	PersistentPreRunE: loadApp,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAppConfig, "config", "", "Path to the application config YAML")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "Player id (overrides user_id)")
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", "", "Result service URL (overrides api_url)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(replayCmd)
}

// loadApp resolves the layered config and builds the process logger.
func loadApp(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadApp(flagAppConfig)
	if err != nil {
		return err
	}
	if flagUser != "" {
		cfg.UserID = flagUser
	}
	if flagAPI != "" {
		cfg.APIURL = flagAPI
	}
	appCfg = cfg

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "petarcade",
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return nil
}
