package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pet-arcade/internal/api"
	"github.com/vovakirdan/pet-arcade/internal/backend"
)

var flagListen string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the HTTP result service",
	Long: `Serve the minigame endpoints the games report to:

  POST /minigames/{gameId}/start   - check the quota and open a session
  POST /minigames/{gameId}/result  - record a finished session (Bearer token)
  GET  /users/{userId}/balance     - read a gold balance

gameId is 1 (blocks), 2 (dodge) or 3 (snake). The user is passed in the
user-id header. Results are stored in the configured database.

Examples:
  petarcade api
  petarcade api --listen :9090
  PETARCADE_DB_DRIVER=postgres PETARCADE_DB_DSN=postgres://... petarcade api`,
	Args: cobra.NoArgs,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&flagListen, "listen", "", "HTTP address (overrides listen.api)")
}

func runAPI(_ *cobra.Command, _ []string) error {
	if appCfg.Backend.TokenSecret == "" {
		return errors.New("backend.token_secret must be set")
	}
	if appCfg.Backend.TokenSecret == "change-me" {
		logger.Warn("using the default token secret; set PETARCADE_BACKEND_TOKEN_SECRET")
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}
	defer store.Close()

	svc := backend.New(store, appCfg.Backend, backend.WithLogger(logger))
	tokens := api.NewTokenIssuer(appCfg.Backend.TokenSecret, appCfg.Backend.TokenTTL)
	server := api.NewServer(svc, tokens, logger.WithPrefix("petarcade-api"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := firstNonEmpty(flagListen, appCfg.Listen.API, ":8080")
	logger.Info("result service listening",
		"address", addr,
		"driver", store.Dialect().Name(),
		"daily_plays", appCfg.Backend.DailyPlays,
		"timezone", appCfg.Backend.Location().String(),
	)
	return server.ListenAndServe(ctx, addr)
}
