package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pet-arcade/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arcade SSH server",
	Long: `Start an SSH server that lets users connect and play the minigames.

Each SSH login name is a player id: quotas and gold balances follow it.
Results go to the local database, or to --api when one is configured.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise uses listen.host_key from the config (auto-generated)

Examples:
  petarcade serve                     # Listen on listen.ssh (default :2222)
  petarcade serve --ssh :2323
  petarcade serve --api http://results:8080

Users can connect with:
  ssh alice@localhost -p 2222`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (overrides listen.ssh)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (overrides listen.host_key)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) error {
	svc, store, err := openService(logger)
	if err != nil {
		return err
	}

	deps := tui.Deps{Service: svc, Logger: logger.WithPrefix("petarcade-ssh")}
	if store != nil {
		defer store.Close()
		deps.Scores = store
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.TickRate = flagFPS
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.Address = firstNonEmpty(flagSSHAddr, appCfg.Listen.SSH, cfg.Address)
	cfg.HostKeyPath = firstNonEmpty(flagHostKey, appCfg.Listen.HostKey)

	server, err := tui.NewSSHServer(cfg, deps)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving the arcade on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")
	return server.ListenAndServe(ctx)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
