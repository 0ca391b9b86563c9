package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/pet-arcade/internal/api"
	"github.com/vovakirdan/pet-arcade/internal/backend"
	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/session"
	"github.com/vovakirdan/pet-arcade/internal/storage"
)

// openStore opens the configured database.
func openStore() (*storage.Store, error) {
	db := appCfg.Database
	switch db.Driver {
	case "", "sqlite", "sqlite3":
		return storage.Open(db.DSN)
	default:
		return storage.OpenDriver(db.Driver, db.DSN)
	}
}

// openService returns the Service games report to: the remote API when one
// is configured, the local backend otherwise. The store is nil in the
// remote case.
func openService(l *log.Logger) (session.Service, *storage.Store, error) {
	if appCfg.APIURL != "" {
		l.Debug("using remote result service", "url", appCfg.APIURL)
		return api.NewClient(appCfg.APIURL, nil), nil, nil
	}

	store, err := openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("could not open database: %w", err)
	}
	svc := backend.New(store, appCfg.Backend, backend.WithLogger(l))
	return svc, store, nil
}

// runtimeConfig sizes games to the local terminal.
func runtimeConfig() core.RuntimeConfig {
	rc := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rc.ScreenW = w
		rc.ScreenH = h
	}
	rc.TickRate = flagFPS
	return rc
}

// seedFunc pins every session to --seed when it is set.
func seedFunc() func() int64 {
	if flagSeed == 0 {
		return nil
	}
	seed := flagSeed
	return func() int64 { return seed }
}

// fileLogger redirects logging to ~/.petarcade/petarcade.log while a
// full-screen program owns the terminal.
func fileLogger() (*log.Logger, io.Closer) {
	path := filepath.Join(filepath.Dir(appCfg.Database.DSN), "petarcade.log")
	if appCfg.Database.DSN == "" || !isSQLite() {
		home, err := os.UserHomeDir()
		if err != nil {
			return log.New(io.Discard), io.NopCloser(nil)
		}
		path = filepath.Join(home, ".petarcade", "petarcade.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return log.New(io.Discard), io.NopCloser(nil)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return log.New(io.Discard), io.NopCloser(nil)
	}
	l := log.NewWithOptions(f, log.Options{ReportTimestamp: true, Prefix: "petarcade"})
	l.SetLevel(logger.GetLevel())
	return l, f
}

func isSQLite() bool {
	switch appCfg.Database.Driver {
	case "", "sqlite", "sqlite3":
		return true
	}
	return false
}
