// Package main is the entry point for the taskflow CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"taskflow/internal/backend/httpapi"
	"taskflow/internal/cli"
	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newEnv)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

// newEnv wires the HTTP backend and the configured session store.
func newEnv(ctx context.Context, cfg *config.Config, logger *log.Logger) (*commands.Env, error) {
	env := &commands.Env{
		Service: httpapi.New(cfg, logger),
		Log:     logger,
		In:      os.Stdin,
	}

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		store, err := session.NewRedisStoreFromURL(cfg.Session.RedisURL, cfg.Session.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		env.Store = store
		env.Closer = store
	default:
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		env.Store = session.NewFileStore(cfg.SessionPath())
	}
	return env, nil
}
