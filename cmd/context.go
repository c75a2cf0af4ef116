package cmd

import (
	"context"
	"fmt"

	"github.com/FredrikJonassonItsb/talkbridge/internal/config"
	"github.com/FredrikJonassonItsb/talkbridge/internal/server"
	"github.com/FredrikJonassonItsb/talkbridge/internal/storage"
)

// loadConfig builds the runtime configuration from TALKBRIDGE_* environment
// variables, an optional --server override, and the server URL persisted by a
// previous login.
func loadConfig(serverURL string, store storage.Store) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if cfg.ServerURL == "" {
		if v, ok, err := store.Get(config.KeyServerURL); err == nil && ok {
			cfg.ServerURL = v
		}
	}
	cfg.Normalize()
	return cfg, nil
}

// newCLIServerContext wires a server context for one-shot CLI commands,
// backed by the persistent file store.
func newCLIServerContext(ctx context.Context, serverURL string) (*server.ServerContext, error) {
	store, err := storage.NewFileStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}
	cfg, err := loadConfig(serverURL, store)
	if err != nil {
		return nil, err
	}
	return server.NewServerContextWithStore(ctx, cfg, store, nil)
}
