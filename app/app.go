// Package app opens the configured backend and builds the preset store shared
// by the server and the terminal editor.
package app

import (
	"fmt"

	"reply-presets/config"
	"reply-presets/logging"
	"reply-presets/preset"
	"reply-presets/store/bolt"
	"reply-presets/store/file"
	"reply-presets/store/memory"
)

var applog = logging.For("app")

// App owns a backend and the store editing it.
type App struct {
	Config *config.Config
	Store  *preset.Store

	closeBackend func() error
}

// Open opens the backend named in cfg and returns a ready store.
func Open(cfg *config.Config) (*App, error) {
	var (
		backend      preset.Backend
		closeBackend = func() error { return nil }
	)

	switch cfg.Store.Backend {
	case config.BackendFile:
		b, err := file.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("opening preset file: %w", err)
		}
		backend, closeBackend = b, b.Close
	case config.BackendBolt:
		b, err := bolt.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("opening preset db: %w", err)
		}
		backend, closeBackend = b, b.Close
	case config.BackendMemory:
		backend = memory.New()
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Store.Backend)
	}

	applog.Info("preset backend ready",
		"backend", cfg.Store.Backend, "path", cfg.Store.Path, "key", cfg.Store.Key)

	return &App{
		Config:       cfg,
		Store:        preset.NewStore(backend, cfg.StoreOptions()),
		closeBackend: closeBackend,
	}, nil
}

// Close drops any edit still settling, then closes the backend.
func (a *App) Close() error {
	a.Store.Close()
	return a.closeBackend()
}
