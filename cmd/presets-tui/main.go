package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"reply-presets/app"
	"reply-presets/config"
	"reply-presets/logging"
	"reply-presets/tui"
)

func main() {
	configPath := flag.String("config", os.Getenv("PRESET_CONFIG"), "path to a .toml or .yaml config file")
	logPath := flag.String("log", filepath.Join(os.TempDir(), "reply-presets-tui.log"), "log file")
	flag.Parse()

	if err := run(*configPath, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, logPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal; logs go to a file.
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logging.InitWriter(logFile, cfg.Log.Level, cfg.Log.Format)

	a, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return tui.Run(ctx, a.Store)
}
