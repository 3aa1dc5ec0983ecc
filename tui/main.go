// Package tui is a terminal list renderer for reply presets: one text input
// per field, edits flowing into a preset.Store as the user types.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"reply-presets/preset"
)

// Run shows the preset editor until the user quits. store stays open; the
// caller closes it, which drops an edit still waiting for its settle delay.
func Run(ctx context.Context, store *preset.Store) error {
	mdl := newModel(store, store.Fields(), nil)
	program := tea.NewProgram(mdl, tea.WithAltScreen(), tea.WithContext(ctx))

	// Subscribe before the initial load so a change landing in between is
	// not lost. Only the newest snapshot is kept; the backend callback never
	// waits on the program.
	updates := make(chan preset.Set, 1)
	done := make(chan struct{})
	defer close(done)
	unsubscribe := store.Subscribe(func(set preset.Set) {
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- set:
		default:
		}
	})
	defer unsubscribe()

	set, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading presets: %w", err)
	}
	mdl.fill(set)

	go func() {
		for {
			select {
			case <-done:
				return
			case set := <-updates:
				program.Send(presetsMsg(set))
			}
		}
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
