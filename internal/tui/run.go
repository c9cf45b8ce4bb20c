package tui

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/geoscope/internal/repository"
	"github.com/Veraticus/geoscope/internal/tui/themes"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

// Config holds the configuration for running the dashboard.
type Config struct {
	Repo  *repository.Repository
	Store *viewstate.Store
	Theme themes.Theme
}

// Run starts the dashboard TUI and blocks until the user quits.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Repo == nil {
		return fmt.Errorf("repository is required")
	}
	if cfg.Store == nil {
		cfg.Store = viewstate.NewStore()
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Set up terminal cleanup on any exit
	cleanupTerminal := func() {
		// Restore terminal to normal state
		// Ignore errors as this is best-effort cleanup
		_, _ = os.Stdout.Write([]byte("\033[?1049l")) // Exit alternate screen
		_, _ = os.Stdout.Write([]byte("\033[?25h"))   // Show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))      // Reset colors
	}
	defer cleanupTerminal()

	p := tea.NewProgram(newModel(cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	go func() {
		select {
		case <-sigChan:
			cleanupTerminal()
			cancel()
		case <-ctx.Done():
		}
	}()

	// Redraw on store mutations that arrive outside the key handlers.
	events := cfg.Store.Subscribe()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-events:
				p.Send(stateChangedMsg{})
			}
		}
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
