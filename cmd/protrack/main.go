package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"protrack/internal/snapshot"
	"protrack/internal/tracker"
	"protrack/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	statePath, err := snapshot.DefaultPath()
	if err != nil {
		return fmt.Errorf("resolve state path: %w", err)
	}

	// The TUI owns stdout, so logs go to a file next to the snapshot.
	logger, err := newLogger(filepath.Join(filepath.Dir(statePath), "protrack.log"))
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Sync()

	files := snapshot.NewStore(statePath, logger)

	tr := tracker.New(files.Load().ToState(),
		tracker.WithLogger(logger),
		tracker.WithNotifier(tracker.NotifierFunc(func(tracker.Phase) {
			// Terminal bell on phase completion.
			fmt.Print("\a")
		})),
	)
	clock := tracker.NewClock()

	// Persist every settled state off the hot path. A failed write is
	// logged and the next change retries with fresher state anyway.
	go func() {
		for st := range tr.Changes() {
			if err := files.Save(snapshot.FromState(st)); err != nil {
				logger.Error("snapshot save failed", zap.Error(err))
			}
		}
	}()

	p := tea.NewProgram(tui.NewApp(tr, clock, files), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	// One last synchronous save so nothing from the final tick is lost.
	if err := files.Save(snapshot.FromState(tr.State())); err != nil {
		logger.Error("final snapshot save failed", zap.Error(err))
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func newLogger(path string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
