package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"protrack/internal/snapshot"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewTasks
	viewProjects
	viewPomodoro
	viewSettings
)

var viewNames = []string{"Dashboard", "Tasks", "Projects", "Pomodoro", "Settings"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type importDoneMsg struct {
	snap snapshot.Snapshot
}

// --- Helpers ---

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func formatSeconds(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatClock renders a countdown as MM:SS.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatHours(secs int) string {
	return fmt.Sprintf("%.1fh", float64(secs)/3600)
}
