package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"protrack/internal/tracker"
)

type pomodoroModel struct {
	tracker *tracker.Tracker
	width   int
	height  int
}

func newPomodoroModel(tr *tracker.Tracker) pomodoroModel {
	return pomodoroModel{tracker: tr}
}

func (m *pomodoroModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msgKey, keys.Enter):
		if m.tracker.TogglePomodoro() {
			return m, statusCmd("Pomodoro mode on")
		}
		return m, statusCmd("Pomodoro mode off")
	}
	return m, nil
}

func (m pomodoroModel) view() string {
	w := m.width - 4

	title := titleStyle.Render("Pomodoro")
	pm := m.tracker.Pomodoro()
	sw := m.tracker.Stopwatch()

	if !pm.Enabled {
		content := lipgloss.JoinVertical(lipgloss.Center,
			title,
			"",
			timerStyle.Width(w-6).Render(formatClock(tracker.WorkSeconds)),
			mutedStyle.Render("Pomodoro mode is off"),
			"",
			mutedStyle.Render("enter/p: enable  space: start session"),
		)
		return panelStyle.Width(w).Render(content)
	}

	remaining := m.tracker.PhaseRemaining()
	style := phaseStyle(pm.Phase)
	timeDisplay := style.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatClock(remaining))
	label := style.Bold(true).Render(phaseLabel(pm.Phase))

	indicator := mutedStyle.Render("paused, press space")
	if sw.Running {
		indicator = m.renderBar(w - 12)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		label,
		"",
		indicator,
		"",
		m.renderCycle(),
		"",
		mutedStyle.Render("space: start/pause  enter/p: disable"),
	)
	return panelStyle.Width(w).Render(content)
}

// renderBar draws phase progress, clamped to the bar width even when
// the underlying fraction overruns.
func (m pomodoroModel) renderBar(w int) string {
	if w < 10 {
		w = 10
	}
	frac := m.tracker.PhaseProgress()
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}
	filled := int(frac * float64(w))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", w-filled)
	return phaseStyle(m.tracker.Pomodoro().Phase).Render(bar)
}

// renderCycle shows completed work phases in the current cycle as dots.
func (m pomodoroModel) renderCycle() string {
	pm := m.tracker.Pomodoro()

	var parts []string
	for i := 0; i < tracker.SessionsPerCycle; i++ {
		if i < pm.Count {
			parts = append(parts, successStyle.Render("●"))
		} else if i == pm.Count && pm.Phase == tracker.PhaseWork {
			parts = append(parts, accentStyle.Render("◐"))
		} else {
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d", pm.Count, tracker.SessionsPerCycle))
	return strings.Join(parts, " ") + counter
}
