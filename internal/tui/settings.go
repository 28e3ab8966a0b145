package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"protrack/internal/export"
	"protrack/internal/snapshot"
	"protrack/internal/tracker"
)

type settingsAction int

const (
	actionDarkMode settingsAction = iota
	actionExportBackup
	actionImportBackup
	actionExportCSV
	actionReset
)

var actionNames = []string{
	"Dark mode",
	"Export backup (JSON)",
	"Import backup",
	"Export tracked time (CSV)",
	"Reset all data",
}

type settingsModel struct {
	tracker *tracker.Tracker
	files   *snapshot.Store
	width   int
	height  int

	cursor int

	formActive bool
	form       *huh.Form
	importPath *string

	confirming bool // reset confirmation
}

func newSettingsModel(tr *tracker.Tracker, files *snapshot.Store) settingsModel {
	path := ""
	return settingsModel{
		tracker:    tr,
		files:      files,
		importPath: &path,
	}
}

func (m *settingsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.confirming {
		switch {
		case key.Matches(msgKey, keys.Enter):
			m.confirming = false
			m.tracker.Reset()
			return m, statusCmd("All data reset")
		case key.Matches(msgKey, keys.Back):
			m.confirming = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msgKey, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msgKey, keys.Down):
		if m.cursor < len(actionNames)-1 {
			m.cursor++
		}
	case key.Matches(msgKey, keys.Enter):
		return m.runAction(settingsAction(m.cursor))
	}
	return m, nil
}

func (m settingsModel) runAction(action settingsAction) (settingsModel, tea.Cmd) {
	switch action {
	case actionDarkMode:
		if m.tracker.ToggleDarkMode() {
			return m, statusCmd("Dark mode on")
		}
		return m, statusCmd("Dark mode off")

	case actionExportBackup:
		return m, m.exportBackup()

	case actionImportBackup:
		return m.showImportForm()

	case actionExportCSV:
		return m, m.exportCSV()

	case actionReset:
		m.confirming = true
		return m, nil
	}
	return m, nil
}

func (m settingsModel) exportBackup() tea.Cmd {
	st := m.tracker.State()
	return func() tea.Msg {
		home, err := os.UserHomeDir()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		path, err := m.files.Export(snapshot.FromState(st), home)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func (m settingsModel) exportCSV() tea.Cmd {
	st := m.tracker.State()
	return func() tea.Msg {
		home, err := os.UserHomeDir()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		path := filepath.Join(home, fmt.Sprintf("protrack-export-%s.csv", time.Now().Format("2006-01-02")))
		if err := export.ToCSV(st, path); err != nil {
			return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func (m settingsModel) showImportForm() (settingsModel, tea.Cmd) {
	*m.importPath = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Backup file path").Value(m.importPath),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		path := strings.TrimSpace(*m.importPath)
		if path == "" {
			return m, nil
		}
		return m, m.importBackup(path)
	}

	return m, cmd
}

// importBackup is all-or-nothing: a malformed file reports an error and
// leaves the current state untouched.
func (m settingsModel) importBackup(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Import error: %v", err), isError: true}
		}
		snap, err := m.files.Import(data)
		if err != nil {
			var fe *snapshot.FormatError
			if errors.As(err, &fe) {
				return statusMsg{text: "Import error: not a valid backup file", isError: true}
			}
			return statusMsg{text: fmt.Sprintf("Import error: %v", err), isError: true}
		}
		return importDoneMsg{snap: snap}
	}
}

func (m settingsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Import Backup")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	if m.confirming {
		rows := []string{
			errorStyle.Bold(true).Render("Reset all data?"),
			"",
			mutedStyle.Render("  Every project, task and timer will be removed."),
			"",
			mutedStyle.Render("  enter: reset  esc: cancel"),
		}
		return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	title := titleStyle.Render("Settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, name := range actionNames {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		suffix := ""
		if settingsAction(i) == actionDarkMode {
			if m.tracker.DarkMode() {
				suffix = successStyle.Render("  on")
			} else {
				suffix = mutedStyle.Render("  off")
			}
		}
		rows = append(rows, style.Render(cursor+name)+suffix)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: run  ↑/↓: move"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
