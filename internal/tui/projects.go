package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"protrack/internal/tracker"
)

type projectsModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	cursor int

	formActive bool
	form       *huh.Form
	formName   *string

	// Delete confirmation state
	confirming bool
	deleteID   string
	deleteName string
	impact     tracker.DeleteImpact
}

func newProjectsModel(tr *tracker.Tracker) projectsModel {
	name := ""
	return projectsModel{
		tracker:  tr,
		formName: &name,
	}
}

func (m *projectsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.confirming {
		return m.updateConfirm(msgKey)
	}

	projects := m.tracker.Projects()
	if m.cursor >= len(projects) {
		m.cursor = max(0, len(projects)-1)
	}

	switch {
	case key.Matches(msgKey, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msgKey, keys.Down):
		if m.cursor < len(projects)-1 {
			m.cursor++
		}
	case key.Matches(msgKey, keys.New):
		return m.showNewProjectForm()
	case key.Matches(msgKey, keys.Complete), key.Matches(msgKey, keys.Enter):
		if len(projects) > 0 {
			m.tracker.ToggleProjectCompletion(projects[m.cursor].ID)
		}
	case key.Matches(msgKey, keys.Delete):
		if len(projects) == 0 {
			return m, nil
		}
		p := projects[m.cursor]
		impact, ok := m.tracker.PreviewDeleteProject(p.ID)
		if !ok {
			return m, nil
		}
		if impact.TaskCount == 0 {
			// Nothing cascades, delete without ceremony.
			m.tracker.DeleteProject(p.ID)
			return m, statusCmd("Deleted: " + p.Name)
		}
		m.confirming = true
		m.deleteID = p.ID
		m.deleteName = p.Name
		m.impact = impact
	}
	return m, nil
}

func (m projectsModel) updateConfirm(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enter):
		m.confirming = false
		name := m.deleteName
		m.tracker.DeleteProject(m.deleteID)
		return m, statusCmd("Deleted: " + name)
	case key.Matches(msg, keys.Back):
		m.confirming = false
	}
	return m, nil
}

func (m projectsModel) showNewProjectForm() (projectsModel, tea.Cmd) {
	*m.formName = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(m.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
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
		if p := m.tracker.AddProject(*m.formName); p != nil {
			return m, statusCmd("Created: " + p.Name)
		}
		return m, nil
	}

	return m, cmd
}

func (m projectsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Project")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	if m.confirming {
		return m.renderConfirm(w)
	}

	title := titleStyle.Render("Projects")
	projects := m.tracker.Projects()

	if len(projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-26s %-12s %s", "", "Name", "Status", "Tasks")))

	for i, p := range projects {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		status := string(p.Status)
		if p.Status == tracker.ProjectCompleted {
			status = successStyle.Render(status)
		}
		row := style.Render(fmt.Sprintf("%s%s %-24s", cursor, colorDot, truncate(p.Name, 24))) +
			fmt.Sprintf(" %-12s %d/%d done", status, p.DoneCount, p.TaskCount)
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  c/enter: toggle complete  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m projectsModel) renderConfirm(w int) string {
	title := errorStyle.Bold(true).Render("Delete " + m.deleteName + "?")

	rows := []string{
		title,
		"",
		fmt.Sprintf("  %d task(s) will be deleted with it:", m.impact.TaskCount),
		fmt.Sprintf("    %s active", warningStyle.Render(fmt.Sprintf("%d", m.impact.ActiveTasks))),
		fmt.Sprintf("    %s completed", successStyle.Render(fmt.Sprintf("%d", m.impact.CompletedTasks))),
		"",
		mutedStyle.Render("  Their tracked time is removed as well."),
		"",
		mutedStyle.Render("  enter: delete  esc: cancel"),
	}

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
