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

type tasksModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTitle   *string
	formProject *string
}

func newTasksModel(tr *tracker.Tracker) tasksModel {
	title, project := "", ""
	return tasksModel{
		tracker:     tr,
		formTitle:   &title,
		formProject: &project,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	tasks := m.tracker.Tasks()
	if m.cursor >= len(tasks) {
		m.cursor = max(0, len(tasks)-1)
	}

	switch {
	case key.Matches(msgKey, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msgKey, keys.Down):
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}
	case key.Matches(msgKey, keys.New):
		return m.showNewTaskForm()
	case key.Matches(msgKey, keys.Start), key.Matches(msgKey, keys.Enter):
		if len(tasks) == 0 {
			return m, nil
		}
		task := tasks[m.cursor]
		if m.tracker.Stopwatch().ActiveTaskID == task.ID {
			m.tracker.StopTask(task.ID)
			return m, statusCmd("Stopped: " + task.Title)
		}
		m.tracker.StartTask(task.ID)
		return m, statusCmd("Tracking: " + task.Title)
	case key.Matches(msgKey, keys.Complete):
		if len(tasks) > 0 {
			task := tasks[m.cursor]
			if m.tracker.CompleteTask(task.ID) {
				return m, statusCmd("Completed: " + task.Title)
			}
		}
	case key.Matches(msgKey, keys.Delete):
		if len(tasks) > 0 {
			task := tasks[m.cursor]
			m.tracker.DeleteTask(task.ID)
			return m, statusCmd("Deleted: " + task.Title)
		}
	}
	return m, nil
}

func (m tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formProject = ""

	options := []huh.Option[string]{huh.NewOption(tracker.GeneralBucket, "")}
	for _, p := range m.tracker.Projects() {
		options = append(options, huh.NewOption(p.Name, p.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Title").Value(m.formTitle),
			huh.NewSelect[string]().Title("Project").Options(options...).Value(m.formProject),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
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
		if task := m.tracker.AddTask(*m.formTitle, *m.formProject); task != nil {
			return m, statusCmd("Created: " + task.Title)
		}
		return m, nil
	}

	return m, cmd
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Tasks")
	tasks := m.tracker.Tasks()

	if len(tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	sw := m.tracker.Stopwatch()

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-28s %-16s %-8s %-12s %s", "", "Title", "Project", "Prio", "Status", "Tracked")))

	for i, task := range tasks {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		marker := " "
		if task.ID == sw.ActiveTaskID {
			marker = successStyle.Render("●")
		} else if task.Status == tracker.TaskCompleted {
			marker = mutedStyle.Render("✓")
		}

		row := style.Render(fmt.Sprintf("%s%-28s %-16s %-8s %-12s", cursor,
			truncate(task.Title, 28),
			truncate(m.tracker.ProjectName(task.ProjectID), 16),
			task.Priority,
			task.Status,
		)) + " " + formatSeconds(sw.TaskSeconds[task.ID])
		rows = append(rows, marker+row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  s/enter: start/stop  c: complete  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
