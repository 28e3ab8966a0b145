package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"protrack/internal/tracker"
)

type dashboardModel struct {
	tracker *tracker.Tracker
	width   int
	height  int
}

func newDashboardModel(tr *tracker.Tracker) dashboardModel {
	return dashboardModel{tracker: tr}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	statsPanel := d.renderStatsPanel(contentWidth)
	chartPanel := d.renderChartPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, statsPanel, chartPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	sw := d.tracker.Stopwatch()
	timeStr := formatSeconds(sw.SessionSeconds)

	if sw.Running {
		timeDisplay := timerRunningStyle.Width(w - 6).Render(timeStr)
		indicator := successStyle.Render("●  RUNNING")
		if pm := d.tracker.Pomodoro(); pm.Enabled {
			indicator += mutedStyle.Render("  ·  ") + phaseStyle(pm.Phase).Render(phaseLabel(pm.Phase))
		}

		taskLine := mutedStyle.Render("No active task")
		if sw.ActiveTaskID != "" {
			if task, ok := d.tracker.Task(sw.ActiveTaskID); ok {
				taskLine = highlightStyle.Render(task.Title) +
					mutedStyle.Render(" · "+d.tracker.ProjectName(task.ProjectID))
			}
		}

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			taskLine,
		)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay := timerStyle.Width(w - 6).Render(timeStr)
	indicator := mutedStyle.Render("■  PAUSED")
	hint := mutedStyle.Render("Press space to start the session")

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		hint,
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderStatsPanel(w int) string {
	stats := d.tracker.Stats()

	card := func(label string, value int, style lipgloss.Style) string {
		return lipgloss.JoinVertical(lipgloss.Center,
			style.Bold(true).Render(fmt.Sprintf("%d", value)),
			mutedStyle.Render(label),
		)
	}

	cardW := (w - 8) / 3
	if cardW < 12 {
		cardW = 12
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(cardW).Render(card("Projects", stats.TotalProjects, highlightStyle)),
		panelStyle.Width(cardW).Render(card("Active Tasks", stats.ActiveTasks, warningStyle)),
		panelStyle.Width(cardW).Render(card("Completed", stats.CompletedTasks, successStyle)),
	)
	return cards
}

// renderChartPanel shows the most-tracked tasks as a bar chart, hours
// on the Y axis.
func (d dashboardModel) renderChartPanel(w int) string {
	title := titleStyle.Render("Top Tracked Tasks")

	sw := d.tracker.Stopwatch()
	tasks := d.tracker.Tasks()

	type tracked struct {
		task tracker.Task
		secs int
	}
	var top []tracked
	for _, task := range tasks {
		if secs := sw.TaskSeconds[task.ID]; secs > 0 {
			top = append(top, tracked{task: task, secs: secs})
		}
	}
	if len(top) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No tracked time yet. Start a task from the Tasks view."),
		)
		return panelStyle.Width(w).Render(content)
	}

	sort.Slice(top, func(i, j int) bool { return top[i].secs > top[j].secs })
	if len(top) > 5 {
		top = top[:5]
	}

	chartWidth := w - 6
	if chartWidth < 20 {
		chartWidth = 20
	}
	chart := barchart.New(chartWidth, 10)

	var bars []barchart.BarData
	for _, t := range top {
		color := colorPrimary
		if p, ok := d.tracker.Project(t.task.ProjectID); ok {
			color = lipgloss.Color(p.Color)
		}
		label := t.task.Title
		if len(label) > 10 {
			label = label[:10]
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  t.task.Title,
				Value: float64(t.secs) / 3600.0,
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		})
	}
	chart.PushAll(bars)
	chart.Draw()

	var legend []string
	for _, t := range top {
		legend = append(legend, fmt.Sprintf("%s %s", t.task.Title, mutedStyle.Render(formatHours(t.secs))))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		chart.View(),
		"",
		"  "+strings.Join(legend, "  "),
	)
	return panelStyle.Width(w).Render(content)
}

func phaseLabel(p tracker.Phase) string {
	switch p {
	case tracker.PhaseShortBreak:
		return "SHORT BREAK"
	case tracker.PhaseLongBreak:
		return "LONG BREAK"
	default:
		return "WORK"
	}
}

func phaseStyle(p tracker.Phase) lipgloss.Style {
	switch p {
	case tracker.PhaseShortBreak:
		return successStyle
	case tracker.PhaseLongBreak:
		return highlightStyle
	default:
		return accentStyle
	}
}
