// Package snapshot serializes the complete tracked state to a single
// versioned JSON document used for persistence, export and import.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"protrack/internal/tracker"
)

// Version tags the snapshot schema.
const Version = "1.0.0"

type Stats struct {
	TotalProjects  int `json:"totalProjects"`
	ActiveTasks    int `json:"activeTasks"`
	CompletedTasks int `json:"completedTasks"`
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Status    string `json:"status"`
	Tasks     int    `json:"tasks"`
	Completed int    `json:"completed"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ProjectID string `json:"projectId"`
	Priority  string `json:"priority"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Snapshot is the persisted document. Absent fields default on decode,
// so a first run and a corrupted blob produce the same clean state.
type Snapshot struct {
	Stats          Stats          `json:"stats"`
	Projects       []Project      `json:"projects"`
	Tasks          []Task         `json:"tasks"`
	IsTimerRunning bool           `json:"isTimerRunning"`
	TimerSeconds   int            `json:"timerSeconds"`
	IsDarkMode     bool           `json:"isDarkMode"`
	PomodoroMode   bool           `json:"pomodoroMode"`
	PomodoroPhase  string         `json:"pomodoroPhase"`
	PomodoroCount  int            `json:"pomodoroCount"`
	ActiveTaskID   string         `json:"activeTaskId,omitempty"`
	TaskTimers     map[string]int `json:"taskTimers"`
	LastUpdated    string         `json:"lastUpdated,omitempty"`
	Version        string         `json:"version"`
}

// FormatError reports an import blob that does not parse as a
// snapshot. It is the only error the codec surfaces to the UI.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid snapshot format: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Default returns the first-run snapshot.
func Default() Snapshot {
	return Snapshot{
		PomodoroPhase: string(tracker.PhaseWork),
		TaskTimers:    map[string]int{},
		Version:       Version,
	}
}

// Decode parses a snapshot blob, applying the defaulting rules for
// absent fields. Malformed bytes yield a *FormatError and no partial
// result.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, &FormatError{Err: err}
	}
	s.applyDefaults()
	return s, nil
}

// Encode renders the snapshot. Pretty output is used for export files.
func Encode(s Snapshot, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(s, "", "  ")
	}
	return json.Marshal(s)
}

func (s *Snapshot) applyDefaults() {
	switch tracker.Phase(s.PomodoroPhase) {
	case tracker.PhaseWork, tracker.PhaseShortBreak, tracker.PhaseLongBreak:
	default:
		s.PomodoroPhase = string(tracker.PhaseWork)
	}
	if s.TaskTimers == nil {
		s.TaskTimers = map[string]int{}
	}
	if s.Version == "" {
		s.Version = Version
	}
}

// FromState converts live tracker state into its persisted form.
func FromState(st tracker.State) Snapshot {
	s := Snapshot{
		Stats: Stats{
			TotalProjects:  st.Stats.TotalProjects,
			ActiveTasks:    st.Stats.ActiveTasks,
			CompletedTasks: st.Stats.CompletedTasks,
		},
		IsTimerRunning: st.Stopwatch.Running,
		TimerSeconds:   st.Stopwatch.SessionSeconds,
		IsDarkMode:     st.DarkMode,
		PomodoroMode:   st.Pomodoro.Enabled,
		PomodoroPhase:  string(st.Pomodoro.Phase),
		PomodoroCount:  st.Pomodoro.Count,
		ActiveTaskID:   st.Stopwatch.ActiveTaskID,
		TaskTimers:     map[string]int{},
		Version:        Version,
	}
	for id, secs := range st.Stopwatch.TaskSeconds {
		s.TaskTimers[id] = secs
	}
	for _, p := range st.Projects {
		s.Projects = append(s.Projects, Project{
			ID:        p.ID,
			Name:      p.Name,
			Color:     p.Color,
			Status:    string(p.Status),
			Tasks:     p.TaskCount,
			Completed: p.DoneCount,
			CreatedAt: formatTime(p.CreatedAt),
		})
	}
	for _, t := range st.Tasks {
		s.Tasks = append(s.Tasks, Task{
			ID:        t.ID,
			Title:     t.Title,
			ProjectID: t.ProjectID,
			Priority:  string(t.Priority),
			Status:    string(t.Status),
			CreatedAt: formatTime(t.CreatedAt),
		})
	}
	return s
}

// ToState converts a decoded snapshot back into tracker state. Counter
// fields are carried over but the tracker reconciles them on load, so
// a hand-edited blob cannot introduce drift.
func (s Snapshot) ToState() tracker.State {
	st := tracker.State{
		Stats: tracker.Stats{
			TotalProjects:  s.Stats.TotalProjects,
			ActiveTasks:    s.Stats.ActiveTasks,
			CompletedTasks: s.Stats.CompletedTasks,
		},
		Stopwatch: tracker.StopwatchState{
			Running:        s.IsTimerRunning,
			SessionSeconds: s.TimerSeconds,
			ActiveTaskID:   s.ActiveTaskID,
			TaskSeconds:    map[string]int{},
		},
		Pomodoro: tracker.PomodoroState{
			Enabled: s.PomodoroMode,
			Phase:   tracker.Phase(s.PomodoroPhase),
			Count:   s.PomodoroCount,
		},
		DarkMode: s.IsDarkMode,
	}
	if st.Pomodoro.Phase == "" {
		st.Pomodoro.Phase = tracker.PhaseWork
	}
	for id, secs := range s.TaskTimers {
		st.Stopwatch.TaskSeconds[id] = secs
	}
	for _, p := range s.Projects {
		st.Projects = append(st.Projects, tracker.Project{
			ID:        p.ID,
			Name:      p.Name,
			Color:     p.Color,
			Status:    tracker.ProjectStatus(p.Status),
			TaskCount: p.Tasks,
			DoneCount: p.Completed,
			CreatedAt: parseTime(p.CreatedAt),
		})
	}
	for _, t := range s.Tasks {
		st.Tasks = append(st.Tasks, tracker.Task{
			ID:        t.ID,
			Title:     t.Title,
			ProjectID: t.ProjectID,
			Priority:  tracker.Priority(t.Priority),
			Status:    tracker.TaskStatus(t.Status),
			CreatedAt: parseTime(t.CreatedAt),
		})
	}
	return st
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
