package tracker

import "time"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Phase string

const (
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "shortBreak"
	PhaseLongBreak  Phase = "longBreak"
)

// Phase durations in seconds.
const (
	WorkSeconds       = 25 * 60
	ShortBreakSeconds = 5 * 60
	LongBreakSeconds  = 15 * 60

	// Work phases completed before a long break is inserted.
	SessionsPerCycle = 4
)

// GeneralBucket is the display name for tasks that belong to no project.
const GeneralBucket = "General"

// palette cycled by project count when creating projects.
var palette = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899"}

type Project struct {
	ID        string
	Name      string
	Color     string
	Status    ProjectStatus
	TaskCount int
	DoneCount int
	CreatedAt time.Time
}

// Task references its project by ID. An empty ProjectID means the task
// lives in the synthetic General bucket.
type Task struct {
	ID        string
	Title     string
	ProjectID string
	Priority  Priority
	Status    TaskStatus
	CreatedAt time.Time
}

// Stats are denormalized aggregates. They are recomputed from the
// project/task collections after every mutation and never adjusted
// piecemeal.
type Stats struct {
	TotalProjects  int
	ActiveTasks    int
	CompletedTasks int
}

type StopwatchState struct {
	Running        bool
	SessionSeconds int
	ActiveTaskID   string
	TaskSeconds    map[string]int
}

type PomodoroState struct {
	Enabled bool
	Phase   Phase
	Count   int
}

// State is the complete tracked state of one session.
type State struct {
	Projects  []Project
	Tasks     []Task
	Stats     Stats
	Stopwatch StopwatchState
	Pomodoro  PomodoroState
	DarkMode  bool
}

// NewState returns the default (first-run) state.
func NewState() State {
	return State{
		Stopwatch: StopwatchState{TaskSeconds: map[string]int{}},
		Pomodoro:  PomodoroState{Phase: PhaseWork},
	}
}

// Clone deep-copies the state so snapshots can be handed to other
// goroutines safely.
func (s State) Clone() State {
	out := s
	out.Projects = append([]Project(nil), s.Projects...)
	out.Tasks = append([]Task(nil), s.Tasks...)
	out.Stopwatch.TaskSeconds = make(map[string]int, len(s.Stopwatch.TaskSeconds))
	for id, secs := range s.Stopwatch.TaskSeconds {
		out.Stopwatch.TaskSeconds[id] = secs
	}
	return out
}

// PhaseDuration returns the fixed length of a pomodoro phase in seconds.
func PhaseDuration(p Phase) int {
	switch p {
	case PhaseShortBreak:
		return ShortBreakSeconds
	case PhaseLongBreak:
		return LongBreakSeconds
	default:
		return WorkSeconds
	}
}
