package tracker

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ledger mutations. Empty or whitespace-only input is a silent no-op
// rather than an error: the UI is expected to pre-validate, and the
// ledger stays total for malformed requests.

// AddProject creates a project, cycling the fixed color palette by the
// current project count. Returns nil when the trimmed name is empty.
func (t *Tracker) AddProject(name string) *Project {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	p := Project{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     palette[len(t.state.Projects)%len(palette)],
		Status:    ProjectActive,
		CreatedAt: t.now().UTC().Truncate(time.Second),
	}
	t.state.Projects = append(t.state.Projects, p)
	t.reconcile()
	t.publish()

	out := t.state.Projects[len(t.state.Projects)-1]
	return &out
}

// DeleteImpact describes what a project deletion would cascade to, so
// a caller can ask for confirmation before committing.
type DeleteImpact struct {
	TaskCount      int
	ActiveTasks    int
	CompletedTasks int
}

// PreviewDeleteProject reports the tasks a DeleteProject would remove.
// The second return is false when the project does not exist.
func (t *Tracker) PreviewDeleteProject(projectID string) (DeleteImpact, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.findProject(projectID) == nil {
		return DeleteImpact{}, false
	}
	var impact DeleteImpact
	for _, task := range t.state.Tasks {
		if task.ProjectID != projectID {
			continue
		}
		impact.TaskCount++
		if task.Status == TaskCompleted {
			impact.CompletedTasks++
		} else {
			impact.ActiveTasks++
		}
	}
	return impact, true
}

// DeleteProject removes the project and every task referencing it. The
// cascaded tasks take their accumulated timers with them, and the
// active-task reference is cleared if it pointed into the cascade.
func (t *Tracker) DeleteProject(projectID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	for i := range t.state.Projects {
		if t.state.Projects[i].ID == projectID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	t.state.Projects = append(t.state.Projects[:idx], t.state.Projects[idx+1:]...)

	kept := t.state.Tasks[:0]
	for _, task := range t.state.Tasks {
		if task.ProjectID == projectID {
			delete(t.state.Stopwatch.TaskSeconds, task.ID)
			continue
		}
		kept = append(kept, task)
	}
	t.state.Tasks = kept

	t.reconcile()
	t.publish()
	return true
}

// ToggleProjectCompletion flips a project between active and completed.
// Task counters are untouched.
func (t *Tracker) ToggleProjectCompletion(projectID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.findProject(projectID)
	if p == nil {
		return false
	}
	if p.Status == ProjectCompleted {
		p.Status = ProjectActive
	} else {
		p.Status = ProjectCompleted
	}
	t.publish()
	return true
}

// AddTask creates a task under the given project, falling back to the
// first project and then to the General bucket (empty project ID).
// Priority is drawn uniformly at random from low/medium/high.
func (t *Tracker) AddTask(title, projectID string) *Task {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	target := ""
	if t.findProject(projectID) != nil {
		target = projectID
	} else if len(t.state.Projects) > 0 {
		target = t.state.Projects[0].ID
	}

	priorities := []Priority{PriorityLow, PriorityMedium, PriorityHigh}
	task := Task{
		ID:        uuid.NewString(),
		Title:     title,
		ProjectID: target,
		Priority:  priorities[t.rng.Intn(len(priorities))],
		Status:    TaskTodo,
		CreatedAt: t.now().UTC().Truncate(time.Second),
	}
	t.state.Tasks = append(t.state.Tasks, task)
	t.reconcile()
	t.publish()

	out := t.state.Tasks[len(t.state.Tasks)-1]
	return &out
}

// CompleteTask marks a task completed. Completing an already completed
// task is a no-op.
func (t *Tracker) CompleteTask(taskID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	task := t.findTask(taskID)
	if task == nil || task.Status == TaskCompleted {
		return false
	}
	task.Status = TaskCompleted
	t.reconcile()
	t.publish()
	return true
}

// DeleteTask removes a task along with its accumulated timer, stopping
// the stopwatch if the task was active.
func (t *Tracker) DeleteTask(taskID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := -1
	for i := range t.state.Tasks {
		if t.state.Tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	t.state.Tasks = append(t.state.Tasks[:idx], t.state.Tasks[idx+1:]...)
	delete(t.state.Stopwatch.TaskSeconds, taskID)

	// reconcile clears the active reference and stops the session if
	// the deleted task was being tracked.
	t.reconcile()
	t.publish()
	return true
}

// Projects returns a copy of the project collection.
func (t *Tracker) Projects() []Project {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Project(nil), t.state.Projects...)
}

// Tasks returns a copy of the task collection.
func (t *Tracker) Tasks() []Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Task(nil), t.state.Tasks...)
}

// Project looks up a single project by ID.
func (t *Tracker) Project(id string) (Project, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p := t.findProject(id); p != nil {
		return *p, true
	}
	return Project{}, false
}

// Task looks up a single task by ID.
func (t *Tracker) Task(id string) (Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if task := t.findTask(id); task != nil {
		return *task, true
	}
	return Task{}, false
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Stats
}

// ProjectName resolves a task's project reference for display. The
// empty ID maps to the General bucket.
func (t *Tracker) ProjectName(projectID string) string {
	if projectID == "" {
		return GeneralBucket
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if p := t.findProject(projectID); p != nil {
		return p.Name
	}
	return GeneralBucket
}

func (t *Tracker) findProject(id string) *Project {
	if id == "" {
		return nil
	}
	for i := range t.state.Projects {
		if t.state.Projects[i].ID == id {
			return &t.state.Projects[i]
		}
	}
	return nil
}

func (t *Tracker) findTask(id string) *Task {
	if id == "" {
		return nil
	}
	for i := range t.state.Tasks {
		if t.state.Tasks[i].ID == id {
			return &t.state.Tasks[i]
		}
	}
	return nil
}
