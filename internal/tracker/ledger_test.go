package tracker

import (
	"math/rand"
	"testing"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	return New(NewState(), WithRand(rand.New(rand.NewSource(1))))
}

// ============================================================
// Projects
// ============================================================

func TestAddProject(t *testing.T) {
	tr := newTestTracker(t)

	p := tr.AddProject("Launch")
	if p == nil {
		t.Fatal("expected project")
	}
	if p.Name != "Launch" {
		t.Fatalf("unexpected name %q", p.Name)
	}
	if p.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if p.Status != ProjectActive {
		t.Fatalf("new project should be active, got %q", p.Status)
	}
	if p.TaskCount != 0 || p.DoneCount != 0 {
		t.Fatalf("new project should have 0/0 tasks, got %d/%d", p.TaskCount, p.DoneCount)
	}
	if got := tr.Stats().TotalProjects; got != 1 {
		t.Fatalf("totalProjects = %d, want 1", got)
	}
}

func TestAddProjectEmptyNameNoop(t *testing.T) {
	tr := newTestTracker(t)

	if p := tr.AddProject(""); p != nil {
		t.Fatal("empty name should be a no-op")
	}
	if p := tr.AddProject("   "); p != nil {
		t.Fatal("whitespace name should be a no-op")
	}
	if got := tr.Stats().TotalProjects; got != 0 {
		t.Fatalf("totalProjects = %d, want 0", got)
	}
}

func TestAddProjectTrimsName(t *testing.T) {
	tr := newTestTracker(t)
	p := tr.AddProject("  Deep Work  ")
	if p == nil || p.Name != "Deep Work" {
		t.Fatalf("expected trimmed name, got %+v", p)
	}
}

func TestProjectPaletteCycles(t *testing.T) {
	tr := newTestTracker(t)

	var colors []string
	for i := 0; i < 8; i++ {
		p := tr.AddProject(string(rune('A' + i)))
		colors = append(colors, p.Color)
	}
	for i, c := range colors {
		if want := palette[i%len(palette)]; c != want {
			t.Fatalf("project %d color = %s, want %s", i, c, want)
		}
	}
}

func TestToggleProjectCompletion(t *testing.T) {
	tr := newTestTracker(t)
	p := tr.AddProject("Ship")
	tr.AddTask("write", p.ID)

	if !tr.ToggleProjectCompletion(p.ID) {
		t.Fatal("toggle should succeed")
	}
	projects := tr.Projects()
	if projects[0].Status != ProjectCompleted {
		t.Fatalf("status = %q, want completed", projects[0].Status)
	}
	if projects[0].TaskCount != 1 {
		t.Fatal("toggling completion must not touch task counts")
	}

	tr.ToggleProjectCompletion(p.ID)
	if tr.Projects()[0].Status != ProjectActive {
		t.Fatal("second toggle should flip back to active")
	}
}

func TestToggleProjectCompletionUnknown(t *testing.T) {
	tr := newTestTracker(t)
	if tr.ToggleProjectCompletion("nope") {
		t.Fatal("unknown project should not toggle")
	}
}

// ============================================================
// Tasks
// ============================================================

func TestAddTaskToProject(t *testing.T) {
	tr := newTestTracker(t)
	p := tr.AddProject("Launch")

	task := tr.AddTask("Write spec", p.ID)
	if task == nil {
		t.Fatal("expected task")
	}
	if task.Status != TaskTodo {
		t.Fatalf("status = %q, want todo", task.Status)
	}
	if task.ProjectID != p.ID {
		t.Fatal("task should reference the project")
	}
	switch task.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		t.Fatalf("unexpected priority %q", task.Priority)
	}

	if got := tr.Projects()[0].TaskCount; got != 1 {
		t.Fatalf("project task count = %d, want 1", got)
	}
	if got := tr.Stats().ActiveTasks; got != 1 {
		t.Fatalf("activeTasks = %d, want 1", got)
	}
}

func TestAddTaskEmptyTitleNoop(t *testing.T) {
	tr := newTestTracker(t)
	if task := tr.AddTask("  ", ""); task != nil {
		t.Fatal("empty title should be a no-op")
	}
	if got := tr.Stats().ActiveTasks; got != 0 {
		t.Fatalf("activeTasks = %d, want 0", got)
	}
}

func TestAddTaskFallsBackToFirstProject(t *testing.T) {
	tr := newTestTracker(t)
	first := tr.AddProject("First")
	tr.AddProject("Second")

	task := tr.AddTask("orphan", "unknown-project")
	if task.ProjectID != first.ID {
		t.Fatalf("task project = %q, want first project %q", task.ProjectID, first.ID)
	}
}

func TestAddTaskGeneralBucket(t *testing.T) {
	tr := newTestTracker(t)

	task := tr.AddTask("loose end", "")
	if task.ProjectID != "" {
		t.Fatalf("task project = %q, want General bucket (empty)", task.ProjectID)
	}
	if name := tr.ProjectName(task.ProjectID); name != GeneralBucket {
		t.Fatalf("bucket name = %q, want %q", name, GeneralBucket)
	}
	if got := tr.Stats().ActiveTasks; got != 1 {
		t.Fatalf("activeTasks = %d, want 1", got)
	}
}

func TestCompleteTask(t *testing.T) {
	tr := newTestTracker(t)
	p := tr.AddProject("Launch")
	task := tr.AddTask("Write spec", p.ID)

	if !tr.CompleteTask(task.ID) {
		t.Fatal("complete should succeed")
	}
	stats := tr.Stats()
	if stats.ActiveTasks != 0 || stats.CompletedTasks != 1 {
		t.Fatalf("stats = %+v, want 0 active / 1 completed", stats)
	}
	if got := tr.Projects()[0].DoneCount; got != 1 {
		t.Fatalf("project completed = %d, want 1", got)
	}
}

func TestCompleteTaskIdempotent(t *testing.T) {
	tr := newTestTracker(t)
	task := tr.AddTask("once", "")
	tr.CompleteTask(task.ID)

	if tr.CompleteTask(task.ID) {
		t.Fatal("second complete should be a no-op")
	}
	if got := tr.Stats().CompletedTasks; got != 1 {
		t.Fatalf("completedTasks = %d, want 1", got)
	}
}

func TestDeleteTaskAdjustsCounters(t *testing.T) {
	tr := newTestTracker(t)
	p := tr.AddProject("P")
	a := tr.AddTask("a", p.ID)
	b := tr.AddTask("b", p.ID)
	tr.CompleteTask(a.ID)

	tr.DeleteTask(a.ID)
	stats := tr.Stats()
	if stats.CompletedTasks != 0 || stats.ActiveTasks != 1 {
		t.Fatalf("stats after deleting completed task = %+v", stats)
	}
	proj := tr.Projects()[0]
	if proj.TaskCount != 1 || proj.DoneCount != 0 {
		t.Fatalf("project counts = %d/%d, want 1/0", proj.TaskCount, proj.DoneCount)
	}

	tr.DeleteTask(b.ID)
	if got := tr.Stats().ActiveTasks; got != 0 {
		t.Fatalf("activeTasks = %d, want 0", got)
	}
}

func TestDeleteTaskClearsTimerAndActiveRef(t *testing.T) {
	tr := newTestTracker(t)
	task := tr.AddTask("tracked", "")
	tr.StartTask(task.ID)
	tr.Tick()
	tr.Tick()

	tr.DeleteTask(task.ID)
	sw := tr.Stopwatch()
	if sw.ActiveTaskID != "" {
		t.Fatal("active reference should be cleared")
	}
	if sw.Running {
		t.Fatal("session should stop when the active task is deleted")
	}
	if _, ok := sw.TaskSeconds[task.ID]; ok {
		t.Fatal("task timer should be removed")
	}
}

// ============================================================
// Project deletion cascade
// ============================================================

func TestDeleteProjectCascades(t *testing.T) {
	tr := newTestTracker(t)
	p := tr.AddProject("Doomed")
	other := tr.AddProject("Safe")
	a := tr.AddTask("a", p.ID)
	tr.AddTask("b", p.ID)
	tr.AddTask("c", p.ID)
	keep := tr.AddTask("keep", other.ID)
	tr.CompleteTask(a.ID)

	impact, ok := tr.PreviewDeleteProject(p.ID)
	if !ok {
		t.Fatal("preview should find the project")
	}
	if impact.TaskCount != 3 || impact.ActiveTasks != 2 || impact.CompletedTasks != 1 {
		t.Fatalf("impact = %+v, want 3/2/1", impact)
	}

	if !tr.DeleteProject(p.ID) {
		t.Fatal("delete should succeed")
	}
	stats := tr.Stats()
	if stats.TotalProjects != 1 {
		t.Fatalf("totalProjects = %d, want 1", stats.TotalProjects)
	}
	if stats.ActiveTasks != 1 || stats.CompletedTasks != 0 {
		t.Fatalf("stats = %+v, want 1 active / 0 completed", stats)
	}
	for _, task := range tr.Tasks() {
		if task.ProjectID == p.ID {
			t.Fatal("no task may still reference the deleted project")
		}
	}
	if tr.Tasks()[0].ID != keep.ID {
		t.Fatal("unrelated task should survive")
	}
}

func TestDeleteProjectStopsActiveTask(t *testing.T) {
	tr := newTestTracker(t)
	p := tr.AddProject("Doomed")
	task := tr.AddTask("tracked", p.ID)
	tr.StartTask(task.ID)

	tr.DeleteProject(p.ID)
	sw := tr.Stopwatch()
	if sw.ActiveTaskID != "" || sw.Running {
		t.Fatalf("cascade must stop the active task, got %+v", sw)
	}
}

func TestDeleteProjectUnknown(t *testing.T) {
	tr := newTestTracker(t)
	if tr.DeleteProject("nope") {
		t.Fatal("unknown project should not delete")
	}
	if _, ok := tr.PreviewDeleteProject("nope"); ok {
		t.Fatal("preview of unknown project should report not found")
	}
}

// ============================================================
// Scenario from the drawing board
// ============================================================

func TestLedgerScenario(t *testing.T) {
	tr := newTestTracker(t)

	p := tr.AddProject("Launch")
	if got := tr.Stats().TotalProjects; got != 1 {
		t.Fatalf("totalProjects = %d, want 1", got)
	}

	task := tr.AddTask("Write spec", p.ID)
	if task.Status != TaskTodo {
		t.Fatalf("status = %q, want todo", task.Status)
	}
	if got := tr.Projects()[0].TaskCount; got != 1 {
		t.Fatalf("project task count = %d, want 1", got)
	}
	if got := tr.Stats().ActiveTasks; got != 1 {
		t.Fatalf("activeTasks = %d, want 1", got)
	}

	tr.CompleteTask(task.ID)
	stats := tr.Stats()
	if stats.ActiveTasks != 0 || stats.CompletedTasks != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := tr.Projects()[0].DoneCount; got != 1 {
		t.Fatalf("project completed = %d, want 1", got)
	}
}
