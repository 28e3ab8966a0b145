package tracker

// ToggleSession flips the running flag. Session seconds are kept so a
// stopped session can resume where it left off.
func (t *Tracker) ToggleSession() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Stopwatch.Running = !t.state.Stopwatch.Running
	t.publish()
	return t.state.Stopwatch.Running
}

// StartTask makes the given task the active one and forces the session
// to run. Any previously active task is stopped first, so the switch is
// a single atomic transition: no tick can land between stop and start.
// Unknown ids are ignored.
func (t *Tracker) StartTask(taskID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.findTask(taskID) == nil {
		return false
	}

	sw := &t.state.Stopwatch
	if sw.ActiveTaskID != "" && sw.ActiveTaskID != taskID {
		sw.ActiveTaskID = ""
		sw.Running = false
	}
	sw.ActiveTaskID = taskID
	sw.Running = true
	if _, ok := sw.TaskSeconds[taskID]; !ok {
		sw.TaskSeconds[taskID] = 0
	}
	t.publish()
	return true
}

// StopTask halts tracking for the given task. It only acts when that
// task is the active one.
func (t *Tracker) StopTask(taskID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sw := &t.state.Stopwatch
	if sw.ActiveTaskID != taskID {
		return
	}
	sw.ActiveTaskID = ""
	sw.Running = false
	t.publish()
}

func (t *Tracker) Stopwatch() StopwatchState {
	t.mu.Lock()
	defer t.mu.Unlock()
	sw := t.state.Stopwatch
	sw.TaskSeconds = make(map[string]int, len(t.state.Stopwatch.TaskSeconds))
	for id, secs := range t.state.Stopwatch.TaskSeconds {
		sw.TaskSeconds[id] = secs
	}
	return sw
}

// TaskSeconds returns the accumulated seconds for one task.
func (t *Tracker) TaskSeconds(taskID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Stopwatch.TaskSeconds[taskID]
}
