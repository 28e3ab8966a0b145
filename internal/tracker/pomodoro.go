package tracker

// TogglePomodoro switches between free-running and pomodoro semantics.
// Enabling resets the session and starts from a work phase; disabling
// leaves the session time as-is.
func (t *Tracker) TogglePomodoro() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	pm := &t.state.Pomodoro
	pm.Enabled = !pm.Enabled
	if pm.Enabled {
		t.state.Stopwatch.SessionSeconds = 0
		pm.Phase = PhaseWork
	}
	t.publish()
	return pm.Enabled
}

func (t *Tracker) Pomodoro() PomodoroState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Pomodoro
}

// PhaseProgress is the raw fraction of the current phase elapsed. It is
// not clamped; display code must cap it at 1.
func (t *Tracker) PhaseProgress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(t.state.Stopwatch.SessionSeconds) / float64(PhaseDuration(t.state.Pomodoro.Phase))
}

// PhaseRemaining returns the seconds left in the current phase, floored
// at zero.
func (t *Tracker) PhaseRemaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	left := PhaseDuration(t.state.Pomodoro.Phase) - t.state.Stopwatch.SessionSeconds
	if left < 0 {
		left = 0
	}
	return left
}

// advancePhase applies one pomodoro transition: stop the session,
// reset it, and move to the next phase. After the fourth completed work
// phase the long break is inserted and the count wraps to zero.
// Callers must hold t.mu.
func (t *Tracker) advancePhase() {
	sw := &t.state.Stopwatch
	pm := &t.state.Pomodoro

	sw.Running = false
	sw.SessionSeconds = 0

	switch pm.Phase {
	case PhaseWork:
		pm.Count++
		if pm.Count >= SessionsPerCycle {
			pm.Phase = PhaseLongBreak
			pm.Count = 0
		} else {
			pm.Phase = PhaseShortBreak
		}
	default:
		pm.Phase = PhaseWork
	}
}
