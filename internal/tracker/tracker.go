package tracker

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier receives the audible/visual cue when a pomodoro phase
// completes. Implementations may fail; the tracker swallows and logs
// errors (and panics) so the state machine is never disturbed.
type Notifier interface {
	PhaseComplete(p Phase)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(Phase)

func (f NotifierFunc) PhaseComplete(p Phase) { f(p) }

// Tracker owns all tracked state. Every mutation goes through its
// methods, holds the mutex for the duration, recomputes the aggregate
// counters, and publishes a deep copy of the new state for
// fire-and-forget persistence.
type Tracker struct {
	mu       sync.Mutex
	state    State
	rng      *rand.Rand
	notifier Notifier
	logger   *zap.Logger

	// changes carries the latest state; intermediate states are
	// dropped so a slow writer never blocks a mutation.
	changes chan State

	now func() time.Time
}

type Option func(*Tracker)

// WithNotifier sets the phase-completion side channel.
func WithNotifier(n Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

// WithRand overrides the priority source, mainly for tests.
func WithRand(r *rand.Rand) Option {
	return func(t *Tracker) { t.rng = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

func New(initial State, opts ...Option) *Tracker {
	if initial.Stopwatch.TaskSeconds == nil {
		initial.Stopwatch.TaskSeconds = map[string]int{}
	}
	if initial.Pomodoro.Phase == "" {
		initial.Pomodoro.Phase = PhaseWork
	}
	t := &Tracker{
		state:   initial,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  zap.NewNop(),
		changes: make(chan State, 1),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.mu.Lock()
	t.reconcile()
	t.mu.Unlock()
	return t
}

// Changes returns the persistence channel. Consumers receive every
// settled state in order; bursts collapse to the most recent one.
func (t *Tracker) Changes() <-chan State {
	return t.changes
}

// State returns a deep copy of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Replace swaps in a whole new state, e.g. after an import or reset.
func (t *Tracker) Replace(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.Stopwatch.TaskSeconds == nil {
		s.Stopwatch.TaskSeconds = map[string]int{}
	}
	if s.Pomodoro.Phase == "" {
		s.Pomodoro.Phase = PhaseWork
	}
	t.state = s
	t.reconcile()
	t.publish()
}

// Reset returns the tracker to the first-run state.
func (t *Tracker) Reset() {
	t.Replace(NewState())
}

func (t *Tracker) DarkMode() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.DarkMode
}

func (t *Tracker) ToggleDarkMode() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.DarkMode = !t.state.DarkMode
	t.publish()
	return t.state.DarkMode
}

// Tick advances the stopwatch and, when pomodoro mode is enabled, the
// phase machine by one second. The session counter and the active
// task's counter move on the same tick; a phase completion fires the
// notifier after the state has settled.
func (t *Tracker) Tick() {
	t.mu.Lock()
	if !t.state.Stopwatch.Running {
		t.mu.Unlock()
		return
	}

	sw := &t.state.Stopwatch
	sw.SessionSeconds++
	if sw.ActiveTaskID != "" {
		sw.TaskSeconds[sw.ActiveTaskID]++
	}

	var completed Phase
	fired := false
	if t.state.Pomodoro.Enabled && sw.SessionSeconds >= PhaseDuration(t.state.Pomodoro.Phase) {
		completed = t.state.Pomodoro.Phase
		t.advancePhase()
		fired = true
	}

	t.publish()
	t.mu.Unlock()

	if fired {
		t.notifyPhase(completed)
	}
}

// notifyPhase fires the side channel outside the state lock. Failures
// never reach the caller.
func (t *Tracker) notifyPhase(p Phase) {
	if t.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("phase notification panicked", zap.String("phase", string(p)), zap.Any("panic", r))
		}
	}()
	t.notifier.PhaseComplete(p)
}

// publish hands the settled state to the persistence consumer without
// blocking. Callers must hold t.mu.
func (t *Tracker) publish() {
	st := t.state.Clone()
	for {
		select {
		case t.changes <- st:
			return
		default:
		}
		// Channel full: discard the stale state and retry.
		select {
		case <-t.changes:
		default:
		}
	}
}

// reconcile recomputes every denormalized counter from the project and
// task collections and validates the active-task weak reference.
// Callers must hold t.mu.
func (t *Tracker) reconcile() {
	st := &t.state

	st.Stats = Stats{TotalProjects: len(st.Projects)}
	byProject := map[string]*Project{}
	for i := range st.Projects {
		p := &st.Projects[i]
		p.TaskCount = 0
		p.DoneCount = 0
		byProject[p.ID] = p
	}

	activeSeen := false
	for _, task := range st.Tasks {
		if task.Status == TaskCompleted {
			st.Stats.CompletedTasks++
		} else {
			st.Stats.ActiveTasks++
		}
		if p, ok := byProject[task.ProjectID]; ok {
			p.TaskCount++
			if task.Status == TaskCompleted {
				p.DoneCount++
			}
		}
		if task.ID == st.Stopwatch.ActiveTaskID {
			activeSeen = true
		}
	}

	if st.Stopwatch.ActiveTaskID != "" && !activeSeen {
		st.Stopwatch.ActiveTaskID = ""
		st.Stopwatch.Running = false
	}
}
