package tracker

import (
	"testing"
	"time"
)

func TestClockStartStopIdempotent(t *testing.T) {
	c := NewClock()
	c.Start()
	c.Start() // no double registration
	if !c.Running() {
		t.Fatal("clock should be running")
	}

	c.Stop()
	c.Stop()
	if c.Running() {
		t.Fatal("clock should be stopped")
	}
}

func TestClockRestart(t *testing.T) {
	c := newClock(5 * time.Millisecond)
	c.Start()
	c.Stop()
	c.Start()
	t.Cleanup(c.Stop)

	select {
	case <-c.C():
	case <-time.After(time.Second):
		t.Fatal("restarted clock should tick again")
	}
}

func TestClockEmitsTicks(t *testing.T) {
	c := newClock(5 * time.Millisecond)
	c.Start()
	t.Cleanup(c.Stop)

	for i := 0; i < 3; i++ {
		select {
		case <-c.C():
		case <-time.After(time.Second):
			t.Fatal("expected a tick")
		}
	}
}

func TestClockStopsEmitting(t *testing.T) {
	c := newClock(5 * time.Millisecond)
	c.Start()

	select {
	case <-c.C():
	case <-time.After(time.Second):
		t.Fatal("expected a tick before stop")
	}
	c.Stop()

	// Drain anything already buffered, then expect silence.
	time.Sleep(20 * time.Millisecond)
	select {
	case <-c.C():
	default:
	}
	time.Sleep(30 * time.Millisecond)
	select {
	case <-c.C():
		t.Fatal("stopped clock must not emit")
	default:
	}
}

func TestClockDrivesTracker(t *testing.T) {
	tr := newTestTracker(t)
	tr.ToggleSession()

	c := newClock(2 * time.Millisecond)
	c.Start()
	t.Cleanup(c.Stop)

	for i := 0; i < 10; i++ {
		select {
		case <-c.C():
			tr.Tick()
		case <-time.After(time.Second):
			t.Fatal("clock stalled")
		}
	}
	if got := tr.Stopwatch().SessionSeconds; got != 10 {
		t.Fatalf("sessionSeconds = %d, want 10", got)
	}
}
