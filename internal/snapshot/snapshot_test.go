package snapshot

import (
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"protrack/internal/tracker"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "state.json"), nil)
}

// buildState assembles a representative reachable state through the
// tracker's own mutations.
func buildState(t *testing.T) tracker.State {
	t.Helper()
	tr := tracker.New(tracker.NewState(), tracker.WithRand(rand.New(rand.NewSource(7))))
	p := tr.AddProject("Launch")
	tr.AddProject("Side quest")
	a := tr.AddTask("Write spec", p.ID)
	tr.AddTask("General chore", "")
	tr.CompleteTask(a.ID)
	b := tr.AddTask("Focus", p.ID)
	tr.StartTask(b.ID)
	for i := 0; i < 90; i++ {
		tr.Tick()
	}
	tr.TogglePomodoro()
	tr.ToggleDarkMode()
	return tr.State()
}

// ============================================================
// Codec
// ============================================================

func TestRoundTrip(t *testing.T) {
	st := buildState(t)
	snap := FromState(st)

	data, err := Encode(snap, false)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(snap, back) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", snap, back)
	}

	// And through to tracker state: reconciled state equals the input.
	tr := tracker.New(back.ToState())
	if !reflect.DeepEqual(tr.State(), st) {
		t.Fatalf("state round trip mismatch:\n%+v\n%+v", tr.State(), st)
	}
}

func TestDecodeDefaultsAbsentFields(t *testing.T) {
	snap, err := Decode([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if snap.PomodoroPhase != string(tracker.PhaseWork) {
		t.Fatalf("phase = %q, want work", snap.PomodoroPhase)
	}
	if snap.TaskTimers == nil {
		t.Fatal("taskTimers should default to an empty map")
	}
	if snap.Version != Version {
		t.Fatalf("version = %q, want %q", snap.Version, Version)
	}
	if snap.IsTimerRunning || snap.TimerSeconds != 0 {
		t.Fatal("timer fields should default to zero")
	}
}

func TestDecodeUnknownPhaseDefaultsToWork(t *testing.T) {
	snap, err := Decode([]byte(`{"pomodoroPhase":"siesta"}`))
	if err != nil {
		t.Fatal(err)
	}
	if snap.PomodoroPhase != string(tracker.PhaseWork) {
		t.Fatalf("phase = %q, want work", snap.PomodoroPhase)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		`not json at all`,
		`[1,2,3]`,
		`{"projects": 5}`,
		`{"taskTimers": "lots"}`,
	}
	for _, blob := range cases {
		_, err := Decode([]byte(blob))
		if err == nil {
			t.Fatalf("expected error for %q", blob)
		}
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("error for %q is %T, want *FormatError", blob, err)
		}
	}
}

func TestSnapshotFieldNames(t *testing.T) {
	data, err := Encode(Default(), false)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		"stats", "projects", "tasks", "isTimerRunning", "timerSeconds",
		"isDarkMode", "pomodoroMode", "pomodoroPhase", "pomodoroCount",
		"taskTimers", "version",
	} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("snapshot missing key %q", key)
		}
	}
}

// ============================================================
// File store
// ============================================================

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	s := newTestStore(t)
	snap := s.Load()
	if !reflect.DeepEqual(snap, Default()) {
		t.Fatalf("load of missing file = %+v, want default", snap)
	}
}

func TestLoadCorruptFileReturnsDefault(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.Path(), []byte("{{{{"), 0o644); err != nil {
		t.Fatal(err)
	}
	snap := s.Load()
	if !reflect.DeepEqual(snap, Default()) {
		t.Fatal("corrupt file should load as default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	snap := FromState(buildState(t))

	if err := s.Save(snap); err != nil {
		t.Fatal(err)
	}
	back := s.Load()
	if back.LastUpdated == "" {
		t.Fatal("save should stamp lastUpdated")
	}
	// Round-trip law holds modulo the timestamp.
	back.LastUpdated = ""
	snap.LastUpdated = ""
	if !reflect.DeepEqual(snap, back) {
		t.Fatalf("save/load mismatch:\n%+v\n%+v", snap, back)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Default()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file should be renamed away")
	}
}

func TestExport(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()

	path, err := s.Export(FromState(buildState(t)), dir)
	if err != nil {
		t.Fatal(err)
	}
	wantName := "protrack-backup-" + time.Now().Format("2006-01-02") + ".json"
	if filepath.Base(path) != wantName {
		t.Fatalf("export file = %q, want %q", filepath.Base(path), wantName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("export should be pretty-printed")
	}
	// Exported bytes must be importable as-is (round-trip law).
	if _, err := Decode(data); err != nil {
		t.Fatalf("export is not re-importable: %v", err)
	}
}

func TestImportMalformedChangesNothing(t *testing.T) {
	s := newTestStore(t)
	orig := FromState(buildState(t))
	if err := s.Save(orig); err != nil {
		t.Fatal(err)
	}
	before := s.Load()

	_, err := s.Import([]byte(`{"projects": "nope"}`))
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
	after := s.Load()
	if !reflect.DeepEqual(before, after) {
		t.Fatal("failed import must leave the stored snapshot untouched")
	}
}

func TestImportValidBlobReplacesStore(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Default()); err != nil {
		t.Fatal(err)
	}

	blob := []byte(`{"projects":[{"id":"p1","name":"Imported","color":"#3B82F6","status":"active"}],"tasks":[],"timerSeconds":12}`)
	snap, err := s.Import(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Projects) != 1 || snap.Projects[0].Name != "Imported" {
		t.Fatalf("imported snapshot = %+v", snap)
	}
	if got := s.Load().TimerSeconds; got != 12 {
		t.Fatalf("persisted timerSeconds = %d, want 12", got)
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}
