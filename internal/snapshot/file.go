package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Store reads and writes the snapshot file. Load never fails: a
// missing or corrupt file falls back to the default snapshot, the same
// state a first run sees.
type Store struct {
	path   string
	logger *zap.Logger
	now    func() time.Time
}

func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger, now: time.Now}
}

// DefaultPath returns ~/.config/protrack/state.json
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "protrack", "state.json"), nil
}

func (s *Store) Path() string { return s.path }

// Load reads the snapshot, falling back to Default on any failure.
func (s *Store) Load() Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("snapshot read failed, using defaults", zap.Error(err))
		}
		return Default()
	}
	snap, err := Decode(data)
	if err != nil {
		s.logger.Warn("snapshot corrupt, using defaults", zap.Error(err))
		return Default()
	}
	return snap
}

// Save stamps the snapshot and writes it atomically via a temp file
// rename, so a crash mid-write never corrupts the previous state.
func (s *Store) Save(snap Snapshot) error {
	snap.LastUpdated = s.now().UTC().Format(time.RFC3339)
	snap.Version = Version

	data, err := Encode(snap, false)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Export writes a pretty-printed backup named with today's date into
// dir and returns the path. The file has the exact structure Import
// accepts.
func (s *Store) Export(snap Snapshot, dir string) (string, error) {
	snap.LastUpdated = s.now().UTC().Format(time.RFC3339)
	snap.Version = Version

	data, err := Encode(snap, true)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("protrack-backup-%s.json", s.now().Format("2006-01-02")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}

// Import decodes the given bytes and, only on success, persists them.
// A *FormatError means nothing was changed, on disk or otherwise.
func (s *Store) Import(data []byte) (Snapshot, error) {
	snap, err := Decode(data)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.Save(snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
