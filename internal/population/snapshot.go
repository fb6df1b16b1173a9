package population

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/evoquant/darwin-bot/internal/engineerrors"
)

const snapshotSchemaVersion = "1.0.0"

// Snapshot is the only durable representation of the population. Everything
// else (rank cache, cycle signals, open paper positions) is rebuilt live.
type Snapshot struct {
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Population    []SnapshotEntry `json:"population"`
}

// SnapshotEntry is one persisted genotype.
type SnapshotEntry struct {
	Name       string             `json:"name"`
	Family     string             `json:"family"`
	Direction  string             `json:"direction"`
	Parameters map[string]float64 `json:"parameters"`
	Metrics    SnapshotMetrics    `json:"metrics"`
}

// SnapshotMetrics captures the phantom accounting of one genotype.
type SnapshotMetrics struct {
	Equity     float64 `json:"equity"`
	Peak       float64 `json:"peak"`
	Drawdown   float64 `json:"drawdown"`
	WinStreak  int     `json:"win_streak"`
	LossStreak int     `json:"loss_streak"`
}

// Store reads and writes population snapshots on disk.
type Store struct {
	path string
}

// NewStore creates a snapshot store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save writes the snapshot atomically: marshal, write a temporary file next
// to the target, then rename over it. A crash mid-write never leaves a
// half-written snapshot behind.
func (s *Store) Save(snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return engineerrors.Wrap(err, engineerrors.CategoryPersistence, "snapshot", "mkdir")
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return engineerrors.Wrap(err, engineerrors.CategoryPersistence, "snapshot", "marshal")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return engineerrors.Wrap(err, engineerrors.CategoryPersistence, "snapshot", "write")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return engineerrors.Wrap(err, engineerrors.CategoryPersistence, "snapshot", "rename")
	}
	return nil
}

// Load reads the snapshot from disk. A missing file is not an error and
// returns (nil, nil); unreadable or unparseable content is reported as
// corrupt state so callers can fall back to a fresh population.
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, engineerrors.Wrap(err, engineerrors.CategoryCorruptState, "snapshot", "read")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, engineerrors.Wrap(err, engineerrors.CategoryCorruptState, "snapshot", "parse")
	}
	if snap.SchemaVersion == "" {
		return nil, engineerrors.New(engineerrors.CategoryCorruptState, "snapshot", "validate",
			fmt.Sprintf("missing schema version in %s", s.path))
	}
	return &snap, nil
}
