// Package checkpoint manages the scratch weight files used to reset a
// model between repeated training runs. A Manager owns a run-scoped
// directory holding two snapshots: the "initial" weights written once
// before any training, and the "best" weights a model overwrites whenever
// its validation performance improves. The files are disposable scratch
// state, removed when the Manager is closed.
package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	initialName = "init_weights.bin"
	bestName    = "best_weights.bin"
)

// A Saver can persist and restore its trainable parameters. Model
// implementations satisfy this with their weight I/O methods.
type Saver interface {
	SaveWeights(path string) error
	LoadWeights(path string) error
}

// Manager owns one run's checkpoint directory.
type Manager struct {
	runID string
	dir   string
}

// NewManager creates a checkpoint directory for the run under base, or
// under the system temporary directory when base is empty. The directory
// name embeds runID so concurrent runs never share scratch files.
func NewManager(base, runID string) (*Manager, error) {
	if base == "" {
		base = os.TempDir()
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	dir := filepath.Join(base, "xtriage-"+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("checkpoint: creating %s: %w", dir, err)
	}
	return &Manager{runID: runID, dir: dir}, nil
}

// RunID returns the identifier the directory is keyed by.
func (m *Manager) RunID() string { return m.runID }

// Dir returns the managed directory.
func (m *Manager) Dir() string { return m.dir }

// InitialPath returns the path of the pre-training baseline snapshot.
func (m *Manager) InitialPath() string { return filepath.Join(m.dir, initialName) }

// BestPath returns the path a model should overwrite whenever validation
// performance improves during training.
func (m *Manager) BestPath() string { return filepath.Join(m.dir, bestName) }

// SaveInitial writes the model's current weights as the baseline that
// RestoreInitial returns to.
func (m *Manager) SaveInitial(s Saver) error {
	if err := s.SaveWeights(m.InitialPath()); err != nil {
		return fmt.Errorf("checkpoint: saving initial weights: %w", err)
	}
	return nil
}

// RestoreInitial resets the model to the baseline snapshot, undoing any
// training since SaveInitial. Any best snapshot left by a previous
// training run is removed, so RestoreBest cannot silently hand back a
// stale one.
func (m *Manager) RestoreInitial(s Saver) error {
	if err := os.Remove(m.BestPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checkpoint: clearing best weights: %w", err)
	}
	if err := s.LoadWeights(m.InitialPath()); err != nil {
		return fmt.Errorf("checkpoint: restoring initial weights: %w", err)
	}
	return nil
}

// RestoreBest loads the best-on-validation snapshot recorded during the
// most recent training run.
func (m *Manager) RestoreBest(s Saver) error {
	if err := s.LoadWeights(m.BestPath()); err != nil {
		return fmt.Errorf("checkpoint: restoring best weights: %w", err)
	}
	return nil
}

// Close removes the checkpoint directory and everything in it.
func (m *Manager) Close() error {
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("checkpoint: removing %s: %w", m.dir, err)
	}
	return nil
}
