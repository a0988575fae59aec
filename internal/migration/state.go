package migration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// State records the fingerprints of the last successful conversion of each
// input file.
type State struct {
	Version string    `json:"version"`
	LastRun time.Time `json:"last_run"`
	// Settings is the run settings string the fingerprints were built with.
	Settings string `json:"settings"`
	// Fingerprints maps input path to fingerprint from the last run.
	Fingerprints map[string]*Fingerprint `json:"fingerprints"`
}

const (
	stateVersion = "1.0.0"
	// StateFileName is written at the root of the output directory.
	StateFileName = ".j2ts-state.json"
)

// NewState creates an empty state.
func NewState(settings string) *State {
	return &State{
		Version:      stateVersion,
		LastRun:      time.Now(),
		Settings:     settings,
		Fingerprints: make(map[string]*Fingerprint),
	}
}

// LoadState loads the state from dir. It returns nil and no error when no
// state file exists.
func LoadState(dir string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(dir, StateFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading state")
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "decoding state")
	}
	if state.Fingerprints == nil {
		state.Fingerprints = make(map[string]*Fingerprint)
	}
	return &state, nil
}

// Save writes the state into dir, creating it if needed.
func (s *State) Save(dir string) error {
	s.LastRun = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding state")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating state directory")
	}
	return errors.Wrap(os.WriteFile(filepath.Join(dir, StateFileName), data, 0o644), "writing state")
}

// ChangedFiles compares current fingerprints against stored state and
// returns the paths of files that have changed. A nil state marks every file
// as changed.
func ChangedFiles(current map[string]*Fingerprint, previous *State) []string {
	changed := make([]string, 0, len(current))
	for path, fp := range current {
		if previous == nil {
			changed = append(changed, path)
			continue
		}
		prev, ok := previous.Fingerprints[path]
		if !ok || prev.CompositeHash != fp.CompositeHash {
			changed = append(changed, path)
		}
	}
	return changed
}
