package dashboard

import (
	"sort"
	"sync"
	"time"
)

const maxRuns = 100

// Store provides thread-safe in-memory storage for conversion runs.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*ConversionRun
}

// NewStore creates a new Store instance.
func NewStore() *Store {
	return &Store{runs: make(map[string]*ConversionRun)}
}

// CreateRun adds a run to the store.
func (s *Store) CreateRun(run *ConversionRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	s.evictOldRuns()
}

// GetRun returns a copy of the run with the given ID.
func (s *Store) GetRun(id string) (ConversionRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return ConversionRun{}, false
	}
	return *run, true
}

// ListRuns returns copies of all runs, most recent first.
func (s *Store) ListRuns() []ConversionRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]ConversionRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs
}

// UpdateRun applies fn to the run under the write lock and returns a copy
// of the result. ok is false when the run is unknown.
func (s *Store) UpdateRun(id string, fn func(*ConversionRun)) (ConversionRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return ConversionRun{}, false
	}
	fn(run)
	return *run, true
}

// GetStats computes aggregate statistics.
func (s *Store) GetStats() *Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{TotalRuns: len(s.runs)}
	var totalDuration time.Duration
	for _, run := range s.runs {
		switch run.Status {
		case StatusRunning:
			stats.ActiveRuns++
		case StatusCompleted:
			stats.CompletedRuns++
			if run.CompletedAt != nil {
				totalDuration += run.CompletedAt.Sub(run.StartedAt)
			}
		case StatusFailed:
			stats.FailedRuns++
		}
		stats.FilesConverted += run.Succeeded
	}
	if stats.CompletedRuns > 0 {
		stats.AvgDuration = totalDuration.Seconds() / float64(stats.CompletedRuns)
	}
	if stats.TotalRuns > 0 {
		stats.SuccessRate = float64(stats.CompletedRuns) / float64(stats.TotalRuns)
	}
	return stats
}

// evictOldRuns removes the oldest finished runs beyond maxRuns.
// Must be called with lock held.
func (s *Store) evictOldRuns() {
	if len(s.runs) <= maxRuns {
		return
	}

	type runTime struct {
		id   string
		time time.Time
	}
	var finished []runTime
	for id, run := range s.runs {
		if run.Status == StatusRunning {
			continue
		}
		t := run.StartedAt
		if run.CompletedAt != nil {
			t = *run.CompletedAt
		}
		finished = append(finished, runTime{id: id, time: t})
	}
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].time.Before(finished[j].time)
	})

	toDelete := len(s.runs) - maxRuns
	for i := 0; i < toDelete && i < len(finished); i++ {
		delete(s.runs, finished[i].id)
	}
}
