package dashboard

import (
	"time"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
)

var _ batch.Observer = (*Emitter)(nil)

// Emitter records batch progress in the store and forwards it to live
// clients. It is safe to use from multiple goroutines.
type Emitter struct {
	store *Store
	hub   *Hub
}

// NewEmitter creates a new event emitter.
func NewEmitter(store *Store, hub *Hub) *Emitter {
	return &Emitter{store: store, hub: hub}
}

// RunStarted creates a running ConversionRun and broadcasts "run.started".
func (e *Emitter) RunStarted(runID, mode string, total int) {
	run := &ConversionRun{
		ID:         runID,
		Mode:       mode,
		Status:     StatusRunning,
		StartedAt:  time.Now(),
		TotalFiles: total,
	}
	e.store.CreateRun(run)
	e.broadcast(EventRunStarted, runID, *run)
}

// BatchCompleted updates the run counters and broadcasts "batch.completed".
func (e *Emitter) BatchCompleted(runID string, p batch.Progress) {
	e.store.UpdateRun(runID, func(run *ConversionRun) {
		run.Processed = p.Processed
		run.Succeeded = p.Succeeded
		run.Batches = p.Batch
	})
	e.broadcast(EventBatchCompleted, runID, p)
}

// RunCompleted marks the run completed and broadcasts "run.completed".
func (e *Emitter) RunCompleted(runID string, s *batch.Summary) {
	run, ok := e.store.UpdateRun(runID, func(run *ConversionRun) {
		now := time.Now()
		run.Status = StatusCompleted
		run.CompletedAt = &now
		run.Processed = len(s.Results)
		run.Succeeded = s.SuccessCount
		run.Speed = s.Speed
		run.Message = s.Message
		for _, r := range s.Results {
			if r.Success {
				continue
			}
			if run.Failures == nil {
				run.Failures = make(map[string]string)
			}
			run.Failures[r.InputFile] = r.Error
		}
	})
	if ok {
		e.broadcast(EventRunCompleted, runID, run)
	}
}

// RunFailed marks the run failed and broadcasts "run.failed". Runs that
// never started are recorded so that the failure stays visible.
func (e *Emitter) RunFailed(runID, mode string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	mark := func(run *ConversionRun) {
		now := time.Now()
		run.Status = StatusFailed
		run.CompletedAt = &now
		run.Error = msg
	}
	run, ok := e.store.UpdateRun(runID, mark)
	if !ok {
		fresh := &ConversionRun{ID: runID, Mode: mode, StartedAt: time.Now()}
		mark(fresh)
		e.store.CreateRun(fresh)
		run = *fresh
	}
	e.broadcast(EventRunFailed, runID, run)
}

func (e *Emitter) broadcast(kind, runID string, data any) {
	e.hub.Broadcast(&Event{
		Type:      kind,
		Timestamp: time.Now(),
		RunID:     runID,
		Data:      data,
	})
}
