package dashboard

import "time"

// RunStatus represents the state of a conversion run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Event types broadcast to live clients.
const (
	EventConnected      = "connected"
	EventRunStarted     = "run.started"
	EventBatchCompleted = "batch.completed"
	EventRunCompleted   = "run.completed"
	EventRunFailed      = "run.failed"
)

// ConversionRun is one batch conversion as seen by the operator.
type ConversionRun struct {
	ID          string     `json:"id"`
	Mode        string     `json:"mode"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	TotalFiles  int        `json:"total_files"`
	Processed   int        `json:"processed"`
	Succeeded   int        `json:"succeeded"`
	Batches     int        `json:"batches"`
	Speed       string     `json:"speed,omitempty"`
	Message     string     `json:"message,omitempty"`
	// Failures maps input files to their failure reason.
	Failures map[string]string `json:"failures,omitempty"`
}

// Stats holds aggregate statistics over the stored runs.
type Stats struct {
	TotalRuns      int     `json:"total_runs"`
	ActiveRuns     int     `json:"active_runs"`
	CompletedRuns  int     `json:"completed_runs"`
	FailedRuns     int     `json:"failed_runs"`
	FilesConverted int     `json:"files_converted"`
	AvgDuration    float64 `json:"avg_duration_seconds"`
	SuccessRate    float64 `json:"success_rate"`
}

// Event represents a real-time dashboard event.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id,omitempty"`
	Data      any       `json:"data,omitempty"`
}
