package batch

import (
	"fmt"
	"time"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

// Per-file failure reasons that are not I/O errors.
const (
	ReasonTooSmall  = "Too small"
	ReasonNoContent = "No content"
)

// FileResult is the outcome of converting one input file.
type FileResult struct {
	InputFile  string     `json:"inputFile"`
	OutputFile string     `json:"outputFile,omitempty"`
	OutputPath string     `json:"outputPath,omitempty"`
	Directory  string     `json:"directory"`
	Success    bool       `json:"success"`
	Error      string     `json:"error,omitempty"`
	Outcome    ir.Outcome `json:"outcome,omitempty"`
	Cached     bool       `json:"cached,omitempty"`
	// Name is the converted declaration's name.
	Name string `json:"name,omitempty"`
}

// Progress is reported after each batch.
type Progress struct {
	Batch        int     `json:"batch"`
	TotalBatches int     `json:"totalBatches"`
	Processed    int     `json:"processed"`
	Total        int     `json:"total"`
	Succeeded    int     `json:"succeeded"`
	Speed        float64 `json:"speed"`
	ETASeconds   int     `json:"etaSeconds"`
}

func newProgress(batch, totalBatches, processed, total, succeeded int, elapsed time.Duration) Progress {
	p := Progress{
		Batch:        batch,
		TotalBatches: totalBatches,
		Processed:    processed,
		Total:        total,
		Succeeded:    succeeded,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		p.Speed = float64(processed) / secs
	}
	if p.Speed > 0 {
		p.ETASeconds = int(float64(total-processed) / p.Speed)
	}
	return p
}

// Summary is the report of a whole run.
type Summary struct {
	RunID        string       `json:"runId"`
	Mode         string       `json:"mode"`
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	Results      []FileResult `json:"results"`
	TotalFiles   int          `json:"totalFiles"`
	SuccessCount int          `json:"successCount"`
	// Unchanged counts inputs skipped by an incremental run.
	Unchanged int `json:"unchanged,omitempty"`
	// ProcessingTime is in milliseconds.
	ProcessingTime int64  `json:"processingTime"`
	Speed          string `json:"speed"`
	Note           string `json:"note"`
}

// FailureCount is the number of files that produced no output.
func (s *Summary) FailureCount() int {
	return len(s.Results) - s.SuccessCount
}

func formatSpeed(files int, elapsed time.Duration) string {
	if elapsed <= 0 {
		return fmt.Sprintf("%d files/s", files)
	}
	return fmt.Sprintf("%.1f files/s", float64(files)/elapsed.Seconds())
}
