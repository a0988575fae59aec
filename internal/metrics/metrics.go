// Package metrics summarises a conversion run for the console and for JSON
// consumers.
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
	"github.com/honghai9112k/tool-java2ts/internal/converter"
	"github.com/honghai9112k/tool-java2ts/internal/importfix"
	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

// RunReport collects statistics for one conversion run.
type RunReport struct {
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at,omitempty"`
	Duration   time.Duration         `json:"duration_ms,omitempty"`
	RunID      string                `json:"run_id,omitempty"`
	Mode       string                `json:"mode"`
	Input      InputMetrics          `json:"input"`
	Output     OutputMetrics         `json:"output"`
	Imports    *ImportMetrics        `json:"imports,omitempty"`
	Cache      *converter.CacheStats `json:"cache,omitempty"`
	Errors     []string              `json:"errors,omitempty"`
}

type InputMetrics struct {
	Files     int `json:"files"`
	Unchanged int `json:"unchanged"`
	Converted int `json:"converted"`
	Failed    int `json:"failed"`
	// Outcomes counts files per extraction outcome.
	Outcomes map[ir.Outcome]int `json:"outcomes,omitempty"`
	// Reasons counts failed files per reason.
	Reasons map[string]int `json:"reasons,omitempty"`
}

type OutputMetrics struct {
	FilesWritten int    `json:"files_written"`
	TotalBytes   int64  `json:"total_bytes"`
	Speed        string `json:"speed"`
}

type ImportMetrics struct {
	Files   int `json:"files"`
	Updated int `json:"updated"`
}

// New starts tracking a run.
func New(mode string) *RunReport {
	return &RunReport{StartedAt: time.Now(), Mode: mode}
}

// CollectSummary folds a batch summary into the report. sizeOf returns the
// size of an output file, or -1 when it cannot be read.
func (m *RunReport) CollectSummary(s *batch.Summary, sizeOf func(path string) int64) {
	m.RunID = s.RunID
	m.Input.Files = s.TotalFiles
	m.Input.Unchanged = s.Unchanged
	m.Input.Converted = s.SuccessCount
	m.Input.Failed = s.FailureCount()
	m.Output.Speed = s.Speed
	for _, r := range s.Results {
		if r.Outcome != "" {
			if m.Input.Outcomes == nil {
				m.Input.Outcomes = make(map[ir.Outcome]int)
			}
			m.Input.Outcomes[r.Outcome]++
		}
		if !r.Success {
			if m.Input.Reasons == nil {
				m.Input.Reasons = make(map[string]int)
			}
			m.Input.Reasons[r.Error]++
			continue
		}
		m.Output.FilesWritten++
		if sizeOf != nil {
			if n := sizeOf(r.OutputPath); n > 0 {
				m.Output.TotalBytes += n
			}
		}
	}
}

// CollectImports records an update-imports pass.
func (m *RunReport) CollectImports(r *importfix.Report) {
	m.Imports = &ImportMetrics{Files: r.TotalFiles, Updated: r.UpdatedFiles}
}

// CollectCache records the converter cache counters.
func (m *RunReport) CollectCache(stats converter.CacheStats) {
	m.Cache = &stats
}

// Finish marks the run complete.
func (m *RunReport) Finish(errs []string) {
	m.FinishedAt = time.Now()
	m.Duration = m.FinishedAt.Sub(m.StartedAt)
	m.Errors = errs
}

// PrintSummary writes a human-readable summary.
func (m *RunReport) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\n╔══════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║        J2TS CONVERSION REPORT        ║\n")
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ Duration:    %-23s║\n", m.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "║ Mode:        %-23s║\n", m.Mode)
	fmt.Fprintf(w, "║ Speed:       %-23s║\n", m.Output.Speed)
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ INPUT\n")
	fmt.Fprintf(w, "║   Files:       %d\n", m.Input.Files)
	fmt.Fprintf(w, "║   Unchanged:   %d\n", m.Input.Unchanged)
	fmt.Fprintf(w, "║   Converted:   %d\n", m.Input.Converted)
	fmt.Fprintf(w, "║   Failed:      %d\n", m.Input.Failed)
	for _, reason := range sortedKeys(m.Input.Reasons) {
		fmt.Fprintf(w, "║     %-12s %d\n", reason, m.Input.Reasons[reason])
	}
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ OUTPUT\n")
	fmt.Fprintf(w, "║   Files:       %d\n", m.Output.FilesWritten)
	fmt.Fprintf(w, "║   Total Size:  %s\n", formatBytes(m.Output.TotalBytes))
	if m.Imports != nil {
		fmt.Fprintf(w, "║   Imports:     %d/%d updated\n", m.Imports.Updated, m.Imports.Files)
	}
	if m.Cache != nil {
		fmt.Fprintf(w, "║   Cache:       %d hits, %d misses\n", m.Cache.ConvertHits, m.Cache.ConvertMisses)
	}
	if len(m.Errors) > 0 {
		fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
		fmt.Fprintf(w, "║ ERRORS\n")
		for _, e := range m.Errors {
			fmt.Fprintf(w, "║   • %s\n", e)
		}
	}
	fmt.Fprintf(w, "╚══════════════════════════════════════╝\n")
}

// JSON returns the report as formatted JSON.
func (m *RunReport) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
