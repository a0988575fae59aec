// Package migration skips input files that have not changed since the last
// conversion run.
package migration

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/honghai9112k/tool-java2ts/internal/logging"
)

// IncrementalConfig configures the incremental runner.
type IncrementalConfig struct {
	StateDir string // Directory holding the state file, usually the output root
	Settings string // Run settings folded into every fingerprint
	ForceAll bool   // Reconvert every file
	// OutputPath maps an input path to its output file. When set, a file
	// whose output is missing is reconverted even if unchanged.
	OutputPath func(inputPath string) string
}

// IncrementalResult captures the result of an incremental analysis.
type IncrementalResult struct {
	TotalFiles     int           `json:"total_files"`
	ChangedFiles   []string      `json:"changed_files"`
	UnchangedFiles []string      `json:"unchanged_files"`
	NewFiles       []string      `json:"new_files"`
	DeletedFiles   []string      `json:"deleted_files"`
	Skipped        int           `json:"skipped"`
	Duration       time.Duration `json:"duration"`
	IsFirstRun     bool          `json:"is_first_run"`
	ForcedFull     bool          `json:"forced_full"`
}

// IncrementalRunner performs fingerprint based change detection.
type IncrementalRunner struct {
	config *IncrementalConfig
	prev   *State
}

// NewIncrementalRunner creates a new incremental runner.
func NewIncrementalRunner(cfg *IncrementalConfig) *IncrementalRunner {
	return &IncrementalRunner{config: cfg}
}

// Analyze examines files to determine which need conversion.
func (r *IncrementalRunner) Analyze(files []Source) (*IncrementalResult, error) {
	start := time.Now()
	result := &IncrementalResult{TotalFiles: len(files)}

	prev, err := LoadState(r.config.StateDir)
	if err != nil {
		return nil, errors.Wrap(err, "load state")
	}
	r.prev = prev
	result.IsFirstRun = prev == nil

	if r.config.ForceAll {
		result.ForcedFull = true
		for _, f := range files {
			result.ChangedFiles = append(result.ChangedFiles, f.Path)
		}
		sort.Strings(result.ChangedFiles)
		result.Duration = time.Since(start)
		return result, nil
	}

	current := ComputeFingerprints(files, r.config.Settings)
	changed := make(map[string]bool)
	for _, p := range ChangedFiles(current, prev) {
		changed[p] = true
	}

	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f.Path] = true
		switch {
		case prev == nil:
			result.NewFiles = append(result.NewFiles, f.Path)
		case changed[f.Path]:
			if _, existed := prev.Fingerprints[f.Path]; existed {
				result.ChangedFiles = append(result.ChangedFiles, f.Path)
			} else {
				result.NewFiles = append(result.NewFiles, f.Path)
			}
		case r.outputMissing(f.Path):
			result.ChangedFiles = append(result.ChangedFiles, f.Path)
		default:
			result.UnchangedFiles = append(result.UnchangedFiles, f.Path)
			result.Skipped++
		}
	}

	if prev != nil {
		for path := range prev.Fingerprints {
			if !present[path] {
				result.DeletedFiles = append(result.DeletedFiles, path)
			}
		}
	}

	sort.Strings(result.ChangedFiles)
	sort.Strings(result.UnchangedFiles)
	sort.Strings(result.NewFiles)
	sort.Strings(result.DeletedFiles)
	result.Duration = time.Since(start)

	logging.Named("migration").Infow("incremental analysis complete",
		"total", result.TotalFiles,
		"changed", len(result.ChangedFiles),
		"new", len(result.NewFiles),
		"unchanged", len(result.UnchangedFiles),
		"deleted", len(result.DeletedFiles),
		"first_run", result.IsFirstRun,
	)
	return result, nil
}

func (r *IncrementalRunner) outputMissing(path string) bool {
	if r.config.OutputPath == nil {
		return false
	}
	_, err := os.Stat(r.config.OutputPath(path))
	return err != nil
}

// FilesToConvert returns the files that need conversion (changed + new).
func (r *IncrementalRunner) FilesToConvert(result *IncrementalResult) []string {
	all := make([]string, 0, len(result.ChangedFiles)+len(result.NewFiles))
	all = append(all, result.ChangedFiles...)
	all = append(all, result.NewFiles...)
	sort.Strings(all)
	return all
}

// Needs reports whether path is in the set returned by FilesToConvert.
func (r *IncrementalRunner) Needs(result *IncrementalResult) func(path string) bool {
	needed := make(map[string]bool)
	for _, p := range r.FilesToConvert(result) {
		needed[p] = true
	}
	return func(path string) bool { return needed[path] }
}

// SaveState records converted alongside the fingerprints of unchanged files
// kept from the previous run. Files that failed are left out so that the
// next run retries them.
func (r *IncrementalRunner) SaveState(converted []Source, unchanged []string) error {
	state := NewState(r.config.Settings)
	if r.prev != nil && r.prev.Settings == r.config.Settings {
		for _, path := range unchanged {
			if fp, ok := r.prev.Fingerprints[path]; ok {
				state.Fingerprints[path] = fp
			}
		}
	}
	for path, fp := range ComputeFingerprints(converted, r.config.Settings) {
		state.Fingerprints[path] = fp
	}
	return state.Save(r.config.StateDir)
}

// FormatIncrementalReport returns a human-readable report of an analysis.
func FormatIncrementalReport(result *IncrementalResult) string {
	var b strings.Builder
	b.WriteString("╔══════════════════════════════════════════╗\n")
	b.WriteString("║     Incremental Conversion Report        ║\n")
	b.WriteString("╠══════════════════════════════════════════╣\n")

	switch {
	case result.IsFirstRun:
		b.WriteString("║ Mode: First Run (full conversion)\n")
	case result.ForcedFull:
		b.WriteString("║ Mode: Forced Full Conversion\n")
	default:
		b.WriteString("║ Mode: Incremental\n")
	}

	fmt.Fprintf(&b, "║ Total Files:     %d\n", result.TotalFiles)
	fmt.Fprintf(&b, "║ Changed Files:   %d\n", len(result.ChangedFiles))
	fmt.Fprintf(&b, "║ New Files:       %d\n", len(result.NewFiles))
	fmt.Fprintf(&b, "║ Unchanged:       %d (skipped)\n", len(result.UnchangedFiles))
	fmt.Fprintf(&b, "║ Deleted:         %d\n", len(result.DeletedFiles))
	fmt.Fprintf(&b, "║ Analysis Time:   %s\n", result.Duration.Round(time.Millisecond))
	if result.TotalFiles > 0 {
		fmt.Fprintf(&b, "║ Skip Rate:       %.1f%%\n", float64(result.Skipped)/float64(result.TotalFiles)*100)
	}
	fmt.Fprintf(&b, "║ Files to Convert: %d\n", len(result.ChangedFiles)+len(result.NewFiles))

	section := func(title, mark string, paths []string) {
		if len(paths) == 0 {
			return
		}
		b.WriteString("╠══════════════════════════════════════════╣\n")
		fmt.Fprintf(&b, "║ %s:\n", title)
		for _, p := range paths {
			fmt.Fprintf(&b, "║   %s %s\n", mark, p)
		}
	}
	section("Changed Files", "~", result.ChangedFiles)
	section("New Files", "+", result.NewFiles)
	section("Deleted Files", "-", result.DeletedFiles)

	b.WriteString("╚══════════════════════════════════════════╝\n")
	return b.String()
}
