// Package batch converts a directory tree of Java sources into TypeScript
// files, one batch of concurrent conversions at a time.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/honghai9112k/tool-java2ts/internal/converter"
	"github.com/honghai9112k/tool-java2ts/internal/ir"
	"github.com/honghai9112k/tool-java2ts/internal/logging"
	"github.com/honghai9112k/tool-java2ts/internal/migration"
	"github.com/honghai9112k/tool-java2ts/internal/observability"
)

// ErrNoInputs is returned when the input root holds no convertible file.
var ErrNoInputs = errors.New("no Java files found")

// Options configures a Runner.
type Options struct {
	InputDir  string
	OutputDir string
	// SkipPattern drops inputs whose lower-cased file name contains it.
	SkipPattern string
	// Size overrides the mode's batch size when positive.
	Size int
	// MinSize overrides the mode's minimum input size when positive.
	MinSize int
	// Incremental skips inputs unchanged since the last run.
	Incremental bool
	// ForceAll reconverts every input of an incremental run.
	ForceAll bool
	// Concurrency caps the conversions in flight within a batch. Zero lets a
	// whole batch run at once.
	Concurrency int
}

// Runner converts every input file under a root.
type Runner struct {
	engine    *converter.Engine
	opts      Options
	metrics   *observability.ConverterMetrics
	observers observers
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithObserver adds a lifecycle observer.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observers = append(r.observers, o) }
}

// WithMetrics records per-file metrics into m instead of the global set.
func WithMetrics(m *observability.ConverterMetrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner creates a runner around engine.
func NewRunner(engine *converter.Engine, opts Options, ro ...RunnerOption) *Runner {
	r := &Runner{engine: engine, opts: opts, metrics: observability.Metrics()}
	for _, o := range ro {
		o(r)
	}
	return r
}

// OutputPath maps an input file to its .ts output.
func (r *Runner) OutputPath(f File) string {
	return filepath.Join(r.opts.OutputDir, filepath.FromSlash(f.Directory), f.BaseName()+r.engine.Target().FileExtension())
}

// effective applies the size overrides of the runner options to mode.
func (r *Runner) effective(mode Mode) Mode {
	if r.opts.Size > 0 {
		mode.Size = r.opts.Size
	}
	if r.opts.MinSize > 0 {
		mode.MinSize = r.opts.MinSize
	}
	if mode.Size <= 0 {
		mode.Size = 1
	}
	return mode
}

func (r *Runner) limit(n int) int {
	if r.opts.Concurrency > 0 && r.opts.Concurrency < n {
		return r.opts.Concurrency
	}
	return n
}

// Options returns the runner configuration.
func (r *Runner) Options() Options { return r.opts }

// WalkOptions returns the input filter of the runner.
func (r *Runner) WalkOptions() WalkOptions {
	return WalkOptions{
		Extensions:  r.engine.Source().FileExtensions(),
		SkipPattern: r.opts.SkipPattern,
	}
}

// ConvertFile converts a single input outside of a run. Observers are not
// notified and incremental state is left alone.
func (r *Runner) ConvertFile(ctx context.Context, f File, mode Mode) FileResult {
	return r.convertFile(ctx, f, r.effective(mode), nil)
}

// Run converts every input with the given mode. A failed file never aborts
// the run; the returned error is reserved for walk failures and a missing
// input set, in which case the summary is still returned with Success false.
func (r *Runner) Run(ctx context.Context, mode Mode) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := logging.Named("batch").With("run_id", runID, "mode", mode.Name)

	mode = r.effective(mode)

	summary := &Summary{RunID: runID, Mode: mode.Name, Note: mode.Note, Results: []FileResult{}}

	files, err := Walk(r.opts.InputDir, r.WalkOptions())
	if err != nil {
		summary.Message = err.Error()
		return summary, err
	}
	if len(files) == 0 {
		summary.Message = ErrNoInputs.Error()
		return summary, ErrNoInputs
	}

	var incr *migration.IncrementalRunner
	var contents map[string][]byte
	if r.opts.Incremental {
		files, contents, incr, summary.Unchanged, err = r.filterUnchanged(files, mode)
		if err != nil {
			summary.Message = err.Error()
			return summary, err
		}
	}

	ctx, span := observability.StartRunSpan(ctx, mode.Name, len(files))
	defer span.End()

	r.metrics.RunsActive.Inc()
	defer r.metrics.RunsActive.Dec()

	log.Infow("run started", "files", len(files), "batch_size", mode.Size, "unchanged", summary.Unchanged)
	r.observers.RunStarted(runID, mode.Name, len(files))

	results := make([]FileResult, len(files))
	totalBatches := (len(files) + mode.Size - 1) / mode.Size
	succeeded := 0
	for b := 0; b < totalBatches; b++ {
		if err := ctx.Err(); err != nil {
			observability.RecordError(span, err)
			summary.Message = "cancelled"
			return summary, errors.Wrap(err, "batch run cancelled")
		}
		lo := b * mode.Size
		hi := min(lo+mode.Size, len(files))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.limit(mode.Size))
		for i := lo; i < hi; i++ {
			g.Go(func() error {
				results[i] = r.convertFile(gctx, files[i], mode, contents)
				return nil
			})
		}
		_ = g.Wait()

		for i := lo; i < hi; i++ {
			if results[i].Success {
				succeeded++
			}
		}
		r.observers.BatchCompleted(runID, newProgress(b+1, totalBatches, hi, len(files), succeeded, time.Since(start)))
	}

	elapsed := time.Since(start)
	summary.Results = results
	summary.TotalFiles = len(files)
	summary.SuccessCount = succeeded
	summary.Success = true
	summary.ProcessingTime = elapsed.Milliseconds()
	summary.Speed = formatSpeed(len(files), elapsed)
	summary.Message = fmt.Sprintf("Converted %d/%d files", succeeded, len(files))

	if incr != nil {
		if err := r.saveState(incr, files, results, contents); err != nil {
			log.Warnw("saving incremental state failed", "error", err)
		}
	}

	observability.RecordRunResult(span, succeeded, len(files)-succeeded, elapsed)
	log.Infow("run completed", "succeeded", succeeded, "failed", len(files)-succeeded, "elapsed", elapsed)
	r.observers.RunCompleted(runID, summary)
	return summary, nil
}

func (r *Runner) convertFile(ctx context.Context, f File, mode Mode, contents map[string][]byte) FileResult {
	start := time.Now()
	_, span := observability.StartFileSpan(ctx, f.RelativePath)
	defer span.End()

	res := FileResult{InputFile: f.RelativePath, Directory: f.Directory}
	finish := func(reason string) FileResult {
		res.Error = reason
		r.metrics.RecordFile(time.Since(start), res.Success, res.Cached)
		observability.RecordFileResult(span, string(res.Outcome), res.Success, reason)
		return res
	}

	data, ok := contents[f.RelativePath]
	if !ok {
		var err error
		data, err = os.ReadFile(f.FullPath)
		if err != nil {
			observability.RecordError(span, err)
			return finish(err.Error())
		}
	}
	source := string(data)
	if len(strings.TrimSpace(source)) < mode.MinSize {
		res.Outcome = ir.OutcomeTooSmall
		return finish(ReasonTooSmall)
	}

	location := ""
	if mode.WithLocation {
		location = f.Location()
	}
	var conv converter.Result
	if mode.Fast {
		conv = r.engine.ConvertFast(source, location)
	} else {
		conv = r.engine.Convert(source, location)
	}
	res.Outcome = conv.Outcome
	res.Cached = conv.Cached
	if conv.Declaration != nil {
		res.Name = conv.Declaration.Name
	}
	if conv.Output == "" {
		if conv.Outcome == ir.OutcomeTooSmall {
			return finish(ReasonTooSmall)
		}
		return finish(ReasonNoContent)
	}

	out := r.OutputPath(f)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		observability.RecordError(span, err)
		return finish(err.Error())
	}
	if err := os.WriteFile(out, []byte(conv.Output), 0o644); err != nil {
		observability.RecordError(span, err)
		return finish(err.Error())
	}
	res.Success = true
	res.OutputFile = filepath.Base(out)
	res.OutputPath = out
	return finish("")
}

// filterUnchanged reads every input, drops the unchanged ones and returns
// the remaining files with their contents.
func (r *Runner) filterUnchanged(files []File, mode Mode) ([]File, map[string][]byte, *migration.IncrementalRunner, int, error) {
	byPath := make(map[string]File, len(files))
	sources := make([]migration.Source, 0, len(files))
	contents := make(map[string][]byte, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.FullPath)
		if err != nil {
			return nil, nil, nil, 0, errors.Wrapf(err, "reading %s", f.RelativePath)
		}
		byPath[f.RelativePath] = f
		contents[f.RelativePath] = data
		sources = append(sources, migration.Source{Path: f.RelativePath, Content: data})
	}

	incr := migration.NewIncrementalRunner(&migration.IncrementalConfig{
		StateDir: r.opts.OutputDir,
		Settings: mode.Name,
		ForceAll: r.opts.ForceAll,
		OutputPath: func(p string) string {
			return r.OutputPath(byPath[p])
		},
	})
	analysis, err := incr.Analyze(sources)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	needs := incr.Needs(analysis)
	kept := files[:0:0]
	for _, f := range files {
		if needs(f.RelativePath) {
			kept = append(kept, f)
		}
	}
	r.metrics.FilesSkipped.Add(float64(len(analysis.UnchangedFiles)))
	return kept, contents, incr, len(analysis.UnchangedFiles), nil
}

func (r *Runner) saveState(incr *migration.IncrementalRunner, files []File, results []FileResult, contents map[string][]byte) error {
	var converted []migration.Source
	attempted := make(map[string]bool, len(files))
	for i, f := range files {
		attempted[f.RelativePath] = true
		if results[i].Success {
			converted = append(converted, migration.Source{Path: f.RelativePath, Content: contents[f.RelativePath]})
		}
	}
	var unchanged []string
	for p := range contents {
		if !attempted[p] {
			unchanged = append(unchanged, p)
		}
	}
	return incr.SaveState(converted, unchanged)
}
