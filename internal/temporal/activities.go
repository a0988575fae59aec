package temporal

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
	"github.com/honghai9112k/tool-java2ts/internal/converter"
	"github.com/honghai9112k/tool-java2ts/internal/importfix"
)

// ErrTypeNoInputs tags the non-retryable failure of a batch without inputs.
const ErrTypeNoInputs = "NoInputs"

// BatchResult is the serializable result of ConvertBatchActivity.
type BatchResult struct {
	RunID        string
	TotalFiles   int
	SuccessCount int
	Unchanged    int
	Failures     map[string]string
}

// ImportsResult is the serializable result of UpdateImportsActivity.
type ImportsResult struct {
	TotalFiles   int
	UpdatedFiles int
}

// Dependencies holds shared resources injected into activities.
type Dependencies struct {
	Engine *converter.Engine
}

var deps = &Dependencies{}

// SetDependencies injects shared resources (called during worker setup).
func SetDependencies(d *Dependencies) {
	deps = d
}

func engine() *converter.Engine {
	if deps == nil || deps.Engine == nil {
		return converter.New()
	}
	return deps.Engine
}

// ConvertBatchActivity runs one batch conversion of the input tree.
func ConvertBatchActivity(ctx context.Context, input ConversionInput) (BatchResult, error) {
	mode, err := batch.LookupMode(input.Mode)
	if err != nil {
		return BatchResult{}, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidMode", err)
	}

	opts := []batch.RunnerOption{}
	if activity.IsActivity(ctx) {
		opts = append(opts, batch.WithObserver(heartbeat{ctx: ctx}))
	}
	runner := batch.NewRunner(engine(), batch.Options{
		InputDir:    input.InputDir,
		OutputDir:   input.OutputDir,
		SkipPattern: input.SkipPattern,
		Incremental: input.Incremental,
		ForceAll:    input.ForceAll,
	}, opts...)

	summary, err := runner.Run(ctx, mode)
	if errors.Is(err, batch.ErrNoInputs) {
		return BatchResult{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNoInputs, err)
	}
	if err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{
		RunID:        summary.RunID,
		TotalFiles:   summary.TotalFiles,
		SuccessCount: summary.SuccessCount,
		Unchanged:    summary.Unchanged,
	}
	for _, r := range summary.Results {
		if r.Success {
			continue
		}
		if result.Failures == nil {
			result.Failures = make(map[string]string)
		}
		result.Failures[r.InputFile] = r.Error
	}
	return result, nil
}

// UpdateImportsActivity runs the import pass over outputDir.
func UpdateImportsActivity(ctx context.Context, outputDir string) (ImportsResult, error) {
	report, err := importfix.Run(ctx, outputDir)
	if errors.Is(err, importfix.ErrNoOutputs) {
		return ImportsResult{}, nil
	}
	if err != nil {
		return ImportsResult{}, err
	}
	return ImportsResult{TotalFiles: report.TotalFiles, UpdatedFiles: report.UpdatedFiles}, nil
}

// heartbeat reports batch progress to the Temporal server.
type heartbeat struct {
	ctx context.Context
}

func (h heartbeat) RunStarted(string, string, int) {}

func (h heartbeat) BatchCompleted(_ string, p batch.Progress) {
	activity.RecordHeartbeat(h.ctx, p.Processed)
}

func (h heartbeat) RunCompleted(string, *batch.Summary) {}
