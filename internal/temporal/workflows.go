package temporal

import (
	"time"

	"github.com/cockroachdb/errors"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ConversionInput holds the workflow parameters.
type ConversionInput struct {
	Mode        string
	InputDir    string
	OutputDir   string
	SkipPattern string
	Incremental bool
	ForceAll    bool
	// UpdateImports runs the import pass after a batch that wrote files.
	UpdateImports bool
}

// ConversionOutput holds the workflow result.
type ConversionOutput struct {
	RunID          string
	TotalFiles     int
	SuccessCount   int
	Unchanged      int
	UpdatedImports int
	// Failures maps input files to their failure reason.
	Failures map[string]string
}

// ConversionWorkflow converts the input tree, then fixes supertype imports.
func ConversionWorkflow(ctx workflow.Context, input ConversionInput) (*ConversionOutput, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeNoInputs},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	log := workflow.GetLogger(ctx)

	var batchResult BatchResult
	if err := workflow.ExecuteActivity(ctx, ConvertBatchActivity, input).Get(ctx, &batchResult); err != nil {
		return nil, errors.Wrap(err, "convert batch")
	}
	log.Info("batch converted", "run_id", batchResult.RunID, "succeeded", batchResult.SuccessCount, "total", batchResult.TotalFiles)

	output := &ConversionOutput{
		RunID:        batchResult.RunID,
		TotalFiles:   batchResult.TotalFiles,
		SuccessCount: batchResult.SuccessCount,
		Unchanged:    batchResult.Unchanged,
		Failures:     batchResult.Failures,
	}
	if !input.UpdateImports || batchResult.SuccessCount == 0 {
		return output, nil
	}

	var importsResult ImportsResult
	if err := workflow.ExecuteActivity(ctx, UpdateImportsActivity, input.OutputDir).Get(ctx, &importsResult); err != nil {
		return nil, errors.Wrap(err, "update imports")
	}
	output.UpdatedImports = importsResult.UpdatedFiles
	return output, nil
}
