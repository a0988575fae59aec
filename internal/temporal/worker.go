// Package temporal runs batch conversions as durable Temporal workflows.
package temporal

import (
	"github.com/cockroachdb/errors"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// StartWorker creates and starts a Temporal worker.
func StartWorker(c client.Client, taskQueue string) (worker.Worker, error) {
	w := worker.New(c, taskQueue, worker.Options{})
	Register(w)

	if err := w.Start(); err != nil {
		return nil, errors.Wrap(err, "starting worker")
	}
	return w, nil
}

// Register adds the conversion workflow and its activities to r.
func Register(r worker.Registry) {
	r.RegisterWorkflow(ConversionWorkflow)
	r.RegisterActivity(ConvertBatchActivity)
	r.RegisterActivity(UpdateImportsActivity)
}
