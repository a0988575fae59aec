package batch

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Observer receives run lifecycle notifications. Calls for one run are made
// from a single goroutine in order.
type Observer interface {
	RunStarted(runID, mode string, total int)
	BatchCompleted(runID string, p Progress)
	RunCompleted(runID string, s *Summary)
}

// ConsoleObserver prints coloured progress lines.
type ConsoleObserver struct {
	w io.Writer
}

// NewConsoleObserver writes to w.
func NewConsoleObserver(w io.Writer) *ConsoleObserver {
	return &ConsoleObserver{w: w}
}

func (o *ConsoleObserver) RunStarted(runID, mode string, total int) {
	color.New(color.FgCyan, color.Bold).Fprintf(o.w, "▶ %s: ", mode)
	fmt.Fprintf(o.w, "%d files (run %s)\n", total, runID)
}

func (o *ConsoleObserver) BatchCompleted(_ string, p Progress) {
	color.New(color.FgBlue).Fprintf(o.w, "  batch %d/%d ", p.Batch, p.TotalBatches)
	fmt.Fprintf(o.w, "completed %d/%d (", p.Processed, p.Total)
	color.New(color.FgGreen).Fprintf(o.w, "%d OK", p.Succeeded)
	fmt.Fprintf(o.w, ") - Speed: %.1f files/s - ETA: %ds\n", p.Speed, p.ETASeconds)
}

func (o *ConsoleObserver) RunCompleted(_ string, s *Summary) {
	c := color.New(color.FgGreen, color.Bold)
	if s.FailureCount() > 0 {
		c = color.New(color.FgYellow, color.Bold)
	}
	c.Fprintf(o.w, "✔ %s", s.Message)
	fmt.Fprintf(o.w, " in %dms (%s)\n", s.ProcessingTime, s.Speed)
}

type observers []Observer

func (os observers) RunStarted(runID, mode string, total int) {
	for _, o := range os {
		o.RunStarted(runID, mode, total)
	}
}

func (os observers) BatchCompleted(runID string, p Progress) {
	for _, o := range os {
		o.BatchCompleted(runID, p)
	}
}

func (os observers) RunCompleted(runID string, s *Summary) {
	for _, o := range os {
		o.RunCompleted(runID, s)
	}
}
