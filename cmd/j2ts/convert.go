package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
	"github.com/honghai9112k/tool-java2ts/internal/importfix"
	"github.com/honghai9112k/tool-java2ts/internal/metrics"
	"github.com/honghai9112k/tool-java2ts/internal/verify"
)

func (a *app) convertCmd() *cobra.Command {
	var (
		mode          string
		incremental   bool
		force         bool
		updateImports bool
		jsonReport    bool
		size          int
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert every Java file under the input directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.modeOrDefault(mode)
			if err != nil {
				return err
			}
			opts := a.runnerOptions()
			opts.Incremental = opts.Incremental || incremental
			opts.ForceAll = force
			if size > 0 {
				opts.Size = size
			}

			report := metrics.New(m.Name)
			var ro []batch.RunnerOption
			if !jsonReport {
				ro = append(ro, batch.WithObserver(batch.NewConsoleObserver(os.Stdout)))
			}
			summary, err := a.newRunner(opts, ro...).Run(cmd.Context(), m)
			if summary != nil {
				report.CollectSummary(summary, fileSize)
			}
			if err != nil {
				return err
			}

			if updateImports && summary.SuccessCount > 0 {
				imports, err := importfix.Run(cmd.Context(), opts.OutputDir)
				if err != nil && !errors.Is(err, importfix.ErrNoOutputs) {
					return err
				}
				report.CollectImports(imports)
			}
			report.CollectCache(a.engine.Stats())

			var failures []string
			for _, r := range summary.Results {
				if !r.Success && r.Error != batch.ReasonTooSmall && r.Error != batch.ReasonNoContent {
					failures = append(failures, r.InputFile+": "+r.Error)
				}
			}
			report.Finish(failures)

			if jsonReport {
				data, err := report.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			report.PrintSummary(os.Stdout)
			if m.Note != "" {
				fmt.Println(m.Note)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Batch mode: all, simple, smart or full (default from config)")
	cmd.Flags().BoolVar(&incremental, "incremental", false, "Skip files unchanged since the last run")
	cmd.Flags().BoolVar(&force, "force", false, "Reconvert every file of an incremental run")
	cmd.Flags().BoolVar(&updateImports, "update-imports", false, "Add missing supertype imports after converting")
	cmd.Flags().BoolVar(&jsonReport, "json", false, "Print the run report as JSON")
	cmd.Flags().IntVar(&size, "size", 0, "Override the batch size of the mode")
	return cmd
}

func (a *app) updateImportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-imports",
		Short: "Add missing supertype imports to generated TypeScript files",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := importfix.Run(cmd.Context(), a.cfg.OutputDir)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%d ms)\n", report.Message, report.ProcessingTime)
			for _, path := range report.Updated {
				fmt.Printf("  + %s\n", path)
			}
			return nil
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Parse generated TypeScript and check it against its Java input",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := verify.Run(cmd.Context(), a.newRunner(a.runnerOptions()))
			if err != nil {
				return err
			}
			fmt.Printf("Checked %d outputs: %d passed, %d failed, %d inputs without output\n",
				report.Checked, report.Passed, len(report.Failed), report.Missing)
			for _, f := range report.Failed {
				fmt.Printf("  ✗ %s: %s", f.Input, f.Problem)
				if f.Expected != "" {
					fmt.Printf(" (expected %s, found %v)", f.Expected, f.Found)
				}
				fmt.Println()
			}
			if !report.OK() {
				return errors.Newf("%d outputs failed verification", len(report.Failed))
			}
			return nil
		},
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}
