package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
	"github.com/honghai9112k/tool-java2ts/internal/config"
	"github.com/honghai9112k/tool-java2ts/internal/converter"
	"github.com/honghai9112k/tool-java2ts/internal/locations"
	"github.com/honghai9112k/tool-java2ts/internal/logging"
	"github.com/honghai9112k/tool-java2ts/internal/observability"
	"github.com/honghai9112k/tool-java2ts/internal/plugins"
	"github.com/honghai9112k/tool-java2ts/internal/plugins/source/java"
	"github.com/honghai9112k/tool-java2ts/internal/plugins/target/typescript"
)

// version is set at build time.
var version = "0.1.0"

// app carries what every command needs once the root command has run.
type app struct {
	configPath  string
	inputDir    string
	outputDir   string
	skipPattern string

	cfg    *config.Config
	engine *converter.Engine
	tracer *observability.TracerProvider
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "j2ts",
		Short:         "Convert Java POJOs and enums into TypeScript declarations",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "configs/j2ts.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVar(&a.inputDir, "input", "", "Java input directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&a.outputDir, "output", "", "TypeScript output directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&a.skipPattern, "skip", "", "Skip input files whose name contains this (overrides config)")

	rootCmd.AddCommand(
		a.convertCmd(),
		a.updateImportsCmd(),
		a.serveCmd(),
		a.workflowCmd(),
		a.watchCmd(),
		a.graphCmd(),
		a.indexCmd(),
		a.similarCmd(),
		a.verifyCmd(),
		a.modesCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Log.Format, cfg.Log.Level); err != nil {
		return err
	}
	if a.inputDir != "" {
		cfg.InputDir = a.inputDir
	}
	if a.outputDir != "" {
		cfg.OutputDir = a.outputDir
	}
	if a.skipPattern != "" {
		cfg.Batch.SkipPattern = a.skipPattern
	}
	a.cfg = cfg

	tcfg := observability.DefaultTracingConfig()
	tcfg.ServiceVersion = version
	tcfg.OTLPEndpoint = cfg.Tracing.OTLPEndpoint
	tcfg.SampleRate = cfg.Tracing.SampleRate
	tp, err := observability.InitTracing(ctx, tcfg)
	if err != nil {
		logging.Named("main").Warnw("tracing disabled", "error", err)
	} else {
		a.tracer = tp
	}

	a.engine, err = buildEngine(cfg)
	return err
}

func (a *app) teardown() {
	if a.tracer != nil {
		_ = a.tracer.Shutdown(context.Background())
	}
	logging.Sync()
}

// buildEngine wires the Java source and TypeScript target plugins with the
// configured location registry.
func buildEngine(cfg *config.Config) (*converter.Engine, error) {
	registry := plugins.NewRegistry()
	registry.RegisterSource(java.New())
	registry.RegisterTarget(typescript.New())

	source, err := registry.Source("java")
	if err != nil {
		return nil, err
	}
	target, err := registry.Target("typescript")
	if err != nil {
		return nil, err
	}
	locs, err := locations.Load(cfg.LocationsFile)
	if err != nil {
		return nil, err
	}
	return converter.New(
		converter.WithPlugins(source, target),
		converter.WithLocations(locs),
	), nil
}

// runnerOptions maps the configuration onto batch runner options.
func (a *app) runnerOptions() batch.Options {
	return batch.Options{
		InputDir:    a.cfg.InputDir,
		OutputDir:   a.cfg.OutputDir,
		SkipPattern: a.cfg.Batch.SkipPattern,
		Size:        a.cfg.Batch.Size,
		MinSize:     a.cfg.Batch.MinSize,
		Incremental: a.cfg.Incremental,
		Concurrency: a.cfg.Batch.Concurrency,
	}
}

func (a *app) newRunner(opts batch.Options, ro ...batch.RunnerOption) *batch.Runner {
	return batch.NewRunner(a.engine, opts, ro...)
}

// modeOrDefault resolves name, falling back to the configured mode.
func (a *app) modeOrDefault(name string) (batch.Mode, error) {
	if name == "" {
		name = a.cfg.Batch.Mode
	}
	return batch.LookupMode(name)
}

func (a *app) modesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List batch conversion modes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range batch.ModeNames() {
				m, _ := batch.LookupMode(name)
				fmt.Printf("  %-7s batch %-3d min %-3d %s\n", m.Name, m.Size, m.MinSize, m.Note)
			}
		},
	}
}
