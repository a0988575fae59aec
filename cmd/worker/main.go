package main

import (
	"context"
	"fmt"
	"os"

	"go.temporal.io/sdk/client"

	"github.com/honghai9112k/tool-java2ts/internal/config"
	"github.com/honghai9112k/tool-java2ts/internal/converter"
	"github.com/honghai9112k/tool-java2ts/internal/locations"
	"github.com/honghai9112k/tool-java2ts/internal/logging"
	"github.com/honghai9112k/tool-java2ts/internal/observability"
	"github.com/honghai9112k/tool-java2ts/internal/plugins"
	"github.com/honghai9112k/tool-java2ts/internal/plugins/source/java"
	"github.com/honghai9112k/tool-java2ts/internal/plugins/target/typescript"
	"github.com/honghai9112k/tool-java2ts/internal/server"
	temporalmod "github.com/honghai9112k/tool-java2ts/internal/temporal"
)

func main() {
	configPath := "configs/j2ts.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Log.Format, cfg.Log.Level); err != nil {
		return err
	}
	log := logging.Named("worker")

	shutdown := server.NewShutdownHandler(nil)
	shutdown.AddHook(server.LoggerShutdownHook())

	tcfg := observability.DefaultTracingConfig()
	tcfg.ServiceName = "j2ts-worker"
	tcfg.OTLPEndpoint = cfg.Tracing.OTLPEndpoint
	tcfg.SampleRate = cfg.Tracing.SampleRate
	if tp, err := observability.InitTracing(context.Background(), tcfg); err != nil {
		log.Warnw("tracing disabled", "error", err)
	} else {
		shutdown.AddHook(server.TracingShutdownHook(tp.Shutdown))
	}

	registry := plugins.NewRegistry()
	registry.RegisterSource(java.New())
	registry.RegisterTarget(typescript.New())
	source, err := registry.Source("java")
	if err != nil {
		return err
	}
	target, err := registry.Target("typescript")
	if err != nil {
		return err
	}
	locs, err := locations.Load(cfg.LocationsFile)
	if err != nil {
		return err
	}
	temporalmod.SetDependencies(&temporalmod.Dependencies{
		Engine: converter.New(
			converter.WithPlugins(source, target),
			converter.WithLocations(locs),
		),
	})

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Host,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	w, err := temporalmod.StartWorker(c, cfg.Temporal.TaskQueue)
	if err != nil {
		return err
	}
	shutdown.AddHook(server.TemporalWorkerShutdownHook(w.Stop))
	log.Infow("worker started", "task_queue", cfg.Temporal.TaskQueue, "host", cfg.Temporal.Host)

	shutdown.Start()
	shutdown.Wait()
	return nil
}
