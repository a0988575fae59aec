package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/honghai9112k/tool-java2ts/internal/graph/neo4j"
	"github.com/honghai9112k/tool-java2ts/internal/logging"
	"github.com/honghai9112k/tool-java2ts/internal/server"
	temporalmod "github.com/honghai9112k/tool-java2ts/internal/temporal"
	"github.com/honghai9112k/tool-java2ts/internal/vector/qdrant"
	"github.com/honghai9112k/tool-java2ts/internal/watch"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr        string
		checkStores bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion API, dashboard and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			shutdown := server.NewShutdownHandler(nil)
			opts := []server.Option{
				server.WithHealthCheck("input", server.DirectoryHealthChecker(a.cfg.InputDir, statDir)),
			}
			if checkStores {
				opts = append(opts, a.storeChecks(cmd.Context(), shutdown)...)
			}

			srv := server.New(&server.Config{
				Addr:        addr,
				InputDir:    a.cfg.InputDir,
				OutputDir:   a.cfg.OutputDir,
				SkipPattern: a.cfg.Batch.SkipPattern,
				Incremental: a.cfg.Incremental,
				Version:     version,
			}, a.engine, opts...)

			shutdown.AddHook(server.HTTPServerShutdownHook("http", srv.Shutdown))
			shutdown.AddHook(server.LoggerShutdownHook())
			shutdown.Start()

			if err := srv.Start(); err != nil {
				return err
			}
			shutdown.Wait()
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&checkStores, "check-stores", false, "Report Neo4j, Qdrant and Temporal on /health")
	return cmd
}

// storeChecks connects to the optional backends and returns their health
// checks. A backend that cannot be reached at startup is logged and skipped.
func (a *app) storeChecks(ctx context.Context, shutdown *server.ShutdownHandler) []server.Option {
	log := logging.Named("serve")
	var opts []server.Option

	if repo, err := neo4j.NewNeo4j(ctx, a.cfg.Graph.URI, a.cfg.Graph.Username, a.cfg.Graph.Password); err != nil {
		log.Warnw("graph store unavailable", "uri", a.cfg.Graph.URI, "error", err)
	} else {
		opts = append(opts, server.WithHealthCheck("graph", server.StoreHealthChecker("neo4j", a.cfg.Graph.URI, repo.Ping)))
		shutdown.AddHook(server.GraphStoreShutdownHook(repo.Close))
	}

	endpoint := fmt.Sprintf("%s:%d", a.cfg.Vector.Host, a.cfg.Vector.Port)
	if repo, err := qdrant.NewQdrant(a.cfg.Vector.Host, a.cfg.Vector.Port, a.cfg.Vector.Collection); err != nil {
		log.Warnw("vector index unavailable", "endpoint", endpoint, "error", err)
	} else {
		opts = append(opts, server.WithHealthCheck("vector", server.StoreHealthChecker("qdrant", endpoint, repo.Ping)))
		shutdown.AddHook(server.VectorStoreShutdownHook(repo.Close))
	}

	c, err := client.NewLazyClient(client.Options{
		HostPort:  a.cfg.Temporal.Host,
		Namespace: a.cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Warnw("temporal client unavailable", "host", a.cfg.Temporal.Host, "error", err)
		return opts
	}
	opts = append(opts, server.WithHealthCheck("temporal", server.TemporalHealthChecker(func(ctx context.Context) error {
		_, err := c.CheckHealth(ctx, &client.CheckHealthRequest{})
		return err
	})))
	shutdown.AddHook(server.ShutdownHook{Name: "temporal-client", Priority: server.PriorityStore, Fn: func(context.Context) error {
		c.Close()
		return nil
	}})
	return opts
}

func (a *app) workflowCmd() *cobra.Command {
	var (
		mode          string
		updateImports bool
		wait          bool
	)
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Start a durable conversion on a Temporal worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.modeOrDefault(mode)
			if err != nil {
				return err
			}
			c, err := client.Dial(client.Options{
				HostPort:  a.cfg.Temporal.Host,
				Namespace: a.cfg.Temporal.Namespace,
			})
			if err != nil {
				return errors.Wrap(err, "temporal client")
			}
			defer c.Close()

			input := temporalmod.ConversionInput{
				Mode:          m.Name,
				InputDir:      a.cfg.InputDir,
				OutputDir:     a.cfg.OutputDir,
				SkipPattern:   a.cfg.Batch.SkipPattern,
				Incremental:   a.cfg.Incremental,
				UpdateImports: updateImports,
			}
			run, err := c.ExecuteWorkflow(cmd.Context(), client.StartWorkflowOptions{
				ID:        fmt.Sprintf("j2ts-%s-%d", m.Name, time.Now().Unix()),
				TaskQueue: a.cfg.Temporal.TaskQueue,
			}, temporalmod.ConversionWorkflow, input)
			if err != nil {
				return errors.Wrap(err, "starting workflow")
			}
			fmt.Printf("Started workflow %s (run %s)\n", run.GetID(), run.GetRunID())
			if !wait {
				return nil
			}

			var out temporalmod.ConversionOutput
			if err := run.Get(cmd.Context(), &out); err != nil {
				return errors.Wrap(err, "workflow failed")
			}
			fmt.Printf("Converted %d/%d files (%d unchanged, %d imports updated)\n",
				out.SuccessCount, out.TotalFiles, out.Unchanged, out.UpdatedImports)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Batch mode (default from config)")
	cmd.Flags().BoolVar(&updateImports, "update-imports", true, "Update imports after converting")
	cmd.Flags().BoolVar(&wait, "wait", true, "Wait for the workflow result")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var (
		mode          string
		debounce      time.Duration
		updateImports bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconvert Java files as they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.modeOrDefault(mode)
			if err != nil {
				return err
			}
			opts := a.runnerOptions()
			opts.Incremental = false
			w, err := watch.New(a.newRunner(opts), watch.Options{
				Mode:          m,
				Debounce:      debounce,
				UpdateImports: updateImports,
				OnCycle: func(c watch.Cycle) {
					for _, r := range c.Results {
						status := "✔"
						if !r.Success {
							status = "✗"
						}
						fmt.Printf("%s %s %s\n", status, r.InputFile, r.Error)
					}
					for _, path := range c.Removed {
						fmt.Printf("- %s\n", path)
					}
				},
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logging.Named("watch").Infow("Press Ctrl+C to stop")
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Batch mode (default from config)")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before converting a burst of changes")
	cmd.Flags().BoolVar(&updateImports, "update-imports", true, "Update imports after each burst")
	return cmd
}

func statDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.Newf("%s is not a directory", path)
	}
	return nil
}
