package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/honghai9112k/tool-java2ts/internal/depgraph"
	"github.com/honghai9112k/tool-java2ts/internal/graph"
	"github.com/honghai9112k/tool-java2ts/internal/graph/neo4j"
	"github.com/honghai9112k/tool-java2ts/internal/ir"
	"github.com/honghai9112k/tool-java2ts/internal/vector"
	"github.com/honghai9112k/tool-java2ts/internal/vector/qdrant"
)

// projectName defaults to the base name of the input directory.
func (a *app) projectName(flag string) string {
	if flag != "" {
		return flag
	}
	abs, err := filepath.Abs(a.cfg.InputDir)
	if err != nil {
		return filepath.Base(a.cfg.InputDir)
	}
	return filepath.Base(abs)
}

func (a *app) declarations(ctx context.Context) ([]*ir.Declaration, error) {
	return a.newRunner(a.runnerOptions()).Declarations(ctx)
}

func (a *app) openGraph(ctx context.Context, useNeo4j bool) (graph.Repository, error) {
	if !useNeo4j {
		return graph.NewMemory(), nil
	}
	repo, err := neo4j.NewNeo4j(ctx, a.cfg.Graph.URI, a.cfg.Graph.Username, a.cfg.Graph.Password)
	if err != nil {
		return nil, errors.WithHint(err, "start Neo4j or drop --neo4j to use the in-memory graph")
	}
	return repo, nil
}

func (a *app) graphCmd() *cobra.Command {
	var (
		format     string
		out        string
		project    string
		useNeo4j   bool
		fromStore  bool
		dependents string
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the declaration dependency graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project = a.projectName(project)
			repo, err := a.openGraph(ctx, useNeo4j)
			if err != nil {
				return err
			}
			defer repo.Close(context.Background())

			var decls []*ir.Declaration
			if fromStore {
				decls, err = repo.LoadDeclarations(ctx, project)
			} else {
				decls, err = a.declarations(ctx)
				if err == nil {
					err = repo.StoreDeclarations(ctx, project, decls)
				}
			}
			if err != nil {
				return err
			}

			if dependents != "" {
				names, err := repo.QueryDependents(ctx, project, dependents)
				if err != nil {
					return err
				}
				fmt.Printf("%d declarations depend on %s\n", len(names), dependents)
				for _, name := range names {
					fmt.Printf("  %s\n", name)
				}
				return nil
			}

			g := depgraph.Analyze(decls)
			var data []byte
			switch format {
			case "dot":
				data = []byte(depgraph.ExportDOT(g))
			case "mermaid":
				data = []byte(depgraph.ExportMermaid(g))
			case "json":
				data, err = depgraph.ExportJSON(g)
				if err != nil {
					return err
				}
			case "stats":
				data = []byte(depgraph.FormatStats(g))
			default:
				return errors.WithHint(
					errors.Newf("unknown graph format %q", format),
					"valid formats are dot, mermaid, json and stats",
				)
			}

			if out == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", out)
			}
			fmt.Printf("Wrote %s graph of %d declarations to %s\n", format, len(decls), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "stats", "Output format: dot, mermaid, json or stats")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVar(&project, "project", "", "Project name (default: input directory name)")
	cmd.Flags().BoolVar(&useNeo4j, "neo4j", false, "Store the graph in Neo4j")
	cmd.Flags().BoolVar(&fromStore, "from-store", false, "Load declarations from the graph store instead of scanning")
	cmd.Flags().StringVar(&dependents, "dependents", "", "List declarations that extend or reference NAME")
	return cmd
}

func (a *app) indexCmd() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index declarations in Qdrant for similarity search",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			decls, err := a.declarations(ctx)
			if err != nil {
				return err
			}
			repo, err := qdrant.NewQdrant(a.cfg.Vector.Host, a.cfg.Vector.Port, a.cfg.Vector.Collection)
			if err != nil {
				return err
			}
			defer repo.Close()

			embedder := vector.NewEmbedder(a.cfg.Vector.Dimensions, repo)
			if err := repo.EnsureCollection(ctx, embedder.Dimensions()); err != nil {
				return err
			}
			if err := embedder.Index(ctx, a.projectName(project), decls); err != nil {
				return err
			}
			fmt.Printf("Indexed %d declarations into %s\n", len(decls), a.cfg.Vector.Collection)
			return nil
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "Project name (default: input directory name)")
	return cmd
}

func (a *app) similarCmd() *cobra.Command {
	var (
		project   string
		topK      int
		useQdrant bool
	)
	cmd := &cobra.Command{
		Use:   "similar NAME",
		Short: "List declarations structurally similar to NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project = a.projectName(project)
			decls, err := a.declarations(ctx)
			if err != nil {
				return err
			}
			var target *ir.Declaration
			for _, d := range decls {
				if d.Name == args[0] {
					target = d
					break
				}
			}
			if target == nil {
				return errors.Newf("no declaration named %s under %s", args[0], a.cfg.InputDir)
			}

			var repo vector.Repository
			if useQdrant {
				q, err := qdrant.NewQdrant(a.cfg.Vector.Host, a.cfg.Vector.Port, a.cfg.Vector.Collection)
				if err != nil {
					return err
				}
				repo = q
			} else {
				repo = vector.NewMemory()
			}
			defer repo.Close()

			embedder := vector.NewEmbedder(a.cfg.Vector.Dimensions, repo)
			if !useQdrant {
				if err := embedder.Index(ctx, project, decls); err != nil {
					return err
				}
			}
			results, err := embedder.Similar(ctx, project, target, topK)
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			bold.Printf("Declarations similar to %s (%s)\n", target.Name, target.Location)
			for _, r := range results {
				fmt.Printf("  %s  %-30s %s\n", color.CyanString("%.3f", r.Score), r.Metadata["name"], r.Metadata["location"])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "Project name (default: input directory name)")
	cmd.Flags().IntVar(&topK, "top", 5, "Number of results")
	cmd.Flags().BoolVar(&useQdrant, "qdrant", false, "Search the Qdrant index instead of an in-memory one")
	return cmd
}
