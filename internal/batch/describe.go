package batch

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

const describeLimit = 16

// Declarations extracts the declaration of every input without writing any
// output. Each declaration carries its location. Inputs without a usable
// declaration are left out; the result keeps walk order.
func (r *Runner) Declarations(ctx context.Context) ([]*ir.Declaration, error) {
	files, err := Walk(r.opts.InputDir, r.WalkOptions())
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoInputs
	}

	found := make([]*ir.Declaration, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit(describeLimit))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f.FullPath)
			if err != nil {
				return errors.Wrapf(err, "reading %s", f.RelativePath)
			}
			decl, outcome := r.engine.Describe(string(data), f.Location())
			if outcome == ir.OutcomeConverted {
				found[i] = decl
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	decls := make([]*ir.Declaration, 0, len(found))
	for _, d := range found {
		if d != nil {
			decls = append(decls, d)
		}
	}
	return decls, nil
}
