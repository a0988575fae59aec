// Package graph stores the declaration dependency graph of a project so that
// it can be queried after a conversion run.
package graph

import (
	"context"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

// Repository provides graph storage for converted declarations.
type Repository interface {
	// StoreDeclarations persists declarations and their extends and
	// references relationships under a project.
	StoreDeclarations(ctx context.Context, project string, decls []*ir.Declaration) error
	// LoadDeclarations retrieves the declarations of a project ordered by name.
	LoadDeclarations(ctx context.Context, project string) ([]*ir.Declaration, error)
	// QueryDependents returns the names of declarations that extend or
	// reference name.
	QueryDependents(ctx context.Context, project, name string) ([]string, error)
	// Close releases resources.
	Close(ctx context.Context) error
}
