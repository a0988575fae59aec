package graph

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

// MemoryRepository keeps declarations in process. It backs the graph
// commands when no Neo4j server is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]map[string]*ir.Declaration
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{projects: make(map[string]map[string]*ir.Declaration)}
}

func (r *MemoryRepository) StoreDeclarations(ctx context.Context, project string, decls []*ir.Declaration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := r.projects[project]
	if !ok {
		byName = make(map[string]*ir.Declaration)
		r.projects[project] = byName
	}
	for _, d := range decls {
		cp := *d
		cp.Dependencies = slices.Clone(d.Dependencies)
		cp.Fields = slices.Clone(d.Fields)
		cp.Constants = slices.Clone(d.Constants)
		byName[d.Name] = &cp
	}
	return nil
}

func (r *MemoryRepository) LoadDeclarations(ctx context.Context, project string) ([]*ir.Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ir.Declaration, 0, len(r.projects[project]))
	for _, d := range r.projects[project] {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) QueryDependents(ctx context.Context, project, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, d := range r.projects[project] {
		if d.Super == name || slices.Contains(d.Dependencies, name) {
			names = append(names, d.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *MemoryRepository) Close(context.Context) error { return nil }

var _ Repository = (*MemoryRepository)(nil)
