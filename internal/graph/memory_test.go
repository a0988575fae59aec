package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honghai9112k/tool-java2ts/internal/ir"
)

func sample() []*ir.Declaration {
	return []*ir.Declaration{
		{Kind: ir.KindClass, Name: "Product", Super: "BaseEntity", Location: "catalog/Product",
			Dependencies: []string{"Category", "BaseEntity"}},
		{Kind: ir.KindClass, Name: "Category", Location: "catalog/Category"},
		{Kind: ir.KindClass, Name: "BaseEntity", Location: "common/BaseEntity"},
		{Kind: ir.KindClass, Name: "Order", Location: "order/Order", Dependencies: []string{"Product"}},
	}
}

func TestMemoryRepository_StoreAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.StoreDeclarations(ctx, "shop", sample()))

	decls, err := repo.LoadDeclarations(ctx, "shop")
	require.NoError(t, err)
	require.Len(t, decls, 4)
	assert.Equal(t, "BaseEntity", decls[0].Name)
	assert.Equal(t, "Product", decls[3].Name)
	assert.Equal(t, []string{"Category", "BaseEntity"}, decls[3].Dependencies)

	other, err := repo.LoadDeclarations(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemoryRepository_StoreReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.StoreDeclarations(ctx, "shop", sample()))
	require.NoError(t, repo.StoreDeclarations(ctx, "shop", []*ir.Declaration{
		{Kind: ir.KindClass, Name: "Order", Location: "order/Order"},
	}))

	deps, err := repo.QueryDependents(ctx, "shop", "Product")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestMemoryRepository_StoredCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	decls := sample()
	require.NoError(t, repo.StoreDeclarations(ctx, "shop", decls))
	decls[0].Dependencies[0] = "Changed"

	loaded, err := repo.LoadDeclarations(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, "Category", loaded[3].Dependencies[0])
}

func TestMemoryRepository_QueryDependents(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.StoreDeclarations(ctx, "shop", sample()))

	deps, err := repo.QueryDependents(ctx, "shop", "BaseEntity")
	require.NoError(t, err)
	assert.Equal(t, []string{"Product"}, deps)

	deps, err = repo.QueryDependents(ctx, "shop", "Product")
	require.NoError(t, err)
	assert.Equal(t, []string{"Order"}, deps)
}

func TestMemoryRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewMemory()

	assert.ErrorIs(t, repo.StoreDeclarations(ctx, "shop", sample()), context.Canceled)
	_, err := repo.LoadDeclarations(ctx, "shop")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, repo.Close(ctx))
}
