package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
	"github.com/honghai9112k/tool-java2ts/internal/converter"
	"github.com/honghai9112k/tool-java2ts/internal/observability"
)

const (
	baseSource  = `public class BaseEntity { private Long id; private Date createdAt; }`
	childSource = `public class Product extends BaseEntity { private String name; }`
)

type harness struct {
	in, out string
	cycles  chan Cycle
	cancel  context.CancelFunc
	done    chan error
}

func start(t *testing.T, updateImports bool) *harness {
	t.Helper()
	h := &harness{in: t.TempDir(), out: t.TempDir(), cycles: make(chan Cycle, 8), done: make(chan error, 1)}
	runner := batch.NewRunner(converter.New(), batch.Options{InputDir: h.in, OutputDir: h.out, SkipPattern: "test"},
		batch.WithMetrics(observability.NewConverterMetrics()))
	mode, err := batch.LookupMode("all")
	require.NoError(t, err)

	w, err := New(runner, Options{
		Mode:          mode,
		Debounce:      20 * time.Millisecond,
		UpdateImports: updateImports,
		OnCycle:       func(c Cycle) { h.cycles <- c },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h
}

func (h *harness) write(t *testing.T, rel, content string) {
	t.Helper()
	p := filepath.Join(h.in, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func (h *harness) next(t *testing.T) Cycle {
	t.Helper()
	select {
	case c := <-h.cycles:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a watch cycle")
		return Cycle{}
	}
}

func TestWatcher_ConvertsChangedFile(t *testing.T) {
	h := start(t, false)
	h.write(t, "BaseEntity.java", baseSource)

	c := h.next(t)
	require.Len(t, c.Results, 1)
	assert.True(t, c.Results[0].Success)
	assert.Nil(t, c.Imports)

	data, err := os.ReadFile(filepath.Join(h.out, "BaseEntity.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "export interface BaseEntity {")
}

func TestWatcher_IgnoresFilteredFiles(t *testing.T) {
	h := start(t, false)
	h.write(t, "notes.txt", "not java")
	h.write(t, "ProductTest.java", childSource)
	h.write(t, "BaseEntity.java", baseSource)

	c := h.next(t)
	require.Len(t, c.Results, 1)
	assert.Equal(t, "BaseEntity.java", c.Results[0].InputFile)
}

func TestWatcher_NewDirectoryAndImports(t *testing.T) {
	h := start(t, true)
	h.write(t, "BaseEntity.java", baseSource)
	h.next(t)

	h.write(t, "catalog/Product.java", childSource)
	var c Cycle
	for len(c.Results) == 0 {
		c = h.next(t)
	}
	require.Len(t, c.Results, 1)
	assert.Equal(t, "catalog/Product.java", c.Results[0].InputFile)
	require.NotNil(t, c.Imports)
	assert.Equal(t, 1, c.Imports.UpdatedFiles)

	data, err := os.ReadFile(filepath.Join(h.out, "catalog", "Product.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "import { BaseEntity } from '../BaseEntity';")
}

func TestWatcher_RemovesOutputOfDeletedInput(t *testing.T) {
	h := start(t, false)
	h.write(t, "BaseEntity.java", baseSource)
	h.next(t)
	out := filepath.Join(h.out, "BaseEntity.ts")
	require.FileExists(t, out)

	require.NoError(t, os.Remove(filepath.Join(h.in, "BaseEntity.java")))
	var c Cycle
	for len(c.Removed) == 0 {
		c = h.next(t)
	}
	assert.Equal(t, []string{"BaseEntity.java"}, c.Removed)
	assert.NoFileExists(t, out)
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	h := start(t, false)
	h.cancel()
	select {
	case err := <-h.done:
		assert.NoError(t, err)
		h.done <- err
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
