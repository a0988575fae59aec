package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honghai9112k/tool-java2ts/internal/converter"
	"github.com/honghai9112k/tool-java2ts/internal/ir"
	"github.com/honghai9112k/tool-java2ts/internal/observability"
)

const productSource = `public class Product { private String name; private List<String> tags; }`

const productTS = "export interface Product {\n  name?: string;\n  tags?: string[];\n}\n"

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func newTestRunner(t *testing.T, in string, opts Options, ro ...RunnerOption) (*Runner, string) {
	t.Helper()
	out := t.TempDir()
	opts.InputDir = in
	opts.OutputDir = out
	ro = append([]RunnerOption{WithMetrics(observability.NewConverterMetrics())}, ro...)
	return NewRunner(converter.New(), opts, ro...), out
}

func TestWalk(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Root.java":                    productSource,
		"entity/catalog/Item.java":     productSource,
		"entity/catalog/ItemTest.java": productSource,
		"entity/readme.md":             "notes",
	})

	files, err := Walk(root, WalkOptions{Extensions: []string{".java"}, SkipPattern: "test"})
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "Root.java", files[0].RelativePath)
	assert.Equal(t, "", files[0].Directory)
	assert.Equal(t, "Root", files[0].Location())

	assert.Equal(t, "entity/catalog/Item.java", files[1].RelativePath)
	assert.Equal(t, "entity/catalog", files[1].Directory)
	assert.Equal(t, "Item", files[1].BaseName())
	assert.Equal(t, "entity/catalog/Item", files[1].Location())
}

func TestWalk_NoSkipPattern(t *testing.T) {
	root := writeTree(t, map[string]string{"ProductTest.java": productSource})
	files, err := Walk(root, WalkOptions{Extensions: []string{".java"}})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestLookupMode(t *testing.T) {
	for _, name := range ModeNames() {
		m, err := LookupMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, m.Name)
		assert.Positive(t, m.Size)
	}

	simple, _ := LookupMode("simple")
	assert.Equal(t, 15, simple.Size)
	assert.Equal(t, 50, simple.MinSize)

	full, _ := LookupMode("full")
	assert.False(t, full.Fast)
	assert.True(t, full.WithLocation)

	_, err := LookupMode("turbo")
	assert.Error(t, err)
}

func TestRun_AllMode(t *testing.T) {
	in := writeTree(t, map[string]string{
		"entity/catalog/Product.java": productSource,
		"entity/catalog/Tiny.java":    "class A {}",
		"util/Notes.java":             "// nothing to convert in this file at all",
	})
	r, out := newTestRunner(t, in, Options{})
	mode, _ := LookupMode("all")

	summary, err := r.Run(context.Background(), mode)
	require.NoError(t, err)

	assert.True(t, summary.Success)
	assert.Equal(t, "all", summary.Mode)
	assert.Equal(t, 3, summary.TotalFiles)
	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailureCount())
	assert.Equal(t, "Converted 2/3 files", summary.Message)
	assert.Contains(t, summary.Speed, "files/s")
	assert.NotEmpty(t, summary.RunID)

	byInput := make(map[string]FileResult)
	for _, res := range summary.Results {
		byInput[res.InputFile] = res
	}

	product := byInput["entity/catalog/Product.java"]
	assert.True(t, product.Success)
	assert.Equal(t, "Product.ts", product.OutputFile)
	assert.Equal(t, "entity/catalog", product.Directory)
	assert.Equal(t, "Product", product.Name)
	got, err := os.ReadFile(filepath.Join(out, "entity", "catalog", "Product.ts"))
	require.NoError(t, err)
	assert.Equal(t, productTS, string(got))

	tiny := byInput["entity/catalog/Tiny.java"]
	assert.False(t, tiny.Success)
	assert.Equal(t, ReasonTooSmall, tiny.Error)
	assert.Equal(t, ir.OutcomeTooSmall, tiny.Outcome)

	notes := byInput["util/Notes.java"]
	assert.True(t, notes.Success)
	assert.Equal(t, ir.OutcomeNoDeclaration, notes.Outcome)
	got, err = os.ReadFile(filepath.Join(out, "util", "Notes.ts"))
	require.NoError(t, err)
	assert.Equal(t, "// No valid class or enum found\n", string(got))
}

func TestRun_FullModeReportsNoContent(t *testing.T) {
	in := writeTree(t, map[string]string{
		"Product.java": productSource,
		"Notes.java":   "// nothing to convert in this file at all",
	})
	r, out := newTestRunner(t, in, Options{})
	mode, _ := LookupMode("full")

	summary, err := r.Run(context.Background(), mode)
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	assert.Equal(t, "Notes.java", summary.Results[0].InputFile)
	assert.False(t, summary.Results[0].Success)
	assert.Equal(t, ReasonNoContent, summary.Results[0].Error)
	_, err = os.Stat(filepath.Join(out, "Notes.ts"))
	assert.True(t, os.IsNotExist(err))

	assert.True(t, summary.Results[1].Success)
}

func TestRun_MinSizeOverride(t *testing.T) {
	in := writeTree(t, map[string]string{"Product.java": productSource})
	r, _ := newTestRunner(t, in, Options{MinSize: 500})
	mode, _ := LookupMode("all")

	summary, err := r.Run(context.Background(), mode)
	require.NoError(t, err)
	assert.Equal(t, ReasonTooSmall, summary.Results[0].Error)
}

func TestRun_NoInputs(t *testing.T) {
	in := writeTree(t, map[string]string{"readme.md": "docs"})
	r, _ := newTestRunner(t, in, Options{})
	mode, _ := LookupMode("all")

	summary, err := r.Run(context.Background(), mode)
	assert.ErrorIs(t, err, ErrNoInputs)
	require.NotNil(t, summary)
	assert.False(t, summary.Success)
	assert.Equal(t, ErrNoInputs.Error(), summary.Message)
}

func TestRun_Cancelled(t *testing.T) {
	in := writeTree(t, map[string]string{"Product.java": productSource})
	r, _ := newTestRunner(t, in, Options{})
	mode, _ := LookupMode("all")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := r.Run(ctx, mode)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, summary.Success)
}

func TestRun_Incremental(t *testing.T) {
	in := writeTree(t, map[string]string{
		"Product.java": productSource,
		"Order.java":   `public class Order { private Long id; private Product product; }`,
	})
	out := t.TempDir()
	newRunner := func() *Runner {
		return NewRunner(converter.New(), Options{InputDir: in, OutputDir: out, Incremental: true},
			WithMetrics(observability.NewConverterMetrics()))
	}
	mode, _ := LookupMode("smart")

	first, err := newRunner().Run(context.Background(), mode)
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalFiles)
	assert.Equal(t, 0, first.Unchanged)

	second, err := newRunner().Run(context.Background(), mode)
	require.NoError(t, err)
	assert.Equal(t, 0, second.TotalFiles)
	assert.Equal(t, 2, second.Unchanged)
	assert.True(t, second.Success)

	require.NoError(t, os.WriteFile(filepath.Join(in, "Order.java"),
		[]byte(`public class Order { private Long id; private String note; }`), 0o644))
	third, err := newRunner().Run(context.Background(), mode)
	require.NoError(t, err)
	require.Equal(t, 1, third.TotalFiles)
	assert.Equal(t, "Order.java", third.Results[0].InputFile)
	assert.Equal(t, 1, third.Unchanged)

	require.NoError(t, os.Remove(filepath.Join(out, "Product.ts")))
	fourth, err := newRunner().Run(context.Background(), mode)
	require.NoError(t, err)
	require.Equal(t, 1, fourth.TotalFiles)
	assert.Equal(t, "Product.java", fourth.Results[0].InputFile)
}

type recordingObserver struct {
	mu       sync.Mutex
	started  int
	batches  []Progress
	finished *Summary
}

func (o *recordingObserver) RunStarted(string, string, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *recordingObserver) BatchCompleted(_ string, p Progress) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batches = append(o.batches, p)
}

func (o *recordingObserver) RunCompleted(_ string, s *Summary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = s
}

func TestRun_Observer(t *testing.T) {
	in := writeTree(t, map[string]string{
		"A.java": `public class Alpha { private String a; }`,
		"B.java": `public class Beta { private String b; }`,
		"C.java": `public class Gamma { private String c; }`,
	})
	rec := &recordingObserver{}
	r, _ := newTestRunner(t, in, Options{Size: 2}, WithObserver(rec))
	mode, _ := LookupMode("all")

	summary, err := r.Run(context.Background(), mode)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.started)
	require.Len(t, rec.batches, 2)
	assert.Equal(t, 1, rec.batches[0].Batch)
	assert.Equal(t, 2, rec.batches[0].Processed)
	assert.Equal(t, 3, rec.batches[1].Processed)
	assert.Equal(t, 3, rec.batches[1].Succeeded)
	assert.Equal(t, 2, rec.batches[1].TotalBatches)
	assert.Same(t, summary, rec.finished)
}

func TestRun_Metrics(t *testing.T) {
	in := writeTree(t, map[string]string{
		"Product.java": productSource,
		"Tiny.java":    "class A {}",
	})
	m := observability.NewConverterMetrics()
	r, _ := newTestRunner(t, in, Options{}, WithMetrics(m))
	mode, _ := LookupMode("full")

	_, err := r.Run(context.Background(), mode)
	require.NoError(t, err)
	assert.Equal(t, float64(1), m.FilesConverted.Value())
	assert.Equal(t, float64(1), m.FilesFailed.Value())
	assert.Equal(t, uint64(2), m.FileDuration.Count())
	assert.Equal(t, float64(0), m.RunsActive.Value())
}

func TestConsoleObserver(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	o := NewConsoleObserver(&buf)

	o.RunStarted("run-1", "all", 3)
	o.BatchCompleted("run-1", Progress{Batch: 1, TotalBatches: 1, Processed: 3, Total: 3, Succeeded: 3, Speed: 12.5})
	o.RunCompleted("run-1", &Summary{Message: "Converted 3/3 files", ProcessingTime: 240, Speed: "12.5 files/s", SuccessCount: 3})

	out := buf.String()
	assert.Contains(t, out, "all: 3 files (run run-1)")
	assert.Contains(t, out, "completed 3/3 (3 OK) - Speed: 12.5 files/s - ETA: 0s")
	assert.Contains(t, out, "Converted 3/3 files in 240ms (12.5 files/s)")
}

func TestNewFile(t *testing.T) {
	root := t.TempDir()
	f, err := NewFile(root, filepath.Join(root, "order", "Order.java"))
	require.NoError(t, err)
	assert.Equal(t, "order/Order.java", f.RelativePath)
	assert.Equal(t, "order", f.Directory)
	assert.Equal(t, "order/Order", f.Location())

	_, err = NewFile(root, filepath.Join(filepath.Dir(root), "Elsewhere.java"))
	assert.Error(t, err)
}

func TestWalkOptions_Accepts(t *testing.T) {
	opts := WalkOptions{Extensions: []string{".java"}, SkipPattern: "Test"}
	assert.True(t, opts.Accepts("Order.java"))
	assert.False(t, opts.Accepts("OrderTest.java"))
	assert.False(t, opts.Accepts("ordertest.java"))
	assert.False(t, opts.Accepts("Order.kt"))
}

func TestConvertFile(t *testing.T) {
	in := writeTree(t, map[string]string{"catalog/Product.java": productSource})
	r, out := newTestRunner(t, in, Options{})
	f, err := NewFile(in, filepath.Join(in, "catalog", "Product.java"))
	require.NoError(t, err)

	mode, err := LookupMode("full")
	require.NoError(t, err)
	res := r.ConvertFile(context.Background(), f, mode)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Product", res.Name)

	data, err := os.ReadFile(filepath.Join(out, "catalog", "Product.ts"))
	require.NoError(t, err)
	assert.Equal(t, productTS, string(data))
}

func TestDeclarations(t *testing.T) {
	in := writeTree(t, map[string]string{
		"catalog/Product.java":     `public class Product extends BaseEntity { private Category category; }`,
		"catalog/Category.java":    `public class Category { private String name; private int rank; }`,
		"Blank.java":               "// nothing to see in this file at all",
		"catalog/ProductTest.java": productSource,
	})
	r, _ := newTestRunner(t, in, Options{SkipPattern: "test"})

	decls, err := r.Declarations(context.Background())
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, "Category", decls[0].Name)
	assert.Equal(t, "catalog/Category", decls[0].Location)
	assert.Equal(t, "Product", decls[1].Name)
	assert.Equal(t, []string{"Category", "BaseEntity"}, decls[1].Dependencies)

	_, err = NewRunner(converter.New(), Options{InputDir: t.TempDir()}).Declarations(context.Background())
	assert.ErrorIs(t, err, ErrNoInputs)
}
