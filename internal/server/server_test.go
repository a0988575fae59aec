package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
	"github.com/honghai9112k/tool-java2ts/internal/converter"
	"github.com/honghai9112k/tool-java2ts/internal/dashboard"
	"github.com/honghai9112k/tool-java2ts/internal/importfix"
	"github.com/honghai9112k/tool-java2ts/internal/ir"
	"github.com/honghai9112k/tool-java2ts/internal/observability"
)

func newTestServer(t *testing.T, files map[string]string) (*Server, string, *dashboard.Dashboard) {
	t.Helper()
	in := t.TempDir()
	out := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(in, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	d := dashboard.New()
	s := New(&Config{InputDir: in, OutputDir: out, SkipPattern: "test", Version: "test"},
		converter.New(),
		WithMetrics(observability.NewConverterMetrics()),
		WithDashboard(d),
	)
	return s, out, d
}

func post(s *Server, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	rec := get(s.Handler(), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Convert All")
	assert.Contains(t, rec.Body.String(), "Update Imports")
}

func TestConvertAllThenUpdateImports(t *testing.T) {
	s, out, d := newTestServer(t, map[string]string{
		"entity/common/AbstractEntity.java": `public class AbstractEntity { private Long id; private String createdBy; }`,
		"entity/customize/Product.java":     `public class Product extends AbstractEntity { private String name; }`,
		"entity/customize/ProductTest.java": `public class ProductTest { private String ignored; }`,
	})

	rec := post(s, "/convert-all", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary batch.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, "all", summary.Mode)

	run, ok := d.Store.GetRun(summary.RunID)
	require.True(t, ok)
	assert.Equal(t, dashboard.StatusCompleted, run.Status)

	rec = post(s, "/update-imports", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report importfix.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Success)
	assert.Equal(t, 2, report.TotalFiles)
	assert.Equal(t, 1, report.UpdatedFiles)

	product, err := os.ReadFile(filepath.Join(out, "entity", "customize", "Product.ts"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(product),
		"import { AbstractEntity } from '../../entity/common/AbstractEntity';\n\n"), string(product))
}

func TestConvertModes(t *testing.T) {
	for _, mode := range batch.ModeNames() {
		t.Run(mode, func(t *testing.T) {
			s, _, _ := newTestServer(t, map[string]string{
				"Status.java": `public enum Status { ACTIVE("active"), INACTIVE("inactive"), PENDING }`,
			})
			rec := post(s, "/convert-"+mode, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var summary batch.Summary
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
			assert.Equal(t, mode, summary.Mode)
			assert.Equal(t, 1, summary.SuccessCount)
		})
	}
}

func TestConvertAll_NoInputs(t *testing.T) {
	s, _, d := newTestServer(t, nil)

	rec := post(s, "/convert-all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), batch.ErrNoInputs.Error())

	runs := d.Store.ListRuns()
	require.Len(t, runs, 1)
	assert.Equal(t, dashboard.StatusFailed, runs[0].Status)
}

func TestUpdateImports_NoOutputs(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := post(s, "/update-imports", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), importfix.ErrNoOutputs.Error())
}

func TestConvertSingle(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	body := `{"source":"public class Product extends AbstractEntity { private Money price; }","location":"entity/customize/Product"}`
	rec := post(s, "/convert", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, ir.OutcomeConverted, resp.Outcome)
	assert.Contains(t, resp.Output, "export interface Product extends AbstractEntity {")
	assert.Contains(t, resp.Output, "import { Money } from '../../utils/base/Money';")
}

func TestConvertSingle_FastSentinel(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := post(s, "/convert", `{"source":"public class Main { public static void main(String[] a) {} }","fast":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, ir.OutcomeSkipped, resp.Outcome)
	assert.Equal(t, "// Skipped: Not suitable for interface conversion\n", resp.Output)
}

func TestConvertSingle_BadRequest(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := post(s, "/convert", `{"location":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t, map[string]string{
		"Product.java": `public class Product { private String name; private Integer stock; }`,
	})
	post(s, "/convert-all", "")

	rec := get(s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "j2ts_files_converted_total 1")
}

func TestHealthRoutesMounted(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	s.Health().SetReady(true)

	for _, path := range []string{"/health", "/ready", "/live", "/healthz"} {
		assert.Equal(t, http.StatusOK, get(s.Handler(), path).Code, path)
	}
}
