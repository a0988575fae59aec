package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStore_CreateAndGetRun(t *testing.T) {
	store := NewStore()
	store.CreateRun(&ConversionRun{ID: "run-1", Mode: "all", Status: StatusRunning, StartedAt: time.Now(), TotalFiles: 10})

	got, ok := store.GetRun("run-1")
	if !ok {
		t.Fatal("Expected to retrieve run, got not found")
	}
	if got.Mode != "all" || got.TotalFiles != 10 {
		t.Errorf("Unexpected run %+v", got)
	}

	if _, ok := store.GetRun("missing"); ok {
		t.Error("Expected missing run not to be found")
	}
}

func TestStore_ListRuns(t *testing.T) {
	store := NewStore()
	now := time.Now()
	store.CreateRun(&ConversionRun{ID: "old", StartedAt: now.Add(-2 * time.Hour)})
	store.CreateRun(&ConversionRun{ID: "new", StartedAt: now})
	store.CreateRun(&ConversionRun{ID: "mid", StartedAt: now.Add(-time.Hour)})

	runs := store.ListRuns()
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if runs[i].ID != want {
			t.Errorf("runs[%d] = %s, want %s", i, runs[i].ID, want)
		}
	}
}

func TestStore_UpdateRunReturnsCopy(t *testing.T) {
	store := NewStore()
	store.CreateRun(&ConversionRun{ID: "run-1", Status: StatusRunning})

	updated, ok := store.UpdateRun("run-1", func(r *ConversionRun) { r.Processed = 5 })
	if !ok || updated.Processed != 5 {
		t.Fatalf("UpdateRun = %+v, %v", updated, ok)
	}
	updated.Processed = 99
	got, _ := store.GetRun("run-1")
	if got.Processed != 5 {
		t.Errorf("Expected stored copy to be unaffected, got %d", got.Processed)
	}

	if _, ok := store.UpdateRun("missing", func(*ConversionRun) {}); ok {
		t.Error("Expected update of missing run to report false")
	}
}

func TestStore_GetStats(t *testing.T) {
	store := NewStore()
	now := time.Now()
	done := now.Add(2 * time.Second)
	store.CreateRun(&ConversionRun{ID: "a", Status: StatusCompleted, StartedAt: now, CompletedAt: &done, Succeeded: 7})
	store.CreateRun(&ConversionRun{ID: "b", Status: StatusFailed, StartedAt: now})
	store.CreateRun(&ConversionRun{ID: "c", Status: StatusRunning, StartedAt: now, Succeeded: 1})

	stats := store.GetStats()
	if stats.TotalRuns != 3 || stats.ActiveRuns != 1 || stats.CompletedRuns != 1 || stats.FailedRuns != 1 {
		t.Errorf("Unexpected counts %+v", stats)
	}
	if stats.FilesConverted != 8 {
		t.Errorf("FilesConverted = %d, want 8", stats.FilesConverted)
	}
	if stats.AvgDuration != 2 {
		t.Errorf("AvgDuration = %v, want 2", stats.AvgDuration)
	}
}

func TestStore_EvictsOldestFinishedRuns(t *testing.T) {
	store := NewStore()
	start := time.Now()
	for i := 0; i <= maxRuns; i++ {
		done := start.Add(time.Duration(i) * time.Second)
		store.CreateRun(&ConversionRun{
			ID:          fmt.Sprintf("run-%03d", i),
			Status:      StatusCompleted,
			StartedAt:   start,
			CompletedAt: &done,
		})
	}
	if n := len(store.ListRuns()); n != maxRuns {
		t.Fatalf("Expected %d runs after eviction, got %d", maxRuns, n)
	}
	if _, ok := store.GetRun("run-000"); ok {
		t.Error("Expected the oldest run to be evicted")
	}
}

func TestEmitter_Lifecycle(t *testing.T) {
	d := New()
	d.Emitter.RunStarted("run-1", "smart", 3)

	run, _ := d.Store.GetRun("run-1")
	if run.Status != StatusRunning || run.TotalFiles != 3 {
		t.Fatalf("Unexpected run after start %+v", run)
	}

	d.Emitter.BatchCompleted("run-1", batch.Progress{Batch: 1, TotalBatches: 2, Processed: 2, Total: 3, Succeeded: 2})
	run, _ = d.Store.GetRun("run-1")
	if run.Processed != 2 || run.Batches != 1 {
		t.Errorf("Unexpected run after batch %+v", run)
	}

	d.Emitter.RunCompleted("run-1", &batch.Summary{
		Message:      "Converted 2/3 files",
		SuccessCount: 2,
		Speed:        "10.0 files/s",
		Results: []batch.FileResult{
			{InputFile: "A.java", Success: true},
			{InputFile: "B.java", Success: true},
			{InputFile: "C.java", Error: batch.ReasonTooSmall},
		},
	})
	run, _ = d.Store.GetRun("run-1")
	if run.Status != StatusCompleted || run.CompletedAt == nil {
		t.Fatalf("Expected completed run, got %+v", run)
	}
	if run.Processed != 3 || run.Succeeded != 2 {
		t.Errorf("Unexpected counters %+v", run)
	}
	if run.Failures["C.java"] != batch.ReasonTooSmall {
		t.Errorf("Failures = %v", run.Failures)
	}
}

func TestEmitter_RunFailedWithoutStart(t *testing.T) {
	d := New()
	d.Emitter.RunFailed("run-x", "all", errors.New("no Java files found"))

	run, ok := d.Store.GetRun("run-x")
	if !ok {
		t.Fatal("Expected failed run to be recorded")
	}
	if run.Status != StatusFailed || run.Error != "no Java files found" {
		t.Errorf("Unexpected run %+v", run)
	}
}

func newRouter(d *Dashboard) *gin.Engine {
	r := gin.New()
	d.RegisterRoutes(r)
	return r
}

func TestRoutes_Runs(t *testing.T) {
	d := New()
	d.Emitter.RunStarted("run-1", "all", 1)
	r := newRouter(d)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var runs []ConversionRun
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Errorf("Unexpected runs %+v", runs)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/run-1", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"mode":"all"`) {
		t.Errorf("GET /runs/run-1 = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if !strings.Contains(rec.Body.String(), `"active_runs":1`) {
		t.Errorf("Unexpected stats %s", rec.Body.String())
	}
}

func TestRoutes_EventStream(t *testing.T) {
	d := New()
	srv := httptest.NewServer(newRouter(d))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	next := func() Event {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var ev Event
				if err := json.Unmarshal([]byte(data), &ev); err != nil {
					t.Fatalf("decode %q: %v", data, err)
				}
				return ev
			}
		}
	}

	if ev := next(); ev.Type != EventConnected {
		t.Fatalf("first event = %q, want %q", ev.Type, EventConnected)
	}

	d.Emitter.RunStarted("run-1", "all", 2)
	ev := next()
	if ev.Type != EventRunStarted || ev.RunID != "run-1" {
		t.Errorf("Unexpected event %+v", ev)
	}
}

func TestHub_NoWritesAfterUnregister(t *testing.T) {
	rec := httptest.NewRecorder()
	client, err := NewClient(rec)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	hub := NewHub()
	hub.Register(client)

	go client.KeepAlive(time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	hub.Unregister(client)

	before := rec.Body.String()
	if !strings.Contains(before, ": ping") {
		t.Fatalf("expected keep-alive pings before unregister, got %q", before)
	}

	client.send([]byte(`{"type":"late"}`))
	client.ping()
	hub.Broadcast(&Event{Type: EventConnected, Timestamp: time.Now()})
	time.Sleep(20 * time.Millisecond)

	if after := rec.Body.String(); after != before {
		t.Errorf("writer touched after unregister: %q", strings.TrimPrefix(after, before))
	}
	if hub.Len() != 0 {
		t.Errorf("expected no clients, got %d", hub.Len())
	}

	hub.Unregister(client)
}
