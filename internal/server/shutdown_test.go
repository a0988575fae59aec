package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hookNames(h *ShutdownHandler) []string {
	names := make([]string, len(h.hooks))
	for i, hook := range h.hooks {
		names[i] = hook.Name
	}
	return names
}

func TestNewShutdownHandler(t *testing.T) {
	h := NewShutdownHandler(nil)
	assert.Equal(t, DefaultShutdownConfig().Timeout, h.timeout)
	assert.Len(t, DefaultShutdownConfig().Signals, 2)

	h = NewShutdownHandler(&ShutdownConfig{Timeout: 10 * time.Second})
	assert.Equal(t, 10*time.Second, h.timeout)
}

func TestShutdownHandler_ServeHooksSortedByPriority(t *testing.T) {
	noop := func(context.Context) error { return nil }
	h := NewShutdownHandler(nil)
	h.AddHook(LoggerShutdownHook())
	h.AddHook(GraphStoreShutdownHook(noop))
	h.AddHook(TracingShutdownHook(noop))
	h.AddHook(TemporalWorkerShutdownHook(func() {}))
	h.AddHook(HTTPServerShutdownHook("http", noop))

	assert.Equal(t, []string{"http", "temporal-worker", "tracing", "graph-store", "logger"}, hookNames(h))
}

func TestShutdownHandler_RunsHooksInOrderDespiteErrors(t *testing.T) {
	h := NewShutdownHandler(&ShutdownConfig{Timeout: 5 * time.Second})

	var mu sync.Mutex
	var ran []string
	record := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
			return err
		}
	}
	h.RegisterHook("vector-store", 90, record("vector-store", nil))
	h.RegisterHook("http", 10, record("http", errors.New("listener already closed")))
	h.RegisterHook("temporal-worker", 20, record("temporal-worker", nil))

	h.Start()
	h.Shutdown()
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"http", "temporal-worker", "vector-store"}, ran)
}

func TestShutdownHandler_WaitWithTimeout(t *testing.T) {
	quick := NewShutdownHandler(&ShutdownConfig{Timeout: 5 * time.Second})
	quick.RegisterHook("logger", 99, func(context.Context) error { return nil })
	quick.Start()
	quick.Shutdown()
	assert.True(t, quick.WaitWithTimeout(2*time.Second))

	release := make(chan struct{})
	defer close(release)
	slow := NewShutdownHandler(&ShutdownConfig{Timeout: 10 * time.Second})
	slow.RegisterHook("graph-store", 90, func(context.Context) error {
		<-release
		return nil
	})
	slow.Start()
	go slow.Shutdown()
	assert.False(t, slow.WaitWithTimeout(100*time.Millisecond))
}

func TestShutdownHandler_StartTwiceAndShutdownBeforeStart(t *testing.T) {
	h := NewShutdownHandler(nil)
	h.Shutdown()
	select {
	case <-h.ShutdownCh():
		t.Fatal("shutdown before Start must be ignored")
	default:
	}

	h.Start()
	h.Start()
	assert.True(t, h.started)
}

func TestCommonHooks(t *testing.T) {
	var called []string
	mark := func(name string) func(context.Context) error {
		return func(context.Context) error {
			called = append(called, name)
			return nil
		}
	}
	closeErr := errors.New("qdrant connection already closed")

	tests := []struct {
		hook     ShutdownHook
		name     string
		priority int
		wantErr  error
	}{
		{HTTPServerShutdownHook("http", mark("http")), "http", 10, nil},
		{TemporalWorkerShutdownHook(func() { called = append(called, "temporal-worker") }), "temporal-worker", 20, nil},
		{TracingShutdownHook(mark("tracing")), "tracing", 80, nil},
		{GraphStoreShutdownHook(mark("graph-store")), "graph-store", 90, nil},
		{VectorStoreShutdownHook(func() error { return closeErr }), "vector-store", 90, closeErr},
		{LoggerShutdownHook(), "logger", 99, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.hook.Name)
			assert.Equal(t, tt.priority, tt.hook.Priority)
			err := tt.hook.Fn(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
	assert.Equal(t, []string{"http", "temporal-worker", "tracing", "graph-store"}, called)
}
