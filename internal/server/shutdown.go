package server

import (
	"cmp"
	"context"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/honghai9112k/tool-java2ts/internal/logging"
)

// ShutdownHandler runs registered hooks in priority order once a signal
// arrives or Shutdown is called.
type ShutdownHandler struct {
	mu           sync.Mutex
	hooks        []ShutdownHook
	timeout      time.Duration
	signals      []os.Signal
	shutdownCh   chan struct{}
	doneCh       chan struct{}
	started      bool
	shutdownOnce sync.Once
	doneOnce     sync.Once
}

// ShutdownHook is one step of the shutdown sequence.
type ShutdownHook struct {
	Name     string
	Priority int
	Fn       func(ctx context.Context) error
}

// ShutdownConfig configures the shutdown handler.
type ShutdownConfig struct {
	// Timeout for graceful shutdown (default: 30s)
	Timeout time.Duration
	// Signals to listen for (default: SIGTERM, SIGINT)
	Signals []os.Signal
}

// DefaultShutdownConfig returns default configuration.
func DefaultShutdownConfig() *ShutdownConfig {
	return &ShutdownConfig{
		Timeout: 30 * time.Second,
		Signals: []os.Signal{syscall.SIGTERM, syscall.SIGINT},
	}
}

// NewShutdownHandler creates a new shutdown handler.
func NewShutdownHandler(config *ShutdownConfig) *ShutdownHandler {
	if config == nil {
		config = DefaultShutdownConfig()
	}

	return &ShutdownHandler{
		timeout:    config.Timeout,
		signals:    config.Signals,
		shutdownCh: make(chan struct{}, 1),
		doneCh:     make(chan struct{}),
	}
}

// RegisterHook adds a shutdown hook.
func (s *ShutdownHandler) RegisterHook(name string, priority int, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, ShutdownHook{Name: name, Priority: priority, Fn: fn})
	slices.SortStableFunc(s.hooks, func(a, b ShutdownHook) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
}

// Start begins listening for shutdown signals.
func (s *ShutdownHandler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, s.signals...)

	go func() {
		select {
		case sig := <-sigCh:
			signal.Stop(sigCh)
			s.shutdown(sig)
		case <-s.shutdownCh:
			signal.Stop(sigCh)
			s.shutdown(nil)
		}
	}()
}

// Shutdown triggers a manual shutdown.
func (s *ShutdownHandler) Shutdown() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
	})
}

// Wait blocks until shutdown is complete.
func (s *ShutdownHandler) Wait() {
	<-s.doneCh
}

// WaitWithTimeout blocks until shutdown is complete or timeout.
func (s *ShutdownHandler) WaitWithTimeout(timeout time.Duration) bool {
	select {
	case <-s.doneCh:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Done returns a channel that closes when shutdown is complete.
func (s *ShutdownHandler) Done() <-chan struct{} {
	return s.doneCh
}

// ShutdownCh returns a channel that receives when shutdown starts.
func (s *ShutdownHandler) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

func (s *ShutdownHandler) shutdown(sig os.Signal) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.mu.Lock()
	hooks := make([]ShutdownHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	log := logging.Named("shutdown")
	if sig != nil {
		log.Infow("shutdown signal received", "signal", sig.String())
	}
	for _, hook := range hooks {
		start := time.Now()
		if err := hook.Fn(ctx); err != nil {
			log.Warnw("shutdown hook failed", "hook", hook.Name, "error", err)
			continue
		}
		log.Debugw("shutdown hook done", "hook", hook.Name, "took", time.Since(start))
	}

	s.doneOnce.Do(func() {
		close(s.doneCh)
	})
}

// Hook priorities. Lower runs first.
const (
	PriorityHTTP    = 10
	PriorityWorker  = 20
	PriorityTracing = 80
	PriorityStore   = 90
	PriorityLogger  = 99
)

// HTTPServerShutdownHook stops an HTTP server.
func HTTPServerShutdownHook(name string, shutdownFn func(ctx context.Context) error) ShutdownHook {
	return ShutdownHook{Name: name, Priority: PriorityHTTP, Fn: shutdownFn}
}

// TemporalWorkerShutdownHook stops a Temporal worker.
func TemporalWorkerShutdownHook(stopFn func()) ShutdownHook {
	return ShutdownHook{Name: "temporal-worker", Priority: PriorityWorker, Fn: func(context.Context) error {
		stopFn()
		return nil
	}}
}

// GraphStoreShutdownHook closes the graph database driver.
func GraphStoreShutdownHook(closeFn func(ctx context.Context) error) ShutdownHook {
	return ShutdownHook{Name: "graph-store", Priority: PriorityStore, Fn: closeFn}
}

// VectorStoreShutdownHook closes the vector index client.
func VectorStoreShutdownHook(closeFn func() error) ShutdownHook {
	return ShutdownHook{Name: "vector-store", Priority: PriorityStore, Fn: func(context.Context) error {
		return closeFn()
	}}
}

// LoggerShutdownHook flushes buffered log entries.
func LoggerShutdownHook() ShutdownHook {
	return ShutdownHook{Name: "logger", Priority: PriorityLogger, Fn: func(context.Context) error {
		logging.Sync()
		return nil
	}}
}

// TracingShutdownHook flushes and stops the tracer provider.
func TracingShutdownHook(shutdownFn func(ctx context.Context) error) ShutdownHook {
	return ShutdownHook{Name: "tracing", Priority: PriorityTracing, Fn: shutdownFn}
}

// AddHook registers a prepared hook.
func (s *ShutdownHandler) AddHook(h ShutdownHook) {
	s.RegisterHook(h.Name, h.Priority, h.Fn)
}
