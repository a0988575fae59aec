// Package server exposes the converter over HTTP: the operator page, batch
// and single file conversion endpoints, live progress, metrics and health
// probes.
package server

import (
	"context"
	"embed"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
	"github.com/honghai9112k/tool-java2ts/internal/converter"
	"github.com/honghai9112k/tool-java2ts/internal/dashboard"
	"github.com/honghai9112k/tool-java2ts/internal/importfix"
	"github.com/honghai9112k/tool-java2ts/internal/logging"
	"github.com/honghai9112k/tool-java2ts/internal/observability"
)

//go:embed static/index.html
var staticFS embed.FS

// Config holds server configuration.
type Config struct {
	Addr        string
	InputDir    string
	OutputDir   string
	SkipPattern string
	Incremental bool
	Version     string
}

// Server is the HTTP front end of the converter.
type Server struct {
	cfg       *Config
	engine    *converter.Engine
	router    *gin.Engine
	dashboard *dashboard.Dashboard
	health    *Health
	metrics   *observability.ConverterMetrics
	server    *http.Server

	// running serialises runs that write to the output tree.
	running sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithHealthCheck registers a check on /health.
func WithHealthCheck(name string, checker HealthChecker) Option {
	return func(s *Server) { s.health.RegisterCheck(name, checker) }
}

// WithMetrics replaces the process wide metrics set.
func WithMetrics(m *observability.ConverterMetrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithDashboard replaces the run store and event hub.
func WithDashboard(d *dashboard.Dashboard) Option {
	return func(s *Server) { s.dashboard = d }
}

// New creates a server around engine.
func New(cfg *Config, engine *converter.Engine, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    engine,
		dashboard: dashboard.New(),
		health:    NewHealth(cfg.Version),
		metrics:   observability.Metrics(),
	}
	for _, o := range opts {
		o(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/", s.handleIndex)
	for _, name := range batch.ModeNames() {
		r.POST("/convert-"+name, s.handleBatch(name))
	}
	r.POST("/update-imports", s.handleUpdateImports)
	r.POST("/convert", s.handleConvert)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.health.RegisterRoutes(r)
	s.dashboard.RegisterRoutes(r)

	s.router = r
	s.server = &http.Server{
		Addr:        cfg.Addr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Health returns the probe state.
func (s *Server) Health() *Health { return s.health }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	logging.Named("server").Infow("listening", "addr", s.cfg.Addr)
	s.health.SetReady(true)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server")
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.server.Shutdown(ctx)
}

func (s *Server) handleIndex(c *gin.Context) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) handleBatch(modeName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode, err := batch.LookupMode(modeName)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		if !s.running.TryLock() {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "a conversion is already running"})
			return
		}
		defer s.running.Unlock()

		runner := batch.NewRunner(s.engine, batch.Options{
			InputDir:    s.cfg.InputDir,
			OutputDir:   s.cfg.OutputDir,
			SkipPattern: s.cfg.SkipPattern,
			Incremental: s.cfg.Incremental,
		}, batch.WithObserver(s.dashboard.Emitter), batch.WithMetrics(s.metrics))

		summary, err := runner.Run(c.Request.Context(), mode)
		switch {
		case errors.Is(err, batch.ErrNoInputs):
			s.dashboard.Emitter.RunFailed(summary.RunID, mode.Name, err)
			c.JSON(http.StatusOK, gin.H{"success": false, "runId": summary.RunID, "error": err.Error()})
		case err != nil:
			s.dashboard.Emitter.RunFailed(summary.RunID, mode.Name, err)
			logging.Named("server").Errorw("batch run failed", "mode", mode.Name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "conversion failed", "details": err.Error()})
		default:
			c.JSON(http.StatusOK, summary)
		}
	}
}

func (s *Server) handleUpdateImports(c *gin.Context) {
	if !s.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "a conversion is already running"})
		return
	}
	defer s.running.Unlock()

	report, err := importfix.Run(c.Request.Context(), s.cfg.OutputDir)
	switch {
	case errors.Is(err, importfix.ErrNoOutputs):
		c.JSON(http.StatusOK, report)
	case err != nil:
		logging.Named("server").Errorw("import update failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "import update failed", "details": err.Error()})
	default:
		s.metrics.ImportsUpdated.Add(float64(report.UpdatedFiles))
		c.JSON(http.StatusOK, report)
	}
}

// ConvertRequest is the body of POST /convert.
type ConvertRequest struct {
	Source   string `json:"source" binding:"required"`
	Location string `json:"location"`
	Fast     bool   `json:"fast"`
}

// ConvertResponse is the reply of POST /convert.
type ConvertResponse struct {
	Success bool `json:"success"`
	converter.Result
}

func (s *Server) handleConvert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	start := time.Now()
	var res converter.Result
	if req.Fast {
		res = s.engine.ConvertFast(req.Source, req.Location)
	} else {
		res = s.engine.Convert(req.Source, req.Location)
	}
	ok := res.Output != ""
	s.metrics.RecordFile(time.Since(start), ok, res.Cached)
	c.JSON(http.StatusOK, ConvertResponse{Success: ok, Result: res})
}

func requestLogger() gin.HandlerFunc {
	log := logging.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugw("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
