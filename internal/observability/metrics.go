package observability

import (
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MetricsRegistry holds all registered metrics and renders them in the
// Prometheus text exposition format.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	gauges   map[string]*Gauge
	histos   map[string]*Histogram
}

// Counter is a monotonically increasing metric.
type Counter struct {
	name   string
	help   string
	labels map[string]string
	value  float64
	mu     sync.Mutex
}

// Gauge is a metric that can go up or down.
type Gauge struct {
	name   string
	help   string
	labels map[string]string
	value  float64
	mu     sync.Mutex
}

// Histogram tracks distribution of values. counts[i] holds observations that
// fall in (buckets[i-1], buckets[i]].
type Histogram struct {
	name    string
	help    string
	labels  map[string]string
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
	mu      sync.Mutex
}

// NewMetricsRegistry creates a new metrics registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]*Counter),
		gauges:   make(map[string]*Gauge),
		histos:   make(map[string]*Histogram),
	}
}

// NewCounter creates and registers a counter.
func (r *MetricsRegistry) NewCounter(name, help string, labels map[string]string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Counter{name: name, help: help, labels: labels}
	r.counters[name] = c
	return c
}

// NewGauge creates and registers a gauge.
func (r *MetricsRegistry) NewGauge(name, help string, labels map[string]string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &Gauge{name: name, help: help, labels: labels}
	r.gauges[name] = g
	return g
}

// NewHistogram creates and registers a histogram. Buckets must be ascending;
// nil selects FileBuckets.
func (r *MetricsRegistry) NewHistogram(name, help string, labels map[string]string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	if buckets == nil {
		buckets = FileBuckets()
	}
	h := &Histogram{
		name:    name,
		help:    help,
		labels:  labels,
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
	r.histos[name] = h
	return h
}

// FileBuckets are latency buckets sized for single file conversions, which
// usually finish well under a millisecond.
func FileBuckets() []float64 {
	return []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}
}

// Inc increments a counter by 1.
func (c *Counter) Inc() { c.Add(1) }

// Add adds a value to the counter.
func (c *Counter) Add(v float64) {
	c.mu.Lock()
	c.value += v
	c.mu.Unlock()
}

// Value returns the counter value.
func (c *Counter) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set sets the gauge value.
func (g *Gauge) Set(v float64) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() { g.Add(1) }

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() { g.Add(-1) }

// Add adds a value to the gauge.
func (g *Gauge) Add(v float64) {
	g.mu.Lock()
	g.value += v
	g.mu.Unlock()
}

// Value returns the gauge value.
func (g *Gauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Observe records a value in the histogram.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += v
	h.count++
	if i := sort.SearchFloat64s(h.buckets, v); i < len(h.buckets) {
		h.counts[i]++
	}
}

// ObserveDuration records the time elapsed since start.
func (h *Histogram) ObserveDuration(start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Count returns the number of observations.
func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Handler returns an HTTP handler for the metrics endpoint.
func (r *MetricsRegistry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_ = r.WritePrometheus(w)
	})
}

// WritePrometheus writes every metric, ordered by name.
func (r *MetricsRegistry) WritePrometheus(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, name := range sortedKeys(r.counters) {
		c := r.counters[name]
		c.mu.Lock()
		writeMetric(&b, c.name, "counter", c.help, c.labels, c.value)
		c.mu.Unlock()
	}
	for _, name := range sortedKeys(r.gauges) {
		g := r.gauges[name]
		g.mu.Lock()
		writeMetric(&b, g.name, "gauge", g.help, g.labels, g.value)
		g.mu.Unlock()
	}
	for _, name := range sortedKeys(r.histos) {
		h := r.histos[name]
		h.mu.Lock()
		writeHistogram(&b, h)
		h.mu.Unlock()
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMetric(b *strings.Builder, name, metricType, help string, labels map[string]string, value float64) {
	b.WriteString("# HELP " + name + " " + help + "\n")
	b.WriteString("# TYPE " + name + " " + metricType + "\n")
	b.WriteString(name + formatLabels(labels) + " " + formatFloat(value) + "\n")
}

func writeHistogram(b *strings.Builder, h *Histogram) {
	b.WriteString("# HELP " + h.name + " " + h.help + "\n")
	b.WriteString("# TYPE " + h.name + " histogram\n")

	var cumulative uint64
	for i, bound := range h.buckets {
		cumulative += h.counts[i]
		labels := copyLabels(h.labels)
		labels["le"] = formatFloat(bound)
		b.WriteString(h.name + "_bucket" + formatLabels(labels) + " " + strconv.FormatUint(cumulative, 10) + "\n")
	}
	labels := copyLabels(h.labels)
	labels["le"] = "+Inf"
	b.WriteString(h.name + "_bucket" + formatLabels(labels) + " " + strconv.FormatUint(h.count, 10) + "\n")

	b.WriteString(h.name + "_sum" + formatLabels(h.labels) + " " + formatFloat(h.sum) + "\n")
	b.WriteString(h.name + "_count" + formatLabels(h.labels) + " " + strconv.FormatUint(h.count, 10) + "\n")
}

// formatLabels renders labels sorted by key so output is stable.
func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, k := range sortedKeys(labels) {
		parts = append(parts, k+"="+strconv.Quote(labels[k]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func copyLabels(labels map[string]string) map[string]string {
	result := make(map[string]string, len(labels)+1)
	for k, v := range labels {
		result[k] = v
	}
	return result
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConverterMetrics are the metrics recorded by conversion runs.
type ConverterMetrics struct {
	Registry *MetricsRegistry

	FilesConverted *Counter
	FilesFailed    *Counter
	FilesSkipped   *Counter
	CacheHits      *Counter
	ImportsUpdated *Counter
	FileDuration   *Histogram
	RunsActive     *Gauge
}

// NewConverterMetrics creates the converter metric set on a fresh registry.
func NewConverterMetrics() *ConverterMetrics {
	r := NewMetricsRegistry()
	return &ConverterMetrics{
		Registry:       r,
		FilesConverted: r.NewCounter("j2ts_files_converted_total", "Input files converted to a declaration", nil),
		FilesFailed:    r.NewCounter("j2ts_files_failed_total", "Input files that produced no output", nil),
		FilesSkipped:   r.NewCounter("j2ts_files_unchanged_total", "Input files skipped as unchanged by incremental runs", nil),
		CacheHits:      r.NewCounter("j2ts_cache_hits_total", "Conversions served from the result cache", nil),
		ImportsUpdated: r.NewCounter("j2ts_imports_updated_total", "Output files rewritten by the update-imports pass", nil),
		FileDuration:   r.NewHistogram("j2ts_file_duration_seconds", "Time to read, convert and write one file", nil, nil),
		RunsActive:     r.NewGauge("j2ts_runs_active", "Batch runs in progress", nil),
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *ConverterMetrics) Handler() http.Handler {
	return m.Registry.Handler()
}

// RecordFile records one file conversion.
func (m *ConverterMetrics) RecordFile(duration time.Duration, success, cached bool) {
	m.FileDuration.Observe(duration.Seconds())
	if success {
		m.FilesConverted.Inc()
	} else {
		m.FilesFailed.Inc()
	}
	if cached {
		m.CacheHits.Inc()
	}
}

var (
	globalMetrics *ConverterMetrics
	metricsOnce   sync.Once
)

// Metrics returns the process wide metrics instance.
func Metrics() *ConverterMetrics {
	metricsOnce.Do(func() {
		globalMetrics = NewConverterMetrics()
	})
	return globalMetrics
}
