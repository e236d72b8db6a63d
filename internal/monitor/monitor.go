// Package monitor exposes the service's Prometheus metrics.
package monitor

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Metrics represents all the application metrics
type Metrics struct {
	// Extraction metrics
	ExtractionAttempts *prometheus.CounterVec
	Extractions        *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Rate limiting
	RateLimited *prometheus.CounterVec

	// Fallback strategies
	Fallbacks *prometheus.CounterVec

	// Worker pool
	QueueDepth   prometheus.Gauge
	ShedRequests prometheus.Counter

	// System metrics
	Goroutines  prometheus.Gauge
	MemoryUsage prometheus.Gauge
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		ExtractionAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yt_extract_attempts_total",
				Help: "Upstream extraction attempts by client profile",
			},
			[]string{"profile"},
		),

		Extractions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yt_extract_extractions_total",
				Help: "Terminal extraction outcomes",
			},
			[]string{"endpoint", "outcome"},
		),

		ExtractionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yt_extract_duration_seconds",
				Help:    "Time spent resolving one extraction",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "yt_extract_cache_hits_total",
			Help: "Extraction results served from cache",
		}),

		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "yt_extract_cache_misses_total",
			Help: "Cache lookups that required a fresh extraction",
		}),

		RateLimited: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yt_extract_rate_limited_total",
				Help: "Requests denied by the rate limiter",
			},
			[]string{"endpoint"},
		),

		Fallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yt_extract_fallbacks_total",
				Help: "Fallback strategy invocations by method and verdict",
			},
			[]string{"method", "available"},
		),

		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "yt_extract_queue_depth",
			Help: "Queued extraction tasks",
		}),

		ShedRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "yt_extract_shed_requests_total",
			Help: "Requests shed because the extraction queue was full",
		}),

		Goroutines: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "yt_extract_goroutines",
			Help: "Number of goroutines",
		}),

		MemoryUsage: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "yt_extract_memory_usage_bytes",
			Help: "Memory usage in bytes",
		}),
	}
}

// Monitor periodically samples system metrics
type Monitor struct {
	metrics  *Metrics
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	logger   zerolog.Logger
}

// NewMonitor creates a new monitor
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:  NewMetrics(),
		interval: 15 * time.Second,
		stopChan: make(chan struct{}),
		logger:   zerolog.New(os.Stdout).With().Timestamp().Logger(),
	}
}

// Metrics returns the metric handles
func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// Start begins sampling system metrics
func (m *Monitor) Start() {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.sample()
			case <-m.stopChan:
				return
			}
		}
	}()

	m.logger.Info().Msg("Monitor started")
}

// Stop stops the monitor
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	m.logger.Info().Msg("Monitor stopped")
}

func (m *Monitor) sample() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.metrics.Goroutines.Set(float64(runtime.NumGoroutine()))
	m.metrics.MemoryUsage.Set(float64(memStats.Alloc))
}
