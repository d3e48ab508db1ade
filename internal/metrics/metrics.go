// Package metrics exposes the storage worker's Prometheus collectors.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "voxstore"
	subsystem = "storage"

	// Result label values.
	ResultOK    = "ok"
	ResultEmpty = "empty"
	ResultError = "error"
)

var (
	loads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "loads_total",
			Help:      "Chunk loads processed by the region worker, by result.",
		},
		[]string{"result"},
	)

	saves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "saves_total",
			Help:      "Chunk saves processed by the region worker, by result.",
		},
		[]string{"result"},
	)

	evictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "region_evictions_total",
			Help:      "Region handles closed by the cache, by reason.",
		},
		[]string{"reason"},
	)

	openRegions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "open_regions",
			Help:      "Region files currently held open.",
		},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Time spent serving a load or save request.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"op"},
	)
)

var register sync.Once

// Registry holds every collector once Register has run.
var Registry *prometheus.Registry

// Register creates Registry and registers the collectors. Only the first call
// has an effect.
func Register() *prometheus.Registry {
	register.Do(func() {
		Registry = prometheus.NewRegistry()
		Registry.MustRegister(loads, saves, evictions, openRegions, requestDuration)
	})
	return Registry
}

func Load(result string, start time.Time) {
	loads.WithLabelValues(result).Inc()
	requestDuration.WithLabelValues("load").Observe(time.Since(start).Seconds())
}

func Save(result string, start time.Time) {
	saves.WithLabelValues(result).Inc()
	requestDuration.WithLabelValues("save").Observe(time.Since(start).Seconds())
}

// Evicted counts a handle closed for reason ("capacity", "idle" or "close").
func Evicted(reason string) {
	evictions.WithLabelValues(reason).Inc()
}

func SetOpenRegions(n int) {
	openRegions.Set(float64(n))
}

// Collectors used by tests.
var (
	LoadsTotal     = loads
	SavesTotal     = saves
	EvictionsTotal = evictions
	OpenRegions    = openRegions
)
