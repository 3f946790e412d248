package request

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MustRegisterMetrics registers the request cache metrics on registry.
// It panics if metrics with the same names are already registered.
func MustRegisterMetrics(registry prometheus.Registerer) {
	registry.MustRegister(cacheLookups, cacheBuilds, buildDuration)
}

func sampleLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.With(prometheus.Labels{"cache": cache, "result": result}).Inc()
}

func sampleBuild(cache string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	cacheBuilds.With(prometheus.Labels{"cache": cache, "status": status}).Inc()
	buildDuration.With(prometheus.Labels{"cache": cache}).Observe(elapsed.Seconds())
}

var (
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlcore_request_cache_lookups_total",
			Help: "Request cache lookups by result",
		},
		[]string{"cache", "result"},
	)
	cacheBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlcore_request_builds_total",
			Help: "Requests built on cache misses",
		},
		[]string{"cache", "status"},
	)
	buildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sqlcore_request_build_duration_seconds",
			Help: "Duration of building and compiling requests",
			// compiles are sub-millisecond; the tail catches very wide types.
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 16),
		},
		[]string{"cache"},
	)
)
