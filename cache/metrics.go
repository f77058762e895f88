package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hitMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zipvfs",
		Subsystem: "handle_cache",
		Name:      "hits_total",
		Help:      "Number of acquisitions served by a cached, fresh snapshot",
	})
	missMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zipvfs",
		Subsystem: "handle_cache",
		Name:      "misses_total",
		Help:      "Number of acquisitions that had to open the archive",
	})
	evictionMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zipvfs",
		Subsystem: "handle_cache",
		Name:      "evictions_total",
		Help:      "Number of snapshots evicted from the LRU",
	})
	invalidationMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zipvfs",
		Subsystem: "handle_cache",
		Name:      "invalidations_total",
		Help:      "Number of snapshots dropped because they were stale or explicitly invalidated",
	})
	openMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zipvfs",
		Subsystem: "handle_cache",
		Name:      "opens_total",
		Help:      "Number of archives opened, by reader strategy",
	}, []string{"reader"})
)
