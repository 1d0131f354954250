package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Search
	SearchRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "look_search_requests_total",
		Help: "The total number of index queries executed",
	}, []string{"kind", "result"})

	SearchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "look_search_latency_seconds",
		Help: "The latency of index queries",
	}, []string{"kind"})

	// Sync
	DocumentsSynced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "look_documents_synced_total",
		Help: "The total number of documents written to the index by sync",
	})

	SyncErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "look_sync_errors_total",
		Help: "The total number of failed sync runs",
	})

	// Facet metadata
	MetaRecomputations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "look_meta_recomputations_total",
		Help: "The total number of facet metadata recomputations",
	}, []string{"result"})

	MetaRecomputeLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "look_meta_recompute_latency_seconds",
		Help: "The latency of facet metadata recomputation",
	})

	// Invalidation
	InvalidationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "look_invalidations_published_total",
		Help: "The total number of invalidation notifications published",
	}, []string{"channel", "result"})

	InvalidationPublishLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "look_invalidation_publish_latency_seconds",
		Help: "The latency of publishing an invalidation",
	}, []string{"channel"})

	InvalidationsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "look_invalidations_received_total",
		Help: "The total number of invalidation notifications received",
	}, []string{"channel"})

	// Default collection cache
	DefaultCollectionLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "look_default_collection_lookups_total",
		Help: "The total number of default collection cache lookups",
	}, []string{"result"})

	DefaultCollectionEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "look_default_collection_evictions_total",
		Help: "The total number of default collection cache evictions",
	})
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

// Result maps an error onto a result label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

func init() {
	prometheus.MustRegister(SearchRequests)
	prometheus.MustRegister(SearchLatency)
	prometheus.MustRegister(DocumentsSynced)
	prometheus.MustRegister(SyncErrors)
	prometheus.MustRegister(MetaRecomputations)
	prometheus.MustRegister(MetaRecomputeLatency)
	prometheus.MustRegister(InvalidationsPublished)
	prometheus.MustRegister(InvalidationPublishLatency)
	prometheus.MustRegister(InvalidationsReceived)
	prometheus.MustRegister(DefaultCollectionLookups)
	prometheus.MustRegister(DefaultCollectionEvictions)
}
