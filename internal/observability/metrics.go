package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "microblog_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedPagesServed counts assembled feed pages by feed kind.
	FeedPagesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_feed_pages_served_total",
		Help: "Total number of feed pages assembled by kind",
	}, []string{"kind"})

	// SearchQueries counts search index queries by backend and outcome.
	SearchQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_search_queries_total",
		Help: "Total number of search index queries",
	}, []string{"backend", "outcome"})

	// CacheLookups counts cache-aside lookups by key family and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_cache_lookups_total",
		Help: "Cache-aside lookups by key family and result",
	}, []string{"family", "result"})
)
