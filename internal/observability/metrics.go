// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PageCacheHits counts page cache hits by request path.
	PageCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_page_cache_hits_total",
		Help: "Total number of page cache hits",
	}, []string{"path"})

	// PageCacheMisses counts page cache misses by request path.
	PageCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_page_cache_misses_total",
		Help: "Total number of page cache misses",
	}, []string{"path"})

	// FollowMutations counts follow edge changes by outcome.
	FollowMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_follow_mutations_total",
		Help: "Total follow/unfollow operations by outcome",
	}, []string{"operation", "outcome"})
)
