// Package metrics registers dinger's Prometheus collectors. Counters are
// registered on the default registry; the daemon exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchAttempts counts outbound content-fetch HTTP attempts, including retries.
	FetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dinger_fetch_attempts_total",
		Help: "Outbound Stats API fetch attempts, including retries.",
	})

	// FetchExhaustions counts fetches that failed after all retry attempts.
	FetchExhaustions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dinger_fetch_exhaustions_total",
		Help: "Content fetches abandoned after exhausting retries.",
	})

	// CacheHits counts cache hits by tier ("content" or "result").
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dinger_cache_hits_total",
		Help: "Cache hits by tier.",
	}, []string{"tier"})

	// CacheMisses counts cache misses by tier.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dinger_cache_misses_total",
		Help: "Cache misses by tier.",
	}, []string{"tier"})

	// MatchOutcomes counts orchestrated match results by accepting strategy,
	// with "none" for no-match outcomes.
	MatchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dinger_match_outcomes_total",
		Help: "Match outcomes by accepting strategy.",
	}, []string{"strategy"})
)
