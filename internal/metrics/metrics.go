package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Gauges
	UsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gameshelf_users_total",
		Help: "Total number of registered users.",
	})
	CachedGamesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gameshelf_cached_games_total",
		Help: "Total number of games in the local cache.",
	})
	RatingsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gameshelf_ratings_total",
		Help: "Total number of personal ratings.",
	})

	// Catalog API
	CatalogRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameshelf_catalog_requests_total",
		Help: "Total number of requests made to the game catalog.",
	}, []string{"op", "outcome"}) // outcome: ok, transport, status, decode

	CatalogDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gameshelf_catalog_request_duration_seconds",
		Help:    "Duration of game catalog requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	// View-state loads
	LoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gameshelf_loads_total",
		Help: "Total number of screen loads by outcome.",
	}, []string{"screen", "outcome"}) // outcome: ok, error, dropped
)

// Counts is the subset of store statistics published as gauges.
type Counts struct {
	Users   int
	Games   int
	Ratings int
}

// UpdateDBMetrics refreshes gauges that reflect the current state of the database.
func UpdateDBMetrics(c Counts) {
	UsersTotal.Set(float64(c.Users))
	CachedGamesTotal.Set(float64(c.Games))
	RatingsTotal.Set(float64(c.Ratings))
}

// RecordCatalogRequest records the outcome and latency of a catalog call.
func RecordCatalogRequest(op, outcome string, start time.Time) {
	CatalogRequests.WithLabelValues(op, outcome).Inc()
	CatalogDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
