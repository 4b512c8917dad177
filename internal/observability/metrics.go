package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus_match", Name: "searches_total", Help: "Total searches run"},
		[]string{"domain"},
	)
	CandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus_match", Name: "candidates_scored_total", Help: "Candidates scored"},
		[]string{"domain"},
	)
	CandidatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus_match", Name: "candidates_dropped_total", Help: "Candidates dropped below the score threshold or by hard filters"},
		[]string{"domain"},
	)
	CandidatesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus_match", Name: "candidates_skipped_total", Help: "Candidates skipped due to per-candidate scoring errors"},
		[]string{"domain"},
	)
	SearchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "campus_match", Name: "search_latency_seconds", Help: "Search latency", Buckets: prometheus.DefBuckets},
		[]string{"domain"},
	)
	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "campus_match", Name: "notifications_created_total", Help: "Notification records created"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus_match", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus_match",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
