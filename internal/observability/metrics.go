// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the watcher.
type Metrics struct {
	// Sync loop metrics
	TicksTotal          *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
	ConsecutiveFailures prometheus.Gauge
	LastSuccessTime     prometheus.Gauge

	// Decoded game state
	CurrentRound     prometheus.Gauge
	JackpotLamports  prometheus.Gauge
	TotalDeposited   prometheus.Gauge
	TotalsViolations prometheus.Counter
}

// Tick result labels.
const (
	TickSuccess = "success"
	TickFailure = "failure"
	TickSkipped = "skipped"
)

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "board_watcher"
	}

	return &Metrics{
		TicksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "ticks_total",
			Help:      "Total sync ticks by result",
		}, []string{"result"}),
		FetchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a full board+round fetch sequence",
			Buckets:   prometheus.DefBuckets,
		}),
		ConsecutiveFailures: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "consecutive_failures",
			Help:      "Number of consecutive failed ticks",
		}),
		LastSuccessTime: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successfully published snapshot",
		}),
		CurrentRound: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "current_round",
			Help:      "Round id from the last published snapshot",
		}),
		JackpotLamports: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "jackpot_lamports",
			Help:      "Jackpot of the current round in lamports",
		}),
		TotalDeposited: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "total_deposited_lamports",
			Help:      "Total deposited into the current round in lamports",
		}),
		TotalsViolations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "totals_violations_total",
			Help:      "Rounds whose cell deposits did not sum to the recorded total",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
