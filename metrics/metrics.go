// Package metrics provides Prometheus instrumentation for the ledger and its
// HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LedgerOps counts ledger mutations by operation and outcome.
	LedgerOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betledger_ledger_ops_total",
		Help: "Ledger mutations by operation and outcome",
	}, []string{"op", "outcome"})

	// GuardRejections counts mutations refused before touching the ledger.
	GuardRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betledger_guard_rejections_total",
		Help: "Mutations rejected by a ledger guard",
	}, []string{"reason"})

	// Settlements counts settled wagers by result.
	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betledger_settlements_total",
		Help: "Wagers settled, by result",
	}, []string{"result"})

	PersistDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "betledger_persist_duration_seconds",
		Help:    "Time spent writing the ledger to storage",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	Bankroll = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "betledger_bankroll",
		Help: "Capital available for new wagers",
	})

	ActiveStake = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "betledger_active_stake",
		Help: "Stake currently at risk on running wagers",
	})

	// Records tracks ledger size by status.
	Records = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "betledger_records",
		Help: "Wager records in the ledger, by status",
	}, []string{"status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betledger_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "betledger_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// ObserveOp records one ledger mutation.
func ObserveOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	LedgerOps.WithLabelValues(op, outcome).Inc()
}

// SetBook publishes the derived state of the ledger after a mutation.
func SetBook(bankroll, activeStake float64, byStatus map[string]int) {
	Bankroll.Set(bankroll)
	ActiveStake.Set(activeStake)
	Records.Reset()
	for status, n := range byStatus {
		Records.WithLabelValues(status).Set(float64(n))
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics, labelled by the chi route pattern when
// there is one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				path = p
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
