package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kabudata/tachibana-adapter/pkg/logger"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tachibana_api_requests_total",
		Help: "Venue API requests by operation and outcome.",
	}, []string{"op", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tachibana_api_request_duration_seconds",
		Help:    "Venue API request latency by operation.",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"op"})

	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tachibana_poll_cycles_total",
		Help: "Poll cycles by result.",
	}, []string{"result"})

	cycleErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tachibana_poll_cycle_errors_total",
		Help: "Failed poll cycles by error kind.",
	}, []string{"kind"})

	snapshotRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tachibana_snapshot_rows_total",
		Help: "Quote snapshot rows persisted.",
	})

	publishErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tachibana_event_publish_errors_total",
		Help: "Failed event bus publishes.",
	})
)

func ObserveAPIRequest(op, status string, elapsed time.Duration) {
	apiRequestsTotal.WithLabelValues(op, status).Inc()
	apiRequestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func IncCycleOK(rows int) {
	cyclesTotal.WithLabelValues("ok").Inc()
	snapshotRowsTotal.Add(float64(rows))
}

func IncCycleError(kind string) {
	cyclesTotal.WithLabelValues("error").Inc()
	cycleErrorsTotal.WithLabelValues(kind).Inc()
}

func IncPublishError() {
	publishErrorsTotal.Inc()
}

// StartServer exposes /metrics on addr in a background goroutine.
func StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		logger.L().Info("metrics.server_started", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.L().Error("metrics.server_stopped", zap.Error(err))
		}
	}()
}
