package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal  *prometheus.CounterVec
	votesRecordedTotal prometheus.Counter
	reconcileRunsTotal prometheus.Counter
	registerOnce       sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surveys",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the survey API.",
		}, []string{"method", "path", "status"})
		votesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "surveys",
			Name:      "votes_recorded_total",
			Help:      "Votes persisted together with their statistics increment.",
		})
		reconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "surveys",
			Name:      "stats_reconcile_runs_total",
			Help:      "Self-healing recounts of survey statistics.",
		})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func IncVoteRecorded() {
	if votesRecordedTotal != nil {
		votesRecordedTotal.Inc()
	}
}

func IncReconcileRun() {
	if reconcileRunsTotal != nil {
		reconcileRunsTotal.Inc()
	}
}
