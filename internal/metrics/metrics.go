package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_tracker",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of handled HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activity_tracker",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and path.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	dashboardRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_tracker",
		Subsystem: "stats",
		Name:      "dashboard_requests_total",
		Help:      "Number of dashboard aggregation runs.",
	})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, dashboardRequests)
}

// ObserveRequest пишется middleware-ом на каждый завершённый запрос.
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func RecordDashboardRequest() {
	dashboardRequests.Inc()
}
