package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kintai_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kintai_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	punchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kintai_punches_total",
		Help: "Count of punch attempts by type and result",
	}, []string{"type", "result"})

	correctionEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kintai_correction_events_total",
		Help: "Count of correction workflow events by type and result",
	}, []string{"event", "result"})
)

// ObserveHTTPRequest はHTTPリクエストのメトリクスを記録します。
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObservePunch は打刻試行の結果を記録します。
func ObservePunch(punchType, result string) {
	punchesTotal.WithLabelValues(punchType, result).Inc()
}

// ObserveCorrectionEvent は勤怠修正ワークフローのイベントを記録します。
func ObserveCorrectionEvent(event, result string) {
	correctionEventsTotal.WithLabelValues(event, result).Inc()
}
