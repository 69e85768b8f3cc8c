package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gradebook", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gradebook", Name: "handler_errors_total", Help: "Handler errors",
	})
	GatewayRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradebook", Name: "gateway_requests_total", Help: "REST calls issued by the console",
	}, []string{"kind", "op", "result"})
	GatewayLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gradebook", Name: "gateway_request_seconds", Help: "REST call latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind", "op"})
	BackendUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gradebook", Name: "backend_up", Help: "1 if the records API answered the last probe",
	})
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradebook", Name: "api_requests_total", Help: "Requests served by the records API",
	}, []string{"method", "route", "code"})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gradebook", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})

	// фоновые задачи
	JobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradebook", Name: "job_runs_total", Help: "Background job runs",
	}, []string{"job"})
	JobErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradebook", Name: "job_errors_total", Help: "Background job errors",
	}, []string{"job"})
	JobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gradebook", Name: "job_duration_seconds", Help: "Background job duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, GatewayRequests, GatewayLatency, BackendUp, APIRequests, DBPing,
		JobRuns, JobErrors, JobDuration)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

// ObserveGateway фиксирует один вызов REST API.
func ObserveGateway(kind, op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	GatewayRequests.WithLabelValues(kind, op, result).Inc()
	GatewayLatency.WithLabelValues(kind, op).Observe(d.Seconds())
}

// ObserveJob фиксирует один запуск фоновой задачи.
func ObserveJob(name string, d time.Duration, failed bool) {
	if failed {
		JobErrors.WithLabelValues(name).Inc()
	}
	JobRuns.WithLabelValues(name).Inc()
	JobDuration.WithLabelValues(name).Observe(d.Seconds())
}

func SetBackendUp(up bool) {
	if up {
		BackendUp.Set(1)
		return
	}
	BackendUp.Set(0)
}
