package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "evalportal_http_requests_total",
	Help: "HTTP requests by method and status code",
}, []string{"method", "status"})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "evalportal_http_request_duration_seconds",
	Help:    "Duration of HTTP requests",
	Buckets: prometheus.DefBuckets,
}, []string{"method"})

var ScoresSaved = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "evalportal_scores_saved_total",
	Help: "Score records inserted or overwritten, by source",
}, []string{"source"})

var ScoresRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "evalportal_scores_rejected_total",
	Help: "Score entries rejected, by reason",
}, []string{"reason"})

var ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "evalportal_import_rows_total",
	Help: "Bulk import rows by outcome",
}, []string{"outcome"})

var CyclesExpired = promauto.NewCounter(prometheus.CounterOpts{
	Name: "evalportal_cycles_expired_total",
	Help: "Active cycles closed because their end date passed",
})

var JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "evalportal_job_runs_total",
	Help: "Background job runs by type and status",
}, []string{"job_type", "status"})

const (
	SourceForm   = "form"
	SourceImport = "import"

	OutcomeImported = "imported"
	OutcomeWarning  = "warning"
	OutcomeError    = "error"
)

func RecordRequest(method string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}
