// Package metrics exposes Prometheus instruments for the intake service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/pipeline"
)

const namespace = "intake"

// Recorder holds every collector of the service. It implements
// pipeline.Sink so settled outcomes land here without touching the response.
type Recorder struct {
	gatherer prometheus.Gatherer

	submissions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	uploads       *prometheus.CounterVec
	rowLogs       *prometheus.CounterVec
	taskFailures  *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

var _ pipeline.Sink = (*Recorder)(nil)

// New registers the collectors with reg. Passing a fresh registry keeps
// tests isolated from the default one.
func New(reg *prometheus.Registry) *Recorder {
	f := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submissions accepted, by kind, dispatch mode and outcome.",
		}, []string{"kind", "mode", "outcome"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Settled notifications, by kind, notification name and result.",
		}, []string{"kind", "notification", "result"}),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_failures_total",
			Help:      "Attachment uploads that failed, by kind.",
		}, []string{"kind"}),
		rowLogs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_logs_total",
			Help:      "Spreadsheet appends, by kind and result.",
		}, []string{"kind", "result"}),
		taskFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "background_task_failures_total",
			Help:      "Background tasks that ended in a panic, by task.",
		}, []string{"task"}),
		rateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter, by rule.",
		}, []string{"rule"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed.",
		}, []string{"method", "path", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "path"}),
	}
}

// NewDefault builds a Recorder on a new registry that also carries the Go
// runtime and process collectors.
func NewDefault() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg)
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// UploadFailed implements pipeline.Sink
func (r *Recorder) UploadFailed(sub *model.Submission, _ error) {
	r.uploads.WithLabelValues(sub.Kind.String()).Inc()
}

// RowLogged implements pipeline.Sink
func (r *Recorder) RowLogged(sub *model.Submission, err error) {
	r.rowLogs.WithLabelValues(sub.Kind.String(), result(err == nil)).Inc()
}

// Dispatched implements pipeline.Sink
func (r *Recorder) Dispatched(sub *model.Submission, mode pipeline.Mode, report model.DispatchReport) {
	kind := sub.Kind.String()
	r.submissions.WithLabelValues(kind, string(mode), string(pipeline.OutcomeOf(report))).Inc()
	for _, o := range report.Outcomes {
		r.notifications.WithLabelValues(kind, o.Name, result(o.Success)).Inc()
	}
}

// TaskFailed implements pipeline.Sink
func (r *Recorder) TaskFailed(_ *model.Submission, task string, _ error) {
	r.taskFailures.WithLabelValues(task).Inc()
}

// RateLimited counts a request rejected under the named rule
func (r *Recorder) RateLimited(rule string) {
	r.rateLimited.WithLabelValues(rule).Inc()
}

// ObserveHTTP records one served request. path should be the route pattern,
// not the raw URL, to keep label cardinality bounded.
func (r *Recorder) ObserveHTTP(method, path string, status int, d time.Duration) {
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
