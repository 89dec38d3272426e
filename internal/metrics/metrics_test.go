package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/pipeline"
)

func TestRecorder_Dispatched(t *testing.T) {
	r := New(prometheus.NewRegistry())
	sub := &model.Submission{Kind: model.KindApplication}

	r.Dispatched(sub, pipeline.ModeSync, model.DispatchReport{
		Outcomes: []model.NotificationOutcome{
			{Name: "ownerNotification", Success: false},
			{Name: "applicantConfirmation", Success: true},
		},
		AnySucceeded: true,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.submissions.WithLabelValues("application", "sync", "partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.notifications.WithLabelValues("application", "ownerNotification", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.notifications.WithLabelValues("application", "applicantConfirmation", "success")))
}

func TestRecorder_Failures(t *testing.T) {
	r := New(prometheus.NewRegistry())
	sub := &model.Submission{Kind: model.KindCareerApplication}

	r.UploadFailed(sub, errors.New("quota"))
	r.RowLogged(sub, errors.New("sheet gone"))
	r.RowLogged(sub, nil)
	r.TaskFailed(sub, "notifications", errors.New("panic"))
	r.RateLimited("career")
	r.RateLimited("career")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.uploads.WithLabelValues("career_application")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rowLogs.WithLabelValues("career_application", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rowLogs.WithLabelValues("career_application", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.taskFailures.WithLabelValues("notifications")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rateLimited.WithLabelValues("career")))
}

func TestRecorder_Handler(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.ObserveHTTP(http.MethodPost, "POST /api/v1/contact", http.StatusOK, 40*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `intake_http_requests_total{method="POST",path="POST /api/v1/contact",status="200"} 1`)
	assert.Contains(t, string(body), "intake_http_request_duration_seconds_bucket")
}
