package service

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/pkg/jobs"
)

func TestMetricsTrackQueue(t *testing.T) {
	m := NewMetricsService()
	assert.Nil(t, m.Snapshot().Queues)

	m.TrackQueue("media-prune", func() jobs.Stats { return jobs.Stats{Succeeded: 5, Retried: 3, Dropped: 1} })
	require.NotPanics(t, func() {
		m.TrackQueue("media-prune", func() jobs.Stats { return jobs.Stats{Succeeded: 7, Retried: 3, Dropped: 2} })
	})

	assert.Equal(t, map[string]models.QueueStats{
		"media-prune": {Succeeded: 7, Retried: 3, Dropped: 2},
	}, m.Snapshot().Queues)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `job_queue_dropped_total{queue="media-prune"} 2`)
	assert.Contains(t, w.Body.String(), `job_queue_succeeded_total{queue="media-prune"} 7`)
}

func TestMetricsNilServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.TrackQueue("media-prune", func() jobs.Stats { return jobs.Stats{} })
	m.RecordRevalidation("home")
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())
}
