package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cactripplanner/shortlinks/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New()

	m.LinkCreated("token")
	m.LinkCreated("token")
	m.LinkCreated("hash")
	m.LinkReused()
	m.LinkResolved(metrics.ResultFound)
	m.LinkResolved(metrics.ResultNotFound)
	m.KeyCollision(1)

	expected := `
# HELP shortlinks_created_total Short links created, by strategy.
# TYPE shortlinks_created_total counter
shortlinks_created_total{strategy="hash"} 1
shortlinks_created_total{strategy="token"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "shortlinks_created_total"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.Registry(), "shortlinks_resolved_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "shortlink_key_collisions_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "shortlinks_reused_total"))
}

func TestMetrics_Middleware(t *testing.T) {
	m := metrics.New()

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/{key}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusFound)
	})
	router.Handle("/metrics", m.Handler())

	for _, key := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+key, nil))
		require.Equal(t, http.StatusFound, rec.Code)
	}

	// one series for the route pattern regardless of key
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "http_request_duration_seconds"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_request_duration_seconds_count{method="GET",route="/{key}",status="302"} 3`)
}
