package container

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInjector(t *testing.T) *do.Injector {
	t.Helper()

	opts := validOptions()
	opts.SecretsFile = filepath.Join(t.TempDir(), "missing")
	opts.PruneSchedule = "@every 10m"

	injector := do.New()
	do.ProvideValue(injector, opts)
	ConfigPackage(injector)
	LoggerPackage(injector)
	RedisPackage(injector)
	PostgresPackage(injector)
	MetricsPackage(injector)
	RepositoryPackage(injector)
	ContentPackage(injector)
	KeyPackage(injector)
	RateLimitPackage(injector)
	PublisherGroupPackage(injector)
	HTTPPackage(injector)

	t.Cleanup(func() { _ = injector.Shutdown() })

	return injector
}

func TestHTTPPackage_ShortenAndRedirect(t *testing.T) {
	injector := newTestInjector(t)
	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	req := httptest.NewRequest(http.MethodPost, "/shorten/",
		strings.NewReader(`{"url":"http://example.com/page"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Key      string `json:"key"`
		ShortURL string `json:"shortUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Key, 22)
	assert.Equal(t, "http://localhost:8888/"+body.Key, body.ShortURL)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+body.Key, nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://example.com/page", rec.Header().Get("Location"))
}

func TestHTTPPackage_OperationalRoutes(t *testing.T) {
	injector := newTestInjector(t)
	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/aaaaaaaaaaaaaaaaaaaaaa", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRateLimitPackage_MemoryScheduler(t *testing.T) {
	injector := newTestInjector(t)

	scheduler, err := do.Invoke[*Scheduler](injector)
	require.NoError(t, err)
	assert.Len(t, scheduler.cron.Entries(), 1)
}
