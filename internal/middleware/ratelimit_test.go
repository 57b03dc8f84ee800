package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cactripplanner/shortlinks/internal/middleware"
	"github.com/cactripplanner/shortlinks/internal/ratelimit"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	visitorAddr  = "192.168.1.1:12345"
	visitorAgent = "TestAgent/1.0"
)

// countingStore counts requests per key and ignores the window.
type countingStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newCountingStore() *countingStore {
	return &countingStore{counts: make(map[string]int64)}
}

func (s *countingStore) Record(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return 0, s.err
	}

	s.counts[key]++

	return s.counts[key], nil
}

func (s *countingStore) keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.counts)
}

type okOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func ok(context.Context, *struct{}) (*okOutput, error) {
	out := &okOutput{}
	out.Body.OK = true

	return out, nil
}

type keyInput struct {
	Key string `path:"key"`
}

// newLimitedRouter serves /items (GET and POST) under the policy, /open
// without limits and /links/{key} with its own limit of two per minute.
func newLimitedRouter(counters ratelimit.Store, policy *ratelimit.Policy) http.Handler {
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.PolicyRateLimiter(
		api,
		ratelimit.NewPolicyLimiter(counters, policy),
		ratelimit.NewOperationScopeResolver(),
		zap.NewNop(),
	))

	huma.Register(api, huma.Operation{OperationID: "list", Method: http.MethodGet, Path: "/items"}, ok)
	huma.Register(api, huma.Operation{OperationID: "create", Method: http.MethodPost, Path: "/items"}, ok)
	huma.Register(api, huma.Operation{
		OperationID: "open",
		Method:      http.MethodGet,
		Path:        "/open",
		Metadata:    map[string]any{ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true}},
	}, ok)
	huma.Register(api, huma.Operation{
		OperationID: "link",
		Method:      http.MethodGet,
		Path:        "/links/{key}",
		Metadata: map[string]any{ratelimit.MetadataKey: ratelimit.EndpointConfig{
			Limits: []ratelimit.LimitConfig{{Window: time.Minute, Max: 2}},
		}},
	}, func(ctx context.Context, _ *keyInput) (*okOutput, error) {
		return ok(ctx, nil)
	})

	return router
}

func send(h http.Handler, method, path, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remoteAddr

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func sendAs(h http.Handler, method, path string) *httptest.ResponseRecorder {
	return send(h, method, path, visitorAddr, map[string]string{"User-Agent": visitorAgent})
}

func TestPolicyRateLimiter_PolicyScopes(t *testing.T) {
	policy := ratelimit.NewPolicyBuilder().
		AddLimit(ratelimit.ScopeRead, 3, time.Minute).
		AddLimit(ratelimit.ScopeWrite, 1, time.Minute).
		Build()
	router := newLimitedRouter(newCountingStore(), policy)

	for i := range 3 {
		assert.Equal(t, http.StatusOK, sendAs(router, http.MethodGet, "/items").Code, "read %d", i+1)
	}

	assert.Equal(t, http.StatusTooManyRequests, sendAs(router, http.MethodGet, "/items").Code)

	assert.Equal(t, http.StatusOK, sendAs(router, http.MethodPost, "/items").Code)

	rec := sendAs(router, http.MethodPost, "/items")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "write scope, 2/1 requests in 1m0s")
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestPolicyRateLimiter_GlobalScope(t *testing.T) {
	policy := ratelimit.NewPolicyBuilder().AddLimit(ratelimit.ScopeGlobal, 2, time.Minute).Build()
	router := newLimitedRouter(newCountingStore(), policy)

	assert.Equal(t, http.StatusOK, sendAs(router, http.MethodGet, "/items").Code)
	assert.Equal(t, http.StatusOK, sendAs(router, http.MethodPost, "/items").Code)
	assert.Equal(t, http.StatusTooManyRequests, sendAs(router, http.MethodGet, "/items").Code)
}

func TestPolicyRateLimiter_Disabled(t *testing.T) {
	policy := ratelimit.NewPolicyBuilder().AddLimit(ratelimit.ScopeGlobal, 1, time.Minute).Build()
	counters := newCountingStore()
	router := newLimitedRouter(counters, policy)

	for range 5 {
		assert.Equal(t, http.StatusOK, sendAs(router, http.MethodGet, "/open").Code)
	}

	assert.Zero(t, counters.keys())
}

func TestPolicyRateLimiter_EndpointLimits(t *testing.T) {
	policy := ratelimit.NewPolicyBuilder().AddLimit(ratelimit.ScopeGlobal, 100, time.Minute).Build()
	counters := newCountingStore()
	router := newLimitedRouter(counters, policy)

	assert.Equal(t, http.StatusOK, sendAs(router, http.MethodGet, "/links/first").Code)
	assert.Equal(t, http.StatusOK, sendAs(router, http.MethodGet, "/links/second").Code)

	rec := sendAs(router, http.MethodGet, "/links/third")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "every key shares the route counter")
	assert.Contains(t, rec.Body.String(), "3/2 requests in 1m0s")
	assert.Equal(t, 1, counters.keys())
}

func TestPolicyRateLimiter_StoreError(t *testing.T) {
	policy := ratelimit.NewPolicyBuilder().AddLimit(ratelimit.ScopeGlobal, 10, time.Minute).Build()
	counters := newCountingStore()
	counters.err = errors.New("redis down")
	router := newLimitedRouter(counters, policy)

	assert.Equal(t, http.StatusInternalServerError, sendAs(router, http.MethodGet, "/items").Code)
	assert.Equal(t, http.StatusInternalServerError, sendAs(router, http.MethodGet, "/links/abc").Code)
}

type clientRequest struct {
	addr    string
	headers map[string]string
}

func TestPolicyRateLimiter_ClientKey(t *testing.T) {
	policy := ratelimit.NewPolicyBuilder().AddLimit(ratelimit.ScopeGlobal, 100, time.Minute).Build()

	tests := []struct {
		name     string
		requests []clientRequest
		wantKeys int
	}{
		{
			name: "user agent splits clients",
			requests: []clientRequest{
				{visitorAddr, map[string]string{"User-Agent": visitorAgent}},
				{visitorAddr, map[string]string{"User-Agent": visitorAgent}},
				{visitorAddr, map[string]string{"User-Agent": "OtherAgent/2.0"}},
			},
			wantKeys: 2,
		},
		{
			name: "first X-Forwarded-For address",
			requests: []clientRequest{
				{"10.0.0.1:1111", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}},
				{"10.0.0.2:2222", map[string]string{"X-Forwarded-For": "203.0.113.195"}},
			},
			wantKeys: 1,
		},
		{
			name: "X-Real-IP",
			requests: []clientRequest{
				{"10.0.0.1:1111", map[string]string{"X-Real-IP": "203.0.113.100"}},
				{"10.0.0.2:2222", map[string]string{"X-Real-IP": "203.0.113.100"}},
			},
			wantKeys: 1,
		},
		{
			name: "remote port is ignored",
			requests: []clientRequest{
				{"192.168.1.1:1000", nil},
				{"192.168.1.1:2000", nil},
			},
			wantKeys: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counters := newCountingStore()
			router := newLimitedRouter(counters, policy)

			for _, r := range tt.requests {
				require.Equal(t, http.StatusOK, send(router, http.MethodGet, "/items", r.addr, r.headers).Code)
			}

			assert.Equal(t, tt.wantKeys, counters.keys())
		})
	}
}
