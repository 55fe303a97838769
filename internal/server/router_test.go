package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ourtasker-backend/internal/integrations"
	"ourtasker-backend/internal/observability"
	"ourtasker-backend/internal/testutil"
)

type api struct {
	t     *testing.T
	srv   *httptest.Server
	token string
}

func newAPI(t *testing.T, rl RateLimitConfig) *api {
	t.Helper()
	reg := prometheus.NewRegistry()
	sheets, err := integrations.NewSheets(context.Background(), "")
	require.NoError(t, err)

	h := NewRouter(Deps{
		Users:       testutil.NewFakeUserStore(),
		Tasks:       testutil.NewFakeTaskStore(),
		Activities:  testutil.NewFakeActivityStore(),
		JWTSecret:   []byte("router-test"),
		JWTTTL:      time.Hour,
		CORSOrigins: []string{"https://app.example"},
		AIRateLimit: rl,
		Slack:       integrations.NewSlack(time.Second),
		Sheets:      sheets,
		Metrics:     observability.NewMetrics(reg),
		Gatherer:    reg,
		Logger:      testutil.DiscardLogger(),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &api{t: t, srv: srv}
}

func (a *api) do(method, path, body string) (int, map[string]any) {
	a.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func (a *api) register() {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/auth/register",
		`{"email":"ann@example.com","password":"secret1","name":"Ann"}`)
	require.Equal(a.t, http.StatusCreated, code, body)
	a.token = body["token"].(string)
}

func TestHealth(t *testing.T) {
	a := newAPI(t, RateLimitConfig{})
	resp, err := a.srv.Client().Get(a.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(b))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newAPI(t, RateLimitConfig{})
	for _, path := range []string{"/api/tasks", "/api/activities", "/api/auth/me", "/api/ai/productivity-insights"} {
		code, _ := a.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}
}

func TestTaskLifecycleThroughAssistant(t *testing.T) {
	a := newAPI(t, RateLimitConfig{})
	a.register()

	code, body := a.do(http.MethodPost, "/api/tasks", `{"title":"Design homepage","priority":"high"}`)
	require.Equal(t, http.StatusCreated, code, body)
	id := body["task"].(map[string]any)["id"].(string)

	code, body = a.do(http.MethodPost, "/api/ai/chat", `{"message":"break down my tasks"}`)
	require.Equal(t, http.StatusOK, code, body)
	text := body["response"].(map[string]any)["text"].(string)
	assert.Contains(t, text, "Research design inspiration")

	code, _ = a.do(http.MethodPut, "/api/tasks/"+id, `{"status":"done"}`)
	require.Equal(t, http.StatusOK, code)

	code, body = a.do(http.MethodGet, "/api/tasks/stats", "")
	require.Equal(t, http.StatusOK, code)
	stats := body["stats"].(map[string]any)
	assert.Equal(t, 100.0, stats["completion_percent"])

	code, body = a.do(http.MethodGet, "/api/activities?limit=10", "")
	require.Equal(t, http.StatusOK, code)
	var types []string
	for _, item := range body["activities"].([]any) {
		types = append(types, item.(map[string]any)["type"].(string))
	}
	assert.Equal(t, []string{"task_completed", "task_updated", "ai_suggestion", "task_created"}, types)

	code, _ = a.do(http.MethodGet, "/api/activities?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDeleteAccountRevokesToken(t *testing.T) {
	a := newAPI(t, RateLimitConfig{})
	a.register()

	code, _ := a.do(http.MethodDelete, "/api/auth/account", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAIRateLimit(t *testing.T) {
	a := newAPI(t, RateLimitConfig{RequestsPerMinute: 1, Burst: 2})
	a.register()

	for i := 0; i < 2; i++ {
		code, _ := a.do(http.MethodPost, "/api/ai/suggest-tasks", `{"description":"trip"}`)
		require.Equal(t, http.StatusOK, code)
	}
	code, _ := a.do(http.MethodPost, "/api/ai/suggest-tasks", `{"description":"trip"}`)
	assert.Equal(t, http.StatusTooManyRequests, code)

	// other endpoints are not limited
	code, _ = a.do(http.MethodGet, "/api/tasks", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestMetricsEndpoint(t *testing.T) {
	a := newAPI(t, RateLimitConfig{})
	a.register()
	code, _ := a.do(http.MethodPost, "/api/ai/chat", `{"message":"what next"}`)
	require.Equal(t, http.StatusOK, code)

	resp, err := a.srv.Client().Get(a.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), `ourtasker_assistant_queries_total{intent="focus"} 1`)
	assert.Contains(t, string(b), "ourtasker_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	a := newAPI(t, RateLimitConfig{})
	req, err := http.NewRequest(http.MethodOptions, a.srv.URL+"/api/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestUserLimiterPerKey(t *testing.T) {
	l := newUserLimiter(RateLimitConfig{RequestsPerMinute: 60, Burst: 1})
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"))

	clock = clock.Add(time.Second)
	assert.True(t, l.allow("a"))
}
