package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagerag/internal/domain"
	"engagerag/internal/history"
	"engagerag/internal/logger"
	"engagerag/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeEngine struct {
	mu       sync.Mutex
	queries  []string
	lastSeen []domain.Exchange
}

func (f *fakeEngine) Answer(ctx context.Context, query string, h []domain.Exchange) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.lastSeen = append([]domain.Exchange(nil), h...)
	return "answer to " + query
}

func (f *fakeEngine) Status() service.Status {
	return service.Status{Ready: true, Snapshot: true, Index: "ready"}
}

func newTestServer(t *testing.T, rps float64, burst int) (http.Handler, *fakeEngine, history.Store) {
	t.Helper()
	eng := &fakeEngine{}
	hist := history.NewMemory(history.DefaultMaxEntries)
	h := NewRouter(Deps{
		Log:         logger.Discard(),
		Engine:      eng,
		History:     hist,
		CORSOrigins: []string{"*"},
		RatePerSec:  rps,
		Burst:       burst,
		Version:     "test",
	})
	return h, eng, hist
}

func doRequest(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestChat_RecordsHistoryAndPassesPriorTurns(t *testing.T) {
	h, eng, hist := newTestServer(t, 0, 0)

	w := doRequest(h, http.MethodPost, "/api/chat", `{"message":"first","user_id":"u1"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "answer to first", body["response"])
	assert.Equal(t, "u1", body["session_id"])
	assert.Empty(t, eng.lastSeen)

	w = doRequest(h, http.MethodPost, "/api/chat", `{"message":"second","user_id":"u1"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []domain.Exchange{domain.UserSaid("first"), domain.AssistantSaid("answer to first")}, eng.lastSeen)

	recent, err := hist.Recent(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, recent, 4)
}

func TestChat_SessionFromHeaderOrGenerated(t *testing.T) {
	h, _, _ := newTestServer(t, 0, 0)

	w := doRequest(h, http.MethodPost, "/api/chat", `{"message":"hi"}`, map[string]string{SessionHeader: "s-9"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s-9", decode(t, w)["session_id"])

	w = doRequest(h, http.MethodPost, "/api/chat", `{"message":"hi"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["session_id"], 36)
}

func TestChat_Validation(t *testing.T) {
	h, eng, _ := newTestServer(t, 0, 0)
	for _, body := range []string{`{"message":"   "}`, `not json`, `{"message":"` + strings.Repeat("x", maxMessageLen+1) + `"}`} {
		w := doRequest(h, http.MethodPost, "/api/chat", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotEmpty(t, decode(t, w)["request_id"])
	}
	assert.Empty(t, eng.queries)
}

func TestChat_HistoryTrimmedToTwenty(t *testing.T) {
	h, eng, _ := newTestServer(t, 0, 0)
	for i := 0; i < 12; i++ {
		w := doRequest(h, http.MethodPost, "/api/chat", `{"message":"q","user_id":"u"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Len(t, eng.lastSeen, 19)

	w := doRequest(h, http.MethodGet, "/api/chat/history?user_id=u", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["history"], 20)
}

func TestChatHistory(t *testing.T) {
	h, _, _ := newTestServer(t, 0, 0)

	w := doRequest(h, http.MethodGet, "/api/chat/history", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(h, http.MethodGet, "/api/chat/history", "", map[string]string{SessionHeader: "empty"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"history":[]}`, w.Body.String())

	doRequest(h, http.MethodPost, "/api/chat", `{"message":"hello","user_id":"u2"}`, nil)
	w = doRequest(h, http.MethodGet, "/api/chat/history?user_id=u2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode(t, w)["history"].([]any)
	require.Len(t, hist, 2)
	first := hist[0].(map[string]any)
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "hello", first["content"])
}

func TestDashboardEndpoints(t *testing.T) {
	h, _, _ := newTestServer(t, 0, 0)

	w := doRequest(h, http.MethodPost, "/api/analytics", `{"post_type":"video"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "/mock-charts/performance_video.png", body["chart_url"])
	assert.Equal(t, "Friday", body["data"].(map[string]any)["best_day"])

	w = doRequest(h, http.MethodPost, "/api/analytics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/mock-charts/engagement_by_post_type.png", decode(t, w)["chart_url"])

	for _, prefix := range []string{"/api", ""} {
		w = doRequest(h, http.MethodGet, prefix+"/recommendations?post_type=reel", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["recommendations"], 5)

		w = doRequest(h, http.MethodGet, prefix+"/best-times", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["best_times"], 4)

		w = doRequest(h, http.MethodGet, prefix+"/best-times?post_type=image", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Wednesday", decode(t, w)["best_time"].(map[string]any)["day"])

		w = doRequest(h, http.MethodGet, prefix+"/metrics/summary", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(770), decode(t, w)["total_posts"])

		w = doRequest(h, http.MethodPost, prefix+"/upload", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "success", decode(t, w)["status"])
	}
}

func TestHealthRootAndMetrics(t *testing.T) {
	h, _, _ := newTestServer(t, 0, 0)

	w := doRequest(h, http.MethodGet, "/", "", nil)
	assert.Equal(t, `{"status":"ok"}`, w.Body.String())

	w = doRequest(h, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ready", body["engine"].(map[string]any)["index"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = doRequest(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "engagerag_http_requests_total")
}

func TestRateLimiter_BlocksExceedingBurst(t *testing.T) {
	h, _, _ := newTestServer(t, 1, 2)
	codes := make([]int, 3)
	for i := range codes {
		codes[i] = doRequest(h, http.MethodGet, "/", "", nil).Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
