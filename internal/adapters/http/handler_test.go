package httpadapter_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/PabloGalante/fermi-notifier/internal/adapters/http"
	"github.com/PabloGalante/fermi-notifier/internal/adapters/llm"
	"github.com/PabloGalante/fermi-notifier/internal/adapters/notify"
	"github.com/PabloGalante/fermi-notifier/internal/app/fermi"
)

const golfBallText = "**Problem:** How many golf balls fit in a bus?\n---SOLUTION_SEPARATOR---\n**Solution:** Step 1... Answer: ~500000"

type ntfyCall struct {
	title string
	delay string
	body  string
}

// fakeNtfy records every publish and answers with statuses[i] for call i
// (200 once the list runs out).
type fakeNtfy struct {
	mu       sync.Mutex
	calls    []ntfyCall
	statuses []int
}

func (f *fakeNtfy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	idx := len(f.calls)
	f.calls = append(f.calls, ntfyCall{
		title: r.Header.Get("Title"),
		delay: r.Header.Get("X-Delay"),
		body:  string(b),
	})
	status := http.StatusOK
	if idx < len(f.statuses) {
		status = f.statuses[idx]
	}
	f.mu.Unlock()

	w.WriteHeader(status)
	if status != http.StatusOK {
		_, _ = w.Write([]byte(`{"error":"upstream detail that must not leak"}`))
	}
}

func geminiHandler(status int, text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"secret upstream detail"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
			}},
		})
	}
}

func newTestServer(t *testing.T, gemini http.Handler, ntfy *fakeNtfy) http.Handler {
	t.Helper()

	geminiSrv := httptest.NewServer(gemini)
	t.Cleanup(geminiSrv.Close)
	ntfySrv := httptest.NewServer(ntfy)
	t.Cleanup(ntfySrv.Close)

	client := &http.Client{}
	gen := llm.NewGeminiClient("test-key", "test-model", geminiSrv.URL, client)
	notifier := notify.NewNtfyClient(ntfySrv.URL, "fermi", client)

	return httpadapter.NewServer(fermi.NewService(gen, notifier))
}

func decodeCategory(t *testing.T, body io.Reader) string {
	t.Helper()
	var category string
	require.NoError(t, json.NewDecoder(body).Decode(&category))
	return category
}

func TestHealthz(t *testing.T) {
	ntfy := &fakeNtfy{}
	geminiCalled := false
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		geminiCalled = true
	}), ntfy)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.False(t, geminiCalled)
	assert.Empty(t, ntfy.calls)
}

func TestTrigger_Success(t *testing.T) {
	ntfy := &fakeNtfy{}
	srv := newTestServer(t, geminiHandler(http.StatusOK, golfBallText), ntfy)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "10m")
	assert.Equal(t, "Fermi problem sent, solution scheduled for 10m delay.", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	require.Len(t, ntfy.calls, 2)
	assert.Equal(t, ntfyCall{
		title: "Problem: How many golf balls fit in a bus?",
		body:  "How many golf balls fit in a bus?",
	}, ntfy.calls[0])
	assert.Equal(t, ntfyCall{
		title: "Solution: Step 1... Answer: ~500000",
		delay: "10m",
		body:  "Step 1... Answer: ~500000",
	}, ntfy.calls[1])
}

func TestTrigger_GenerationFailure(t *testing.T) {
	ntfy := &fakeNtfy{}
	srv := newTestServer(t, geminiHandler(http.StatusInternalServerError, ""), ntfy)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "secret upstream detail")
	assert.Equal(t, "Gemini API Error", decodeCategory(t, w.Body))
	assert.Empty(t, ntfy.calls)
}

func TestTrigger_ParseFailure(t *testing.T) {
	ntfy := &fakeNtfy{}
	srv := newTestServer(t, geminiHandler(http.StatusOK, "**Problem:** only a problem"), ntfy)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Content Parsing Error", decodeCategory(t, w.Body))
	assert.Empty(t, ntfy.calls)
}

func TestTrigger_ProblemNotificationFailure(t *testing.T) {
	ntfy := &fakeNtfy{statuses: []int{http.StatusServiceUnavailable}}
	srv := newTestServer(t, geminiHandler(http.StatusOK, golfBallText), ntfy)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Notification Service Error", decodeCategory(t, w.Body))
	assert.Len(t, ntfy.calls, 1)
}

func TestTrigger_SolutionNotificationFailureIsPartial(t *testing.T) {
	ntfy := &fakeNtfy{statuses: []int{http.StatusOK, http.StatusTooManyRequests}}
	srv := newTestServer(t, geminiHandler(http.StatusOK, golfBallText), ntfy)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "must not leak")
	assert.Equal(t, "Notification Service Error", decodeCategory(t, w.Body))

	require.Len(t, ntfy.calls, 2)
	assert.Equal(t, "Problem: How many golf balls fit in a bus?", ntfy.calls[0].title)
	assert.Equal(t, "10m", ntfy.calls[1].delay)
}

func TestTrigger_MethodAndPath(t *testing.T) {
	ntfy := &fakeNtfy{}
	srv := newTestServer(t, geminiHandler(http.StatusOK, golfBallText), ntfy)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/other", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Empty(t, ntfy.calls)
}

func TestTrigger_KeepsIncomingRequestID(t *testing.T) {
	srv := newTestServer(t, geminiHandler(http.StatusOK, golfBallText), &fakeNtfy{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
