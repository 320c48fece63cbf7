package jobs

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	return r
}

func TestHealthWithoutInspector(t *testing.T) {
	h := NewHandler(HandlerConfig{Logger: slog.New(slog.DiscardHandler)})
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())
}

func TestEnqueueMarkdownWithoutClient(t *testing.T) {
	h := NewHandler(HandlerConfig{Logger: slog.New(slog.DiscardHandler)})
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/expiry-markdown", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEnqueueMarkdownValidatesParameters(t *testing.T) {
	// The client is never reached: validation rejects the request first.
	client := NewClient(asynq.RedisClientOpt{Addr: "127.0.0.1:6379"})
	t.Cleanup(func() { _ = client.Close() })
	h := NewHandler(HandlerConfig{
		Client:       client,
		WindowMonths: 1,
		Percent:      30,
		Logger:       slog.New(slog.DiscardHandler),
	})
	router := newTestRouter(h)

	for _, body := range []string{
		`{"percent": 0}`,
		`{"percent": 100}`,
		`{"window_months": -1}`,
		`{not json`,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/jobs/expiry-markdown", strings.NewReader(body))
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestNewExpiryMarkdownTaskPayload(t *testing.T) {
	task, err := NewExpiryMarkdownTask(2, 25)
	require.NoError(t, err)
	require.Equal(t, TaskExpiryMarkdown, task.Type())

	var payload ExpiryMarkdownPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, 2, payload.WindowMonths)
	require.InDelta(t, 25.0, payload.Percent, 1e-9)
}
