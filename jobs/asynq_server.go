package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/officina-pos/officina/internal/platform/httpx"
)

// Worker wraps the Asynq server and optional scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// TaskHandler wires a task type to its Asynq handler during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration wires a cron expression to a prepared task.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Handlers  []TaskHandler
	Cron      []CronRegistration
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		for _, entry := range cfg.Cron {
			if entry.Spec == "" || entry.Task == nil {
				continue
			}
			if _, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...); err != nil {
				return nil, err
			}
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueExpiryMarkdown enqueues an on-demand expiry sweep.
func (c *Client) EnqueueExpiryMarkdown(ctx context.Context, windowMonths int, percent float64) (*asynq.TaskInfo, error) {
	task, err := NewExpiryMarkdownTask(windowMonths, percent)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// Handler exposes HTTP endpoints for job observability and on-demand runs.
type Handler struct {
	inspector    *asynq.Inspector
	client       *Client
	windowMonths int
	percent      float64
	logger       *slog.Logger
}

// HandlerConfig collects dependencies for the jobs handler. WindowMonths and
// Percent are the defaults applied when an enqueue request omits them.
type HandlerConfig struct {
	Inspector    *asynq.Inspector
	Client       *Client
	WindowMonths int
	Percent      float64
	Logger       *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		inspector:    cfg.Inspector,
		client:       cfg.Client,
		windowMonths: cfg.WindowMonths,
		percent:      cfg.Percent,
		logger:       cfg.Logger,
	}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Post("/expiry-markdown", h.enqueueExpiryMarkdown)
}

// EnqueueMarkdownRequest overrides the configured sweep parameters for one run.
type EnqueueMarkdownRequest struct {
	WindowMonths *int     `json:"window_months,omitempty"`
	Percent      *float64 `json:"percent,omitempty"`
}

func (h *Handler) enqueueExpiryMarkdown(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "job queue is not configured")
		return
	}

	var req EnqueueMarkdownRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", httpx.ErrValidation))
			return
		}
	}

	months := h.windowMonths
	if req.WindowMonths != nil {
		months = *req.WindowMonths
	}
	percent := h.percent
	if req.Percent != nil {
		percent = *req.Percent
	}
	if months < 0 {
		httpx.RespondError(w, fmt.Errorf("%w: window months must be >= 0", httpx.ErrValidation))
		return
	}
	if percent <= 0 || percent >= 100 {
		httpx.RespondError(w, fmt.Errorf("%w: percent must be in (0, 100)", httpx.ErrValidation))
		return
	}

	info, err := h.client.EnqueueExpiryMarkdown(r.Context(), months, percent)
	if err != nil {
		h.logger.Error("enqueue expiry markdown failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "could not enqueue the sweep")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{
		"task_id":       info.ID,
		"queue":         info.Queue,
		"window_months": months,
		"percent":       percent,
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.inspector == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"queue":"default","pending":0}`))
		return
	}
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	pending := 0
	queueName := QueueDefault
	if info != nil {
		pending = int(info.Pending)
		queueName = info.Queue
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"queue":"` + queueName + `","pending":` + strconv.Itoa(pending) + `}`))
}
