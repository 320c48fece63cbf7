// Package jobs holds background tasks processed by the Asynq worker.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/officina-pos/officina/internal/catalog/medicaments"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskExpiryMarkdown triggers the nightly markdown of expiring stock.
	TaskExpiryMarkdown = "catalog:expiry_markdown"
)

// ExpiryMarkdownPayload carries the sweep parameters.
type ExpiryMarkdownPayload struct {
	WindowMonths int     `json:"window_months"`
	Percent      float64 `json:"percent"`
}

// NewExpiryMarkdownTask constructs an Asynq task for the expiry sweep.
func NewExpiryMarkdownTask(windowMonths int, percent float64) (*asynq.Task, error) {
	body, err := json.Marshal(ExpiryMarkdownPayload{WindowMonths: windowMonths, Percent: percent})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpiryMarkdown, body, asynq.Queue(QueueDefault)), nil
}

// ExpiryMarkdownJob discounts medicaments approaching their expiry date so
// they sell before they have to be pulled.
type ExpiryMarkdownJob struct {
	service *medicaments.Service
	logger  *slog.Logger
}

// NewExpiryMarkdownJob constructs the job.
func NewExpiryMarkdownJob(service *medicaments.Service, logger *slog.Logger) *ExpiryMarkdownJob {
	return &ExpiryMarkdownJob{service: service, logger: logger}
}

// Handle processes TaskExpiryMarkdown tasks.
func (j *ExpiryMarkdownJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ExpiryMarkdownPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	updated, err := j.service.MarkdownExpiring(ctx, payload.WindowMonths, payload.Percent)
	if err != nil {
		j.logger.Error("expiry markdown failed", slog.Any("error", err))
		return err
	}
	j.logger.Info("expiry markdown complete",
		slog.Int("window_months", payload.WindowMonths),
		slog.Float64("percent", payload.Percent),
		slog.Int64("updated", updated))
	return nil
}
