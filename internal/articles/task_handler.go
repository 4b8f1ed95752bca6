package articles

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/pulse-news/pulse/jobs"
)

// NewViewTaskHandler returns the Asynq handler that applies queued view
// increments.
func NewViewTaskHandler(repo RepositoryPort, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload jobs.ArticleViewPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Error("malformed view payload", "error", err)
			return nil
		}
		return repo.IncrementViews(ctx, payload.ArticleID)
	}
}
