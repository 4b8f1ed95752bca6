package activity

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/pulse-news/pulse/jobs"
)

// NewRecordTaskHandler returns the Asynq handler that persists queued
// activity entries.
func NewRecordTaskHandler(repo RepositoryPort, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload jobs.ActivityRecordPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Error("malformed activity payload", "error", err)
			return nil
		}
		rec := Record{
			UserID:    payload.UserID,
			Action:    payload.Action,
			IPAddress: payload.IPAddress,
			UserAgent: payload.UserAgent,
			Details:   payload.Details,
			CreatedAt: payload.At,
		}
		return repo.Insert(ctx, rec)
	}
}
