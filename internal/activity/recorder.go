package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/pulse-news/pulse/jobs"

	"github.com/pulse-news/pulse/internal/shared"
)

// Enqueuer submits activity records to the background queue.
type Enqueuer interface {
	EnqueueActivityRecord(ctx context.Context, payload jobs.ActivityRecordPayload) error
}

// Recorder writes activity records without ever failing the caller.
// Entries go through the queue when possible, fall back to a direct
// insert, and are dropped with a log line as the last resort.
type Recorder struct {
	queue  Enqueuer
	repo   RepositoryPort
	logger *slog.Logger
}

// NewRecorder constructs a Recorder. The queue may be nil, in which case
// every record is written directly.
func NewRecorder(queue Enqueuer, repo RepositoryPort, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{queue: queue, repo: repo, logger: logger}
}

// Record logs one activity entry for the given user. Client IP and user
// agent are taken from the request metadata stored in context.
func (r *Recorder) Record(ctx context.Context, userID int64, action string, details map[string]any) {
	meta := shared.RequestMetaFromContext(ctx)
	now := time.Now().UTC()
	if r.queue != nil {
		payload := jobs.ActivityRecordPayload{
			UserID:    userID,
			Action:    action,
			IPAddress: meta.IP,
			UserAgent: meta.UserAgent,
			Details:   details,
			At:        now,
		}
		err := r.queue.EnqueueActivityRecord(ctx, payload)
		if err == nil {
			return
		}
		r.logger.Warn("activity enqueue failed, writing directly", "action", action, "error", err)
	}
	rec := Record{
		UserID:    userID,
		Action:    action,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Details:   details,
		CreatedAt: now,
	}
	if err := r.repo.Insert(ctx, rec); err != nil {
		r.logger.Error("activity record dropped", "action", action, "user_id", userID, "error", err)
	}
}
