package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskActivityRecord persists one activity log entry.
	TaskActivityRecord = "activity:record"
	// TaskArticleView increments an article's view counter.
	TaskArticleView = "article:view"
)

// ActivityRecordPayload carries one activity log entry to the worker.
type ActivityRecordPayload struct {
	UserID    int64          `json:"user_id"`
	Action    string         `json:"action"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	At        time.Time      `json:"at"`
}

// NewActivityRecordTask constructs an Asynq task for an activity entry.
func NewActivityRecordTask(payload ActivityRecordPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskActivityRecord, data), nil
}

// ArticleViewPayload identifies the article whose counter to bump.
type ArticleViewPayload struct {
	ArticleID int64 `json:"article_id"`
}

// NewArticleViewTask constructs an Asynq task for a view increment.
func NewArticleViewTask(payload ArticleViewPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskArticleView, data), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueActivityRecord enqueues an activity log write.
func (c *Client) EnqueueActivityRecord(ctx context.Context, payload ActivityRecordPayload) error {
	task, err := NewActivityRecordTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
	return err
}

// EnqueueArticleView enqueues a view-count increment.
func (c *Client) EnqueueArticleView(ctx context.Context, payload ArticleViewPayload) error {
	task, err := NewArticleViewTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(1))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
