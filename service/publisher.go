package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/quorumvault/custodian/internal/tasks"
	"github.com/quorumvault/custodian/internal/types"
)

// QueuePublisher hands audit events to the worker through the task queue.
// The worker owns persistence and the outbound kafka stream.
type QueuePublisher struct {
	client *asynq.Client
	logger *logrus.Logger
}

func NewQueuePublisher(client *asynq.Client) *QueuePublisher {
	return &QueuePublisher{
		client: client,
		logger: logrus.WithField("service", "publisher").Logger,
	}
}

func (q *QueuePublisher) Publish(ctx context.Context, event types.Event) error {
	task, err := tasks.NewAuditRecord(event)
	if err != nil {
		return fmt.Errorf("fail to build audit task, err: %w", err)
	}
	ti, err := q.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.Retention(10*time.Minute),
		asynq.Queue(tasks.QUEUE_NAME))
	if err != nil {
		return fmt.Errorf("fail to enqueue audit task, err: %w", err)
	}
	q.logger.WithFields(logrus.Fields{
		"task": ti.ID,
		"kind": event.Kind,
	}).Debug("audit task enqueued")
	return nil
}
