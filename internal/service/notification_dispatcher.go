package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/healthclarity/lead-intake-api/internal/models"
	"github.com/healthclarity/lead-intake-api/pkg/config"
	"github.com/healthclarity/lead-intake-api/pkg/jobs"
)

type messageSender interface {
	Send(ctx context.Context, text string) error
	Enabled() bool
}

// NotificationDispatcher moves notification delivery off the request path.
// Sends run on the job queue with bounded retries; nothing here can fail a
// submission that is already persisted.
type NotificationDispatcher struct {
	sender  messageSender
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationDispatcher wires the sender behind a retrying queue.
func NewNotificationDispatcher(sender messageSender, cfg config.NotificationsConfig, metrics *MetricsService, logger *zap.Logger) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &NotificationDispatcher{
		sender:  sender,
		metrics: metrics,
		logger:  logger,
	}
	d.queue = jobs.NewQueue("notifications", d.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return d
}

// Start launches the queue workers.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *NotificationDispatcher) Stop() {
	d.queue.Stop()
}

// LeadAccepted enqueues the chat summary for a freshly persisted lead.
// Enqueue failures are logged and dropped; notification is advisory only.
func (d *NotificationDispatcher) LeadAccepted(record *models.LeadRecord) {
	if !d.sender.Enabled() {
		d.metrics.NotificationSkipped()
		return
	}

	job := jobs.Job{
		ID:      record.LeadID,
		Payload: LeadMessage(record),
	}
	if err := d.queue.Enqueue(job); err != nil {
		d.metrics.NotificationFailed()
		d.logger.Warn("dropping lead notification", zap.String("lead_id", record.LeadID), zap.Error(err))
	}
}

func (d *NotificationDispatcher) deliver(ctx context.Context, job jobs.Job) error {
	text, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("notification job %s: unexpected payload type %T", job.ID, job.Payload)
	}
	if err := d.sender.Send(ctx, text); err != nil {
		d.metrics.NotificationFailed()
		return err
	}
	d.metrics.NotificationSent()
	return nil
}
