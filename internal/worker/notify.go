package worker

import (
	"context"
	"time"

	"gradepulse/internal/logger"
	"gradepulse/internal/model"
	"gradepulse/internal/queue"
	"gradepulse/pkg/errors"

	"github.com/rs/zerolog"
)

const requeueTimeout = 5 * time.Second

type JobSource interface {
	ConsumeNotifications(ctx context.Context, handler queue.NotificationHandler) error
}

type JobSink interface {
	EnqueueNotification(ctx context.Context, job model.NotificationJob) error
	DeadLetter(ctx context.Context, job model.NotificationJob) error
}

type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// NotificationWorker delivers queued notification jobs on a bounded pool.
type NotificationWorker struct {
	source      JobSource
	sink        JobSink
	sender      Sender
	maxAttempts int
	workerPool  *WorkerPool
	log         zerolog.Logger
}

func NewNotificationWorker(source JobSource, sink JobSink, sender Sender, workers, maxAttempts int) *NotificationWorker {
	return &NotificationWorker{
		source:      source,
		sink:        sink,
		sender:      sender,
		maxAttempts: maxAttempts,
		workerPool:  NewWorkerPool(workers),
		log:         logger.Component("notify_worker"),
	}
}

// Start blocks until ctx is done.
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.log.Info().Int("max_attempts", w.maxAttempts).Msg("Starting notification worker")

	w.workerPool.Start(ctx)

	return w.source.ConsumeNotifications(ctx, w.handleJob)
}

func (w *NotificationWorker) Stop() {
	w.log.Info().Msg("Stopping notification worker")
	w.workerPool.Stop()
}

func (w *NotificationWorker) handleJob(ctx context.Context, job model.NotificationJob) error {
	err := w.workerPool.Submit(ctx, func(ctx context.Context) error {
		return w.deliver(ctx, job)
	})
	if err != nil {
		// Shutting down: hand the job back so it is not lost.
		return w.requeue(job)
	}
	return nil
}

func (w *NotificationWorker) deliver(ctx context.Context, job model.NotificationJob) error {
	log := w.log.With().Str("to", job.To).Int("attempt", job.Attempts+1).Logger()

	err := w.sender.Send(ctx, job.To, job.Body)
	if err == nil {
		log.Info().Dur("queued_for", time.Since(job.EnqueuedAt)).Msg("Notification delivered")
		return nil
	}

	job.Attempts++
	if errors.IsRetryable(err) && job.Attempts < w.maxAttempts {
		log.Warn().Err(err).Msg("Notification failed, retrying")
		return w.requeue(job)
	}

	log.Error().Err(err).Msg("Notification failed, moving to dead letter queue")
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requeueTimeout)
	defer cancel()
	return w.sink.DeadLetter(dctx, job)
}

func (w *NotificationWorker) requeue(job model.NotificationJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), requeueTimeout)
	defer cancel()
	return w.sink.EnqueueNotification(ctx, job)
}
