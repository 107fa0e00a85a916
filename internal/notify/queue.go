package notify

import (
	"context"
	"time"

	"gradepulse/internal/model"
)

// QueueNotifier hands messages to the notify worker through Redis.
type QueueNotifier struct {
	enqueuer Enqueuer
	now      func() time.Time
}

func NewQueueNotifier(enqueuer Enqueuer) *QueueNotifier {
	return &QueueNotifier{enqueuer: enqueuer, now: time.Now}
}

func (n *QueueNotifier) Send(ctx context.Context, to, body string) error {
	return n.enqueuer.EnqueueNotification(ctx, model.NotificationJob{
		To:         to,
		Body:       body,
		EnqueuedAt: n.now(),
	})
}
