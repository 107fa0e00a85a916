package notify

import (
	"context"
	"fmt"

	"gradepulse/internal/config"
	"gradepulse/internal/logger"
	"gradepulse/internal/model"

	"github.com/rs/zerolog"
)

// Notifier delivers a text message to a phone number in +<country><number> form.
type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

// Enqueuer is the part of the queue producer the queue driver needs.
type Enqueuer interface {
	EnqueueNotification(ctx context.Context, job model.NotificationJob) error
}

// New builds the notifier selected by notifications.driver. The enqueuer is
// only used by the queue driver and may be nil otherwise.
func New(cfg *config.Config, enqueuer Enqueuer) (Notifier, error) {
	switch cfg.Notifications.Driver {
	case "whatsapp":
		return NewWhatsAppClient(cfg.WhatsApp), nil
	case "queue":
		if enqueuer == nil {
			return nil, fmt.Errorf("queue notification driver needs a redis producer")
		}
		return NewQueueNotifier(enqueuer), nil
	case "log":
		return NewLogNotifier(), nil
	}
	return nil, fmt.Errorf("unknown notification driver %q", cfg.Notifications.Driver)
}

// LogNotifier writes messages to the log instead of sending them.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Component("notify")}
}

func (n *LogNotifier) Send(ctx context.Context, to, body string) error {
	n.log.Info().Str("to", to).Str("body", body).Msg("Notification (log driver)")
	return nil
}
