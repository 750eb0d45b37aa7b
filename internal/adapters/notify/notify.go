// Package notify delivers submission notifications to a log or a Kafka topic.
package notify

import (
	"context"

	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/pkg/logger"
)

// LogNotifier writes each notification as a structured log record.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(l logger.Logger) *LogNotifier {
	if l == nil {
		l = logger.Get().Named("notify")
	}
	return &LogNotifier{log: l}
}

func (n *LogNotifier) Notify(ctx context.Context, m model.Notification) error {
	fields := []logger.Field{
		logger.String("id", m.ID),
		logger.String("kind", m.Kind),
		logger.String("subject", m.Subject),
	}
	if m.Email != "" {
		fields = append(fields, logger.String("email", m.Email))
	}
	for k, v := range m.Data {
		fields = append(fields, logger.String(k, v))
	}
	n.log.Info(ctx, "notification", fields...)
	return nil
}

// Close is a no-op.
func (n *LogNotifier) Close() error { return nil }
