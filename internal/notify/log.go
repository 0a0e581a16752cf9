package notify

import (
	"context"
	"go.uber.org/zap"
)

// LogSender writes emails to the log instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(_ context.Context, msg *Message) error {
	l.logger.Info("email (log driver)",
		zap.String("to", msg.To.Email),
		zap.String("to_name", msg.To.Name),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}
