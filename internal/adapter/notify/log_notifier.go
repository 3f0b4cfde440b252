package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier records user-facing cart notifications in the service log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

func (n *LogNotifier) Success(_ context.Context, session, message string) {
	n.logger.Info(message, zap.String("session", session), zap.String("kind", "success"))
}

func (n *LogNotifier) Error(_ context.Context, session, message string) {
	n.logger.Warn(message, zap.String("session", session), zap.String("kind", "error"))
}
