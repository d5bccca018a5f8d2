package service

import (
	"context"

	"microwave/internal/logger"
)

// Notifier tells the user something happened, e.g. that the food is ready.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

var _ Notifier = (*LogNotifier)(nil)

// LogNotifier writes notifications to the application log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, message string) error {
	n.log.Infow("oven_notification", "message", message)
	return nil
}
