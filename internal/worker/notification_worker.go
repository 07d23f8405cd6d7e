package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/user-records/internal/config"
	"github.com/spec-kit/user-records/internal/events"
	"github.com/spec-kit/user-records/internal/service"
)

// StartNotificationWorker builds the notification service and subscribes it to
// user lifecycle events. Without a dispatcher there is nothing to observe.
func StartNotificationWorker(dispatcher events.Dispatcher, publisher service.RedisPublisher, logger *zap.Logger, cfg config.NotificationConfig) *service.NotificationService {
	if dispatcher == nil {
		return nil
	}
	notifications := service.NewNotificationService(dispatcher, publisher, logger, cfg)
	notifications.RegisterHandlers()
	logger.Info("notification worker started",
		zap.Bool("redis_fanout", publisher != nil),
		zap.String("channel", cfg.RedisChannel))
	return notifications
}
