package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/user-records/internal/config"
	"github.com/spec-kit/user-records/internal/events"
)

func TestStartNotificationWorker(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()

	svc := StartNotificationWorker(dispatcher, nil, zap.New(core), config.NotificationConfig{RedisChannel: "users.events"})
	require.NotNil(t, svc)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventUserDeleted, UserID: "u-1"}))
	assert.Equal(t, 1, logs.FilterMessage("notification worker started").Len())
	assert.Equal(t, 1, logs.FilterMessage("UserDeleted").Len())
}

func TestStartNotificationWorkerWithoutDispatcher(t *testing.T) {
	assert.Nil(t, StartNotificationWorker(nil, nil, zap.NewNop(), config.NotificationConfig{}))
}
