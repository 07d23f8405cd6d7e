package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/user-records/internal/config"
	"github.com/spec-kit/user-records/internal/domain"
	"github.com/spec-kit/user-records/internal/events"
	"github.com/spec-kit/user-records/internal/repository"
)

type fakePublisher struct {
	channel  string
	messages [][]byte
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.channel = channel
	f.messages = append(f.messages, message.([]byte))
	cmd.SetVal(1)
	return cmd
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestNotificationService_PublishesLifecycleEvents(t *testing.T) {
	logger, logs := newObservedLogger()
	publisher := &fakePublisher{}
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, publisher, logger, config.NotificationConfig{RedisChannel: "users.events"}).RegisterHandlers()

	svc := NewUserService(UserDependencies{
		UserRepo:   repository.NewInMemoryUserRepository(),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	u, err := svc.Create(context.Background(), input("A", "B", "a@b.com", "123", domain.GovIDTypePassport))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), domain.UserCriteria{Email: ptr("a@b.com")}))

	assert.Equal(t, "users.events", publisher.channel)
	require.Len(t, publisher.messages, 2)

	var created events.Event
	require.NoError(t, json.Unmarshal(publisher.messages[0], &created))
	assert.Equal(t, events.EventUserCreated, created.Type)
	assert.Equal(t, u.ID, created.UserID)
	assert.NotEmpty(t, created.ID)
	payload, ok := created.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "passport", payload["gov_id_type"])

	var deleted events.Event
	require.NoError(t, json.Unmarshal(publisher.messages[1], &deleted))
	assert.Equal(t, events.EventUserDeleted, deleted.Type)

	assert.Equal(t, 1, logs.FilterMessage("UserCreated").Len())
	assert.Equal(t, 1, logs.FilterMessage("UserDeleted").Len())
}

func TestNotificationService_PublishFailureIsLogged(t *testing.T) {
	logger, logs := newObservedLogger()
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, &fakePublisher{err: errors.New("redis down")}, logger,
		config.NotificationConfig{RedisChannel: "users.events"}).RegisterHandlers()

	svc := NewUserService(UserDependencies{UserRepo: repository.NewInMemoryUserRepository(), Dispatcher: dispatcher, Logger: logger})

	_, err := svc.Create(context.Background(), input("A", "B", "a@b.com", "123", domain.GovIDTypePassport))
	require.NoError(t, err, "fan-out failures do not fail the request")

	warnings := logs.FilterMessage("event handlers failed").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, string(events.EventUserCreated), warnings[0].ContextMap()["event_type"])
}

func TestNotificationService_WithoutPublisher(t *testing.T) {
	logger, logs := newObservedLogger()
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, nil, logger, config.NotificationConfig{RedisChannel: "users.events"}).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventUserCreated, UserID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("UserCreated").Len())
	assert.Zero(t, logs.FilterMessage("event published").Len())
}
