package service

import (
	"context"
	"testing"
	"time"

	"councellorx-be/internal/dto"
	"councellorx-be/internal/pkg/logger"
	"councellorx-be/internal/repository/memory"
	"councellorx-be/pkg/chatsession"
	"councellorx-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retryFixture struct {
	store     *fakeStore
	outbox    *memory.OutboxRepository
	notifier  *fakeNotifier
	publisher *fakePublisher
	chat      IChatService
}

func newRetryFixture(t *testing.T, maxAttempts int) *retryFixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	f := &retryFixture{
		store:     newFakeStore(),
		outbox:    memory.NewOutboxRepository(),
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
	}
	log := logger.NewNopLogger()
	retry := NewPersistRetryService(pubSub, f.store, f.outbox, f.notifier, f.publisher, log, maxAttempts, time.Millisecond)
	require.NoError(t, retry.Consume(ctx))

	f.chat = NewChatService(f.store, f.outbox, nil, retry, f.notifier, f.publisher, log)
	return f
}

func TestPersistRetry_RecoversAfterTransientFailure(t *testing.T) {
	f := newRetryFixture(t, 3)
	userID := uuid.New()
	session := f.store.seedSession(userID)
	f.store.failNextMessageCreates(2)

	res, err := f.chat.AppendMessage(context.Background(), userID, session.Id, chatsession.RoleUser, "eventually saved", nil)
	require.NoError(t, err)
	require.Equal(t, dto.MessageStatusPending, res.Status)

	assert.Eventually(t, func() bool {
		return f.store.messageCount(session.Id) == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		_, staged := f.outbox.Get(res.Id)
		return !staged
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "eventually saved", f.store.session(session.Id).Title)
	assert.NotContains(t, f.publisher.types(), events.MessagePersistFailed)
}

func TestPersistRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newRetryFixture(t, 3)
	userID := uuid.New()
	session := f.store.seedSession(userID)
	f.store.failNextMessageCreates(100)

	res, err := f.chat.AppendMessage(context.Background(), userID, session.Id, chatsession.RoleUser, "lost", nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		for _, typ := range f.publisher.types() {
			if typ == events.MessagePersistFailed {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	assert.Contains(t, f.notifier.types(), events.FeedMessagePersistFailed)
	_, staged := f.outbox.Get(res.Id)
	assert.False(t, staged)
	assert.Equal(t, 0, f.store.messageCount(session.Id))
}

func TestPersistRetry_DropsMessageWhenSessionDeleted(t *testing.T) {
	f := newRetryFixture(t, 5)
	userID := uuid.New()
	session := f.store.seedSession(userID)
	f.store.failNextMessageCreates(1)

	res, err := f.chat.AppendMessage(context.Background(), userID, session.Id, chatsession.RoleUser, "orphan", nil)
	require.NoError(t, err)

	// Removing the row directly leaves the outbox entry for the worker to find.
	require.NoError(t, f.store.NewUnitOfWork(context.Background()).ChatSessionRepository().Delete(context.Background(), session.Id))

	assert.Eventually(t, func() bool {
		_, staged := f.outbox.Get(res.Id)
		return !staged
	}, 2*time.Second, 5*time.Millisecond)
	assert.NotContains(t, f.publisher.types(), events.MessagePersistFailed)
}
