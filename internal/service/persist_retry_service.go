package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"councellorx-be/internal/dto"
	"councellorx-be/internal/pkg/logger"
	"councellorx-be/internal/repository/memory"
	"councellorx-be/internal/repository/unitofwork"
	"councellorx-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const PersistRetryTopic = "chat.persist_retry"

type IPersistRetryService interface {
	RetryScheduler
	Consume(ctx context.Context) error
}

type persistRetryService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	persister   *messagePersister
	outbox      *memory.OutboxRepository
	notifier    FeedNotifier
	publisher   EventPublisher
	logger      logger.ILogger
	maxAttempts int
	baseDelay   time.Duration
}

func NewPersistRetryService(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	outbox *memory.OutboxRepository,
	notifier FeedNotifier,
	publisher EventPublisher,
	logger logger.ILogger,
	maxAttempts int,
	baseDelay time.Duration,
) IPersistRetryService {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &persistRetryService{
		pubSub:      pubSub,
		topicName:   PersistRetryTopic,
		persister:   &messagePersister{uowFactory: uowFactory},
		outbox:      outbox,
		notifier:    notifier,
		publisher:   publisher,
		logger:      logger,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

func (rs *persistRetryService) Schedule(ctx context.Context, messageID uuid.UUID) error {
	payload, err := json.Marshal(dto.PersistRetryMessage{MessageId: messageID})
	if err != nil {
		return err
	}
	return rs.pubSub.Publish(rs.topicName, message.NewMessage(watermill.NewUUID(), payload))
}

func (rs *persistRetryService) Consume(ctx context.Context) error {
	messages, err := rs.pubSub.Subscribe(ctx, rs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var payload dto.PersistRetryMessage
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				rs.logger.Error("PERSIST_RETRY", "Invalid retry payload", map[string]interface{}{"error": err.Error()})
				msg.Ack()
				continue
			}
			// gochannel holds further deliveries until ack, so ack first and
			// back off in a goroutine.
			msg.Ack()
			go rs.retry(ctx, payload.MessageId)
		}
	}()

	return nil
}

// retry waits baseDelay, 2*baseDelay, 4*baseDelay... between attempts and
// gives up after maxAttempts.
func (rs *persistRetryService) retry(ctx context.Context, messageID uuid.UUID) {
	for {
		pending, ok := rs.outbox.Get(messageID)
		if !ok {
			return
		}
		if pending.Attempts >= rs.maxAttempts {
			rs.giveUp(ctx, pending)
			return
		}

		delay := rs.baseDelay << uint(pending.Attempts)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		session, err := rs.persister.persist(ctx, pending.UserId, pending.Message)
		if err == nil {
			rs.outbox.Remove(messageID)
			rs.logger.Info("PERSIST_RETRY", "Message persisted on retry", map[string]interface{}{
				"message_id": messageID.String(),
				"attempt":    pending.Attempts + 1,
			})
			notifyFeed(rs.notifier, pending.UserId, events.FeedMessageAppended, toMessageResponse(&pending.Message, dto.MessageStatusPersisted))
			notifyFeed(rs.notifier, pending.UserId, events.FeedSessionUpdated, toSessionResponse(session))
			return
		}
		if errors.Is(err, ErrSessionNotFound) {
			rs.outbox.Remove(messageID)
			rs.logger.Warn("PERSIST_RETRY", "Session gone, dropping staged message", map[string]interface{}{
				"message_id": messageID.String(),
			})
			return
		}

		attempts := rs.outbox.RecordAttempt(messageID, err)
		rs.logger.Warn("PERSIST_RETRY", "Retry failed", map[string]interface{}{
			"message_id": messageID.String(),
			"attempt":    attempts,
			"error":      err.Error(),
		})
	}
}

func (rs *persistRetryService) giveUp(ctx context.Context, pending *memory.PendingMessage) {
	rs.outbox.Remove(pending.Message.Id)

	details := map[string]interface{}{
		"message_id": pending.Message.Id.String(),
		"session_id": pending.Message.ChatSessionId.String(),
		"user_id":    pending.UserId.String(),
		"attempts":   pending.Attempts,
		"error":      pending.LastError,
	}
	rs.logger.Error("PERSIST_RETRY", "Giving up on message", details)

	notifyFeed(rs.notifier, pending.UserId, events.FeedMessagePersistFailed, map[string]interface{}{
		"message_id":      pending.Message.Id,
		"chat_session_id": pending.Message.ChatSessionId,
		"error":           pending.LastError,
	})
	publishEvent(ctx, rs.publisher, rs.logger, events.MessagePersistFailed, details)
}
