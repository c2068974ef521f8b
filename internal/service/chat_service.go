package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"councellorx-be/internal/dto"
	"councellorx-be/internal/entity"
	"councellorx-be/internal/pkg/logger"
	"councellorx-be/internal/repository/memory"
	"councellorx-be/internal/repository/specification"
	"councellorx-be/internal/repository/unitofwork"
	"councellorx-be/pkg/chatsession"
	"councellorx-be/pkg/events"

	"github.com/google/uuid"
)

var (
	ErrInvalidRole  = errors.New("role must be user or assistant")
	ErrEmptyMessage = errors.New("message content is required")
)

// RetryScheduler hands a staged message to the persistence retry worker.
type RetryScheduler interface {
	Schedule(ctx context.Context, messageID uuid.UUID) error
}

type IChatService interface {
	NewSession(ctx context.Context, userID uuid.UUID) (*dto.ChatSessionResponse, error)
	ListSessions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.ChatSessionResponse, error)
	LoadSession(ctx context.Context, userID, sessionID uuid.UUID) ([]*dto.ChatMessageResponse, error)
	SessionExists(ctx context.Context, userID, sessionID uuid.UUID) (bool, error)
	AppendMessage(ctx context.Context, userID, sessionID uuid.UUID, role, content string, meta map[string]interface{}) (*dto.ChatMessageResponse, error)
	DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	persister  *messagePersister
	outbox     *memory.OutboxRepository
	intakeRepo *memory.IntakeRepository
	retry      RetryScheduler
	notifier   FeedNotifier
	publisher  EventPublisher
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	outbox *memory.OutboxRepository,
	intakeRepo *memory.IntakeRepository,
	retry RetryScheduler,
	notifier FeedNotifier,
	publisher EventPublisher,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		persister:  &messagePersister{uowFactory: uowFactory},
		outbox:     outbox,
		intakeRepo: intakeRepo,
		retry:      retry,
		notifier:   notifier,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *chatService) NewSession(ctx context.Context, userID uuid.UUID) (*dto.ChatSessionResponse, error) {
	now := time.Now()
	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userID,
		Title:     chatsession.DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	res := toSessionResponse(session)
	notifyFeed(s.notifier, userID, events.FeedSessionCreated, res)
	return res, nil
}

// MaxSessionPage caps one page of ListSessions.
const MaxSessionPage = 100

// ListSessions pages through the user's sessions, newest first. A limit of
// zero returns every session.
func (s *chatService) ListSessions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.ChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userID},
		specification.OrderBy{Field: "updated_at", Desc: true},
	}
	if limit > 0 {
		if limit > MaxSessionPage {
			limit = MaxSessionPage
		}
		if offset < 0 {
			offset = 0
		}
		specs = append(specs, specification.Pagination{Limit: limit, Offset: offset})
	}

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, toSessionResponse(session))
	}
	return res, nil
}

func (s *chatService) SessionExists(ctx context.Context, userID, sessionID uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionID},
		specification.UserOwnedBy{UserID: userID},
	)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

// LoadSession returns committed messages merged with the ones still staged in
// the outbox. Missing and foreign sessions read as empty.
func (s *chatService) LoadSession(ctx context.Context, userID, sessionID uuid.UUID) ([]*dto.ChatMessageResponse, error) {
	exists, err := s.SessionExists(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []*dto.ChatMessageResponse{}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionID},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatMessageResponse, 0, len(messages))
	seen := make(map[uuid.UUID]struct{}, len(messages))
	for _, m := range messages {
		seen[m.Id] = struct{}{}
		res = append(res, toMessageResponse(m, dto.MessageStatusPersisted))
	}
	for _, m := range s.outbox.ListBySession(sessionID) {
		if _, ok := seen[m.Id]; ok {
			continue
		}
		m := m
		res = append(res, toMessageResponse(&m, dto.MessageStatusPending))
	}

	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

// AppendMessage stages the message, then tries to commit it. A failed commit
// is not an error for the caller: the message stays pending and the retry
// worker takes over.
func (s *chatService) AppendMessage(ctx context.Context, userID, sessionID uuid.UUID, role, content string, meta map[string]interface{}) (*dto.ChatMessageResponse, error) {
	if !chatsession.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	msg := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionID,
		Role:          role,
		Content:       content,
		Meta:          meta,
		CreatedAt:     time.Now(),
	}

	// Phase 1
	s.outbox.Put(&memory.PendingMessage{
		Message:  msg,
		UserId:   userID,
		StagedAt: msg.CreatedAt,
	})

	// Phase 2
	session, err := s.persister.persist(ctx, userID, msg)
	if errors.Is(err, ErrSessionNotFound) {
		s.outbox.Remove(msg.Id)
		return nil, err
	}
	if err != nil {
		s.logger.Warn("CHAT", "Message commit failed, scheduling retry", map[string]interface{}{
			"message_id": msg.Id.String(),
			"session_id": sessionID.String(),
			"error":      err.Error(),
		})
		if s.retry != nil {
			if serr := s.retry.Schedule(ctx, msg.Id); serr != nil {
				s.logger.Error("CHAT", "Failed to schedule persist retry", map[string]interface{}{
					"message_id": msg.Id.String(),
					"error":      serr.Error(),
				})
			}
		}
		res := toMessageResponse(&msg, dto.MessageStatusPending)
		notifyFeed(s.notifier, userID, events.FeedMessageAppended, res)
		return res, nil
	}

	s.outbox.Remove(msg.Id)
	res := toMessageResponse(&msg, dto.MessageStatusPersisted)
	notifyFeed(s.notifier, userID, events.FeedMessageAppended, res)
	notifyFeed(s.notifier, userID, events.FeedSessionUpdated, toSessionResponse(session))
	return res, nil
}

// DeleteSession removes the messages and then the session in one transaction.
func (s *chatService) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionID},
		specification.UserOwnedBy{UserID: userID},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.outbox.RemoveBySession(sessionID)
	if s.intakeRepo != nil {
		s.intakeRepo.Delete(sessionID.String())
	}

	notifyFeed(s.notifier, userID, events.FeedSessionDeleted, map[string]interface{}{"id": sessionID})
	publishEvent(ctx, s.publisher, s.logger, events.SessionDeleted, map[string]interface{}{
		"user_id":    userID.String(),
		"session_id": sessionID.String(),
	})
	return nil
}

func toSessionResponse(session *entity.ChatSession) *dto.ChatSessionResponse {
	return &dto.ChatSessionResponse{
		Id:          session.Id,
		Title:       session.Title,
		LastPreview: session.LastPreview,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
}

func toMessageResponse(m *entity.ChatMessage, status string) *dto.ChatMessageResponse {
	return &dto.ChatMessageResponse{
		Id:            m.Id,
		ChatSessionId: m.ChatSessionId,
		Role:          m.Role,
		Content:       m.Content,
		Meta:          m.Meta,
		CreatedAt:     m.CreatedAt,
		Status:        status,
	}
}
