package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"councellorx-be/internal/entity"
	"councellorx-be/internal/repository/specification"
	"councellorx-be/internal/repository/unitofwork"
	"councellorx-be/pkg/chatsession"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("chat session not found")

// messagePersister is phase two of an append. It is shared by the chat
// service and the retry worker.
type messagePersister struct {
	uowFactory unitofwork.RepositoryFactory
}

// persist writes msg and the session metadata it implies in one transaction
// and returns the updated session.
func (p *messagePersister) persist(ctx context.Context, ownerID uuid.UUID, msg entity.ChatMessage) (*entity.ChatSession, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer uow.Rollback()

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: msg.ChatSessionId},
	)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.UserId != ownerID {
		return nil, ErrSessionNotFound
	}

	var priorUserMessages int64
	if msg.Role == chatsession.RoleUser && session.Title == chatsession.DefaultTitle {
		priorUserMessages, err = uow.ChatMessageRepository().Count(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
			specification.ByRole{Role: chatsession.RoleUser},
		)
		if err != nil {
			return nil, fmt.Errorf("count messages: %w", err)
		}
	}

	if err := uow.ChatMessageRepository().Create(ctx, &msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if chatsession.ShouldRetitle(session.Title, msg.Role, priorUserMessages) {
		session.Title = chatsession.DeriveTitle(msg.Content)
	}
	session.LastPreview = chatsession.Preview(msg.Content)
	session.UpdatedAt = chatsession.NextUpdatedAt(session.UpdatedAt, time.Now())

	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return session, nil
}
