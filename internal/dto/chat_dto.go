package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatSessionResponse struct {
	Id          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	LastPreview string    `json:"last_preview"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ChatMessageResponse struct {
	Id            uuid.UUID              `json:"id"`
	ChatSessionId uuid.UUID              `json:"chat_session_id"`
	Role          string                 `json:"role"`
	Content       string                 `json:"content"`
	Meta          map[string]interface{} `json:"meta,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	// "persisted" or "pending"
	Status string `json:"status"`
}

type AppendMessageRequest struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

const (
	MessageStatusPersisted = "persisted"
	MessageStatusPending   = "pending"
)

// PersistRetryMessage is the payload on the persistence retry topic.
type PersistRetryMessage struct {
	MessageId uuid.UUID `json:"message_id"`
}
