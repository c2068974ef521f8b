package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	// UI hints only (options, document panel). Never file content.
	Meta      map[string]interface{}
	CreatedAt time.Time
}
