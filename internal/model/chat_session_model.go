package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_sessions_user_updated,priority:1"`
	Title       string    `gorm:"type:text;not null"`
	LastPreview string    `gorm:"type:varchar(400);not null;default:''"`
	CreatedAt   time.Time `gorm:"not null"`
	// Set by the service, never by gorm, so it can stay monotonic.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false;index:idx_chat_sessions_user_updated,priority:2,sort:desc"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
