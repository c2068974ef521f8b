package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string    `gorm:"type:varchar(30);not null"`
	DisplayName  string    `gorm:"type:varchar(255);not null"`
	PasswordHash *string   `gorm:"type:varchar(255)"`
	AuthProvider string    `gorm:"type:varchar(20);not null;default:'password'"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Username is the case-insensitive username index. The primary key is the
// lowercased username, so uniqueness is enforced by the database.
type Username struct {
	Lower     string    `gorm:"column:username_lower;type:varchar(30);primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Email     string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Username) TableName() string {
	return "usernames"
}

type PasswordResetToken struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:char(64);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
