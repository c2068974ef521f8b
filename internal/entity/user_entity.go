package entity

import (
	"time"

	"github.com/google/uuid"
)

type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderGoogle   AuthProvider = "google"
)

type User struct {
	Id           uuid.UUID
	Email        string
	Username     string
	DisplayName  string
	PasswordHash *string
	AuthProvider AuthProvider
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Username struct {
	Lower     string
	UserId    uuid.UUID
	Email     string
	CreatedAt time.Time
}

type PasswordResetToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
