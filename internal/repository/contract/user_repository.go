package contract

import (
	"context"

	"councellorx-be/internal/entity"
	"councellorx-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error

	// Username index
	CreateUsername(ctx context.Context, username *entity.Username) error
	FindUsername(ctx context.Context, lower string) (*entity.Username, error)

	// Password reset tokens
	CreatePasswordResetToken(ctx context.Context, token *entity.PasswordResetToken) error
	FindPasswordResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error)
	MarkTokenUsed(ctx context.Context, id uuid.UUID) error
}
