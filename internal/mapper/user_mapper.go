package mapper

import (
	"councellorx-be/internal/entity"
	"councellorx-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:           u.Id,
		Email:        u.Email,
		Username:     u.Username,
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
		AuthProvider: entity.AuthProvider(u.AuthProvider),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	provider := string(u.AuthProvider)
	if provider == "" {
		provider = string(entity.AuthProviderPassword)
	}
	return &model.User{
		Id:           u.Id,
		Email:        u.Email,
		Username:     u.Username,
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
		AuthProvider: provider,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *UserMapper) UsernameToEntity(u *model.Username) *entity.Username {
	if u == nil {
		return nil
	}
	return &entity.Username{Lower: u.Lower, UserId: u.UserId, Email: u.Email, CreatedAt: u.CreatedAt}
}

func (m *UserMapper) UsernameToModel(u *entity.Username) *model.Username {
	if u == nil {
		return nil
	}
	return &model.Username{Lower: u.Lower, UserId: u.UserId, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Token Mappers

func (m *UserMapper) PasswordResetTokenToEntity(t *model.PasswordResetToken) *entity.PasswordResetToken {
	if t == nil {
		return nil
	}
	return &entity.PasswordResetToken{
		Id:        t.Id,
		UserId:    t.UserId,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		Used:      t.Used,
		CreatedAt: t.CreatedAt,
	}
}

func (m *UserMapper) PasswordResetTokenToModel(t *entity.PasswordResetToken) *model.PasswordResetToken {
	if t == nil {
		return nil
	}
	return &model.PasswordResetToken{
		Id:        t.Id,
		UserId:    t.UserId,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		Used:      t.Used,
		CreatedAt: t.CreatedAt,
	}
}
