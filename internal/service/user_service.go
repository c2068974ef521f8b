package service

import (
	"context"
	"strings"
	"time"

	"councellorx-be/internal/dto"
	"councellorx-be/internal/pkg/serverutils"
	"councellorx-be/internal/repository/specification"
	"councellorx-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

var errProfileNotFound = serverutils.NotFound("User not found")

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errProfileNotFound
	}

	return &dto.UserProfileResponse{
		Id:           user.Id,
		Email:        user.Email,
		Username:     user.Username,
		DisplayName:  user.DisplayName,
		AuthProvider: string(user.AuthProvider),
		CreatedAt:    user.CreatedAt,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errProfileNotFound
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, serverutils.BadRequest("Display name cannot be blank")
	}
	user.DisplayName = name
	user.UpdatedAt = time.Now()
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userId)
}
