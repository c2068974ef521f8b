package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"councellorx-be/internal/config"
	"councellorx-be/internal/dto"
	"councellorx-be/internal/entity"
	"councellorx-be/internal/pkg/logger"
	"councellorx-be/internal/pkg/mailer"
	"councellorx-be/internal/pkg/serverutils"
	"councellorx-be/internal/repository/contract"
	"councellorx-be/internal/repository/specification"
	"councellorx-be/internal/repository/unitofwork"
	"councellorx-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	UsernameAvailable(ctx context.Context, username string) (*dto.UsernameAvailabilityResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	publisher    EventPublisher
	logger       logger.ILogger
	cfg          config.AuthConfig
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	publisher EventPublisher,
	logger logger.ILogger,
	cfg config.AuthConfig,
) IAuthService {
	return &authService{
		uowFactory:   uowFactory,
		emailService: emailService,
		publisher:    publisher,
		logger:       logger,
		cfg:          cfg,
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	lower := normalizeUsername(req.Username)
	if !usernamePattern.MatchString(lower) {
		return nil, ErrInvalidUsername
	}
	if len(req.Password) < s.cfg.MinPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	now := time.Now()
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = strings.TrimSpace(req.Username)
	}
	user := &entity.User{
		Id:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     strings.TrimSpace(req.Username),
		DisplayName:  displayName,
		PasswordHash: &hashStr,
		AuthProvider: entity.AuthProviderPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The username index row and the user row commit together.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.UserRepository()
	existing, err := repo.FindOne(ctx, specification.ByEmail{Email: user.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}
	taken, err := repo.FindUsername(ctx, lower)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, ErrUsernameInUse
	}

	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := repo.CreateUsername(ctx, &entity.Username{
		Lower:     lower,
		UserId:    user.Id,
		Email:     user.Email,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("AUTH", "User registered", map[string]interface{}{"user_id": user.Id.String()})
	publishEvent(ctx, s.publisher, s.logger, events.UserRegistered, map[string]interface{}{
		"user_id":  user.Id.String(),
		"provider": string(user.AuthProvider),
	})

	return &dto.RegisterResponse{Id: user.Id, Email: user.Email, Username: user.Username}, nil
}

// resolveUser accepts an email or a username.
func resolveUser(ctx context.Context, repo contract.UserRepository, identifier string) (*entity.User, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		user, err := repo.FindOne(ctx, specification.ByEmail{Email: identifier})
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrInvalidCredential
		}
		return user, nil
	}

	idx, err := repo.FindUsername(ctx, normalizeUsername(identifier))
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, ErrUserNotFound
	}
	user, err := repo.FindOne(ctx, specification.ByID{ID: idx.UserId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := resolveUser(ctx, uow.UserRepository(), req.Identifier)
	if err != nil {
		return nil, err
	}

	// Google-only accounts have no password to compare.
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	res, err := issueLoginResponse(s.cfg, user)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, events.UserLogin, map[string]interface{}{
		"user_id":  user.Id.String(),
		"provider": string(entity.AuthProviderPassword),
		"time":     time.Now().Format(time.RFC822),
	})
	return res, nil
}

func issueLoginResponse(cfg config.AuthConfig, user *entity.User) (*dto.LoginResponse, error) {
	token, err := serverutils.IssueToken(cfg.JWTSecret, user.Id, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(cfg.TokenTTL),
		User: dto.UserDTO{
			Id:          user.Id,
			Email:       user.Email,
			Username:    user.Username,
			DisplayName: user.DisplayName,
		},
	}, nil
}

func (s *authService) UsernameAvailable(ctx context.Context, username string) (*dto.UsernameAvailabilityResponse, error) {
	lower := normalizeUsername(username)
	if !usernamePattern.MatchString(lower) {
		return nil, ErrInvalidUsername
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	idx, err := uow.UserRepository().FindUsername(ctx, lower)
	if err != nil {
		return nil, err
	}
	return &dto.UsernameAvailabilityResponse{Username: lower, Available: idx == nil}, nil
}

// ForgotPassword always succeeds so callers cannot tell which accounts exist.
func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		return nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	raw := hex.EncodeToString(buf)

	resetToken := &entity.PasswordResetToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		TokenHash: hashToken(raw),
		ExpiresAt: time.Now().Add(s.cfg.ResetTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().CreatePasswordResetToken(ctx, resetToken); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}

	go func() {
		if err := s.emailService.SendResetToken(user.Email, raw, s.cfg.ResetTokenTTL); err != nil {
			s.logger.Error("AUTH", "Failed to send reset email", map[string]interface{}{
				"user_id": user.Id.String(),
				"error":   err.Error(),
			})
		}
	}()

	publishEvent(ctx, s.publisher, s.logger, events.PasswordResetRequest, map[string]interface{}{
		"user_id": user.Id.String(),
	})
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if len(req.NewPassword) < s.cfg.MinPasswordLen {
		return ErrWeakPassword
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.UserRepository()
	token, err := repo.FindPasswordResetToken(ctx,
		specification.ByTokenHash{Hash: hashToken(strings.TrimSpace(req.Token))},
		specification.UnusedToken{},
	)
	if err != nil {
		return err
	}
	if token == nil || time.Now().After(token.ExpiresAt) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := repo.UpdatePassword(ctx, token.UserId, string(hash)); err != nil {
		return err
	}
	if err := repo.MarkTokenUsed(ctx, token.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	publishEvent(ctx, s.publisher, s.logger, events.PasswordReset, map[string]interface{}{
		"user_id": token.UserId.String(),
	})
	return nil
}
