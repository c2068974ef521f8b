package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"councellorx-be/internal/config"
	"councellorx-be/internal/dto"
	"councellorx-be/internal/entity"
	"councellorx-be/internal/pkg/logger"
	"councellorx-be/internal/repository/contract"
	"councellorx-be/internal/repository/specification"
	"councellorx-be/internal/repository/unitofwork"
	"councellorx-be/pkg/events"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var errInvalidOAuthState = errors.New("invalid or expired oauth state")

type IOAuthService interface {
	GetLoginURL(provider string) (string, error)
	HandleCallback(ctx context.Context, provider, code, state string) (*dto.LoginResponse, error)
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

type oauthService struct {
	uowFactory unitofwork.RepositoryFactory
	googleConf *oauth2.Config
	states     *cache.Cache
	publisher  EventPublisher
	logger     logger.ILogger
	authCfg    config.AuthConfig
}

func NewOAuthService(
	uowFactory unitofwork.RepositoryFactory,
	oauthCfg config.OAuthConfig,
	authCfg config.AuthConfig,
	publisher EventPublisher,
	logger logger.ILogger,
) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     oauthCfg.GoogleClientID,
		ClientSecret: oauthCfg.GoogleClientSecret,
		RedirectURL:  oauthCfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	logger.Info("OAUTH", "Google OAuth initialized", map[string]interface{}{
		"redirect_url": conf.RedirectURL,
		"configured":   conf.ClientID != "",
	})

	return &oauthService{
		uowFactory: uowFactory,
		googleConf: conf,
		states:     cache.New(10*time.Minute, 10*time.Minute),
		publisher:  publisher,
		logger:     logger,
		authCfg:    authCfg,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, error) {
	if provider != string(entity.AuthProviderGoogle) {
		return "", ErrUnsupportedOAuth
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(b)
	s.states.SetDefault(state, struct{}{})

	return s.googleConf.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider, code, state string) (*dto.LoginResponse, error) {
	if provider != string(entity.AuthProviderGoogle) {
		return nil, ErrUnsupportedOAuth
	}
	if _, ok := s.states.Get(state); !ok {
		return nil, errInvalidOAuthState
	}
	s.states.Delete(state)

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	profile, err := s.fetchGoogleUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if profile.Email == "" {
		return nil, errors.New("google account has no email")
	}

	user, err := s.findOrCreate(ctx, profile)
	if err != nil {
		return nil, err
	}

	res, err := issueLoginResponse(s.authCfg, user)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, events.UserLogin, map[string]interface{}{
		"user_id":  user.Id.String(),
		"provider": string(entity.AuthProviderGoogle),
		"time":     time.Now().Format(time.RFC822),
	})
	return res, nil
}

func (s *oauthService) fetchGoogleUser(ctx context.Context, token *oauth2.Token) (*googleUser, error) {
	resp, err := s.googleConf.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var u googleUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &u, nil
}

func (s *oauthService) findOrCreate(ctx context.Context, profile *googleUser) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.UserRepository()
	user, err := repo.FindOne(ctx, specification.ByEmail{Email: profile.Email})
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, uow.Commit()
	}

	username, err := freeUsername(ctx, repo, profile.Email)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	displayName := profile.Name
	if displayName == "" {
		displayName = username
	}
	user = &entity.User{
		Id:           uuid.New(),
		Email:        strings.ToLower(profile.Email),
		Username:     username,
		DisplayName:  displayName,
		AuthProvider: entity.AuthProviderGoogle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := repo.CreateUsername(ctx, &entity.Username{Lower: username, UserId: user.Id, Email: user.Email, CreatedAt: now}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("OAUTH", "Created user from Google sign-in", map[string]interface{}{"user_id": user.Id.String()})
	publishEvent(ctx, s.publisher, s.logger, events.UserRegistered, map[string]interface{}{
		"user_id":  user.Id.String(),
		"provider": string(entity.AuthProviderGoogle),
	})
	return user, nil
}

// freeUsername derives a username from the email's local part, adding a
// numeric suffix until the index has no entry for it.
func freeUsername(ctx context.Context, repo contract.UserRepository, email string) (string, error) {
	base := usernameBase(email)
	candidate := base
	for i := 0; i < 5; i++ {
		taken, err := repo.FindUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if taken == nil {
			return candidate, nil
		}
		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s%04d", base, n.Int64())
	}
	return "", ErrUsernameInUse
}

func usernameBase(email string) string {
	local := strings.ToLower(email)
	if at := strings.IndexByte(local, '@'); at >= 0 {
		local = local[:at]
	}
	var b strings.Builder
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 24 {
		out = out[:24]
	}
	for len(out) < 3 {
		out += "_"
	}
	return out
}
