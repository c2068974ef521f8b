package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	id := uuid.New()
	token, err := IssueToken("secret", id, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseToken("other", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := IssueToken("secret", id, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/me", JwtMiddleware("secret"), func(ctx *fiber.Ctx) error {
		id, err := UserID(ctx)
		if err != nil {
			return err
		}
		return ctx.SendString(id.String())
	})

	id := uuid.New()
	token, _ := IssueToken("secret", id, time.Hour)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Token " + token, http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	conflict := NewAppError(409, "auth/email-already-in-use", "This email is already registered.")

	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/app", func(ctx *fiber.Ctx) error { return fmt.Errorf("register: %w", conflict.Wrap(errors.New("dup key"))) })
	app.Get("/fiber", func(ctx *fiber.Ctx) error { return fiber.ErrUnprocessableEntity })
	app.Get("/boom", func(ctx *fiber.Ctx) error { return errors.New("db down") })

	tests := []struct {
		path     string
		status   int
		errCode  string
		hasPlain bool
	}{
		{"/app", 409, "auth/email-already-in-use", false},
		{"/fiber", 422, "", false},
		{"/boom", 500, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body BaseResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.errCode, body.ErrCode)
			if tt.hasPlain {
				assert.Equal(t, "Internal server error", body.Message)
			}
		})
	}
}

func TestAppErrorIs(t *testing.T) {
	sentinel := NewAppError(401, "auth/invalid-credential", "Invalid credentials")
	wrapped := fmt.Errorf("login: %w", sentinel.Wrap(errors.New("bcrypt mismatch")))
	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, ErrUnauthenticated)
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Email    string `validate:"required,email"`
		Username string `validate:"required,min=3"`
	}

	err := ValidateRequest(&req{Email: "nope", Username: "ab"})
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, "must be a valid email address", appErr.Details["email"])
	assert.Equal(t, "must be at least 3 characters", appErr.Details["username"])

	assert.NoError(t, ValidateRequest(&req{Email: "a@b.co", Username: "abc"}))
}
