package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// JwtMiddleware stores the authenticated user id (as a string) under the
// "user_id" local.
func JwtMiddleware(secret string) fiber.Handler {
	return RequireUser(secret, "Missing token")
}

// RequireUser is JwtMiddleware with a custom message for anonymous callers.
func RequireUser(secret, missingMessage string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := BearerToken(ctx)
		if tokenStr == "" {
			res := ErrorResponse(fiber.StatusUnauthorized, missingMessage)
			res.ErrCode = ErrUnauthenticated.ErrCode
			return ctx.Status(fiber.StatusUnauthorized).JSON(res)
		}

		userID, err := ParseToken(secret, tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		ctx.Locals("user_id", userID.String())
		return ctx.Next()
	}
}

func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}
	return authHeader[7:]
}

// UserID reads the id stored by JwtMiddleware.
func UserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, ErrUnauthenticated
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}
