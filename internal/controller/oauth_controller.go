package controller

import (
	"fmt"
	"net/url"

	"councellorx-be/internal/pkg/logger"
	"councellorx-be/internal/pkg/serverutils"
	"councellorx-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service     service.IOAuthService
	frontendURL string
	logger      logger.ILogger
}

func NewOAuthController(service service.IOAuthService, frontendURL string, logger logger.ILogger) IOAuthController {
	return &oauthController{service: service, frontendURL: frontendURL, logger: logger}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	// e.g. /auth/oauth/google
	h := r.Group("/auth/oauth")
	h.Get("/:provider", c.Login)
	h.Get("/:provider/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	loginURL, err := c.service.GetLoginURL(ctx.Params("provider"))
	if err != nil {
		return err
	}
	return ctx.Redirect(loginURL)
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	code := ctx.Query("code")
	if code == "" {
		return serverutils.BadRequest("Missing code")
	}

	res, err := c.service.HandleCallback(ctx.UserContext(), provider, code, ctx.Query("state"))
	if err != nil {
		c.logger.Warn("OAUTH", "Callback failed", map[string]interface{}{
			"provider": provider,
			"error":    err.Error(),
		})
		if _, ok := err.(*serverutils.AppError); ok {
			return err
		}
		return serverutils.NewAppError(fiber.StatusUnauthorized, "auth/invalid-credential", "Sign-in with "+provider+" failed").Wrap(err)
	}

	c.logger.Info("OAUTH", "User authenticated", map[string]interface{}{"user_id": res.User.Id.String()})

	redirectURL := fmt.Sprintf("%s/app?token=%s", c.frontendURL, url.QueryEscape(res.AccessToken))
	return ctx.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}
