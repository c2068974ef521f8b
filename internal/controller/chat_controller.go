package controller

import (
	"councellorx-be/internal/dto"
	"councellorx-be/internal/pkg/serverutils"
	"councellorx-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	ListSessions(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	AppendMessage(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	service   service.IChatService
	jwtSecret string
}

func NewChatController(service service.IChatService, jwtSecret string) IChatController {
	return &chatController{service: service, jwtSecret: jwtSecret}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/sessions")
	h.Use(serverutils.RequireUser(c.jwtSecret, "Sign in required to start a chat"))
	h.Get("/", c.ListSessions)
	h.Post("/", c.CreateSession)
	h.Get("/:id/messages", c.GetMessages)
	h.Post("/:id/messages", c.AppendMessage)
	h.Delete("/:id", c.DeleteSession)
}

func sessionParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, errInvalidSessionID
	}
	return id, nil
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ListSessions(ctx.UserContext(), userID, ctx.QueryInt("limit", 0), ctx.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Sessions retrieved", res))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.NewSession(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	sessionID, err := sessionParam(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.LoadSession(ctx.UserContext(), userID, sessionID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Messages retrieved", res))
}

func (c *chatController) AppendMessage(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	sessionID, err := sessionParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.AppendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AppendMessage(ctx.UserContext(), userID, sessionID, req.Role, req.Content, nil)
	if err != nil {
		return mapServiceError(err)
	}

	status := fiber.StatusCreated
	if res.Status == dto.MessageStatusPending {
		status = fiber.StatusAccepted
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Message appended", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	sessionID, err := sessionParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.DeleteSession(ctx.UserContext(), userID, sessionID); err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session deleted", nil))
}
