package controller

import (
	"councellorx-be/internal/dto"
	"councellorx-be/internal/pkg/serverutils"
	"councellorx-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IIntakeController interface {
	RegisterRoutes(r fiber.Router)
	GetIntake(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	SelectCaseType(ctx *fiber.Ctx) error
	SelectNature(ctx *fiber.Ctx) error
	ChooseUpload(ctx *fiber.Ctx) error
	SkipDocuments(ctx *fiber.Ctx) error
	DescribeDocuments(ctx *fiber.Ctx) error
}

type intakeController struct {
	service   service.IIntakeService
	jwtSecret string
}

func NewIntakeController(service service.IIntakeService, jwtSecret string) IIntakeController {
	return &intakeController{service: service, jwtSecret: jwtSecret}
}

func (c *intakeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/intake")
	h.Use(serverutils.RequireUser(c.jwtSecret, "Sign in required to start a chat"))
	h.Get("/:sessionId", c.GetIntake)
	h.Post("/:sessionId/messages", c.SendMessage)
	h.Post("/:sessionId/case-type", c.SelectCaseType)
	h.Post("/:sessionId/nature", c.SelectNature)
	h.Post("/:sessionId/documents/upload", c.ChooseUpload)
	h.Post("/:sessionId/documents/skip", c.SkipDocuments)
	h.Post("/:sessionId/documents", c.DescribeDocuments)
}

func intakeIDs(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	sessionID, err := sessionParam(ctx, "sessionId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, sessionID, nil
}

func stepResponse(ctx *fiber.Ctx, res *dto.IntakeStepResponse, err error) error {
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", res))
}

func (c *intakeController) GetIntake(ctx *fiber.Ctx) error {
	userID, sessionID, err := intakeIDs(ctx)
	if err != nil {
		return err
	}
	view, err := c.service.View(ctx.UserContext(), userID, sessionID)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", view))
}

func (c *intakeController) SendMessage(ctx *fiber.Ctx) error {
	userID, sessionID, err := intakeIDs(ctx)
	if err != nil {
		return err
	}
	var req dto.IntakeMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	res, err := c.service.SendMessage(ctx.UserContext(), userID, sessionID, &req)
	return stepResponse(ctx, res, err)
}

func (c *intakeController) SelectCaseType(ctx *fiber.Ctx) error {
	userID, sessionID, err := intakeIDs(ctx)
	if err != nil {
		return err
	}
	var req dto.SelectCaseTypeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.service.SelectCaseType(ctx.UserContext(), userID, sessionID, req.CaseType)
	return stepResponse(ctx, res, err)
}

func (c *intakeController) SelectNature(ctx *fiber.Ctx) error {
	userID, sessionID, err := intakeIDs(ctx)
	if err != nil {
		return err
	}
	var req dto.SelectNatureRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.service.SelectNature(ctx.UserContext(), userID, sessionID, req.Nature)
	return stepResponse(ctx, res, err)
}

func (c *intakeController) ChooseUpload(ctx *fiber.Ctx) error {
	userID, sessionID, err := intakeIDs(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ChooseUpload(ctx.UserContext(), userID, sessionID)
	return stepResponse(ctx, res, err)
}

func (c *intakeController) SkipDocuments(ctx *fiber.Ctx) error {
	userID, sessionID, err := intakeIDs(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.SkipDocuments(ctx.UserContext(), userID, sessionID)
	return stepResponse(ctx, res, err)
}

func (c *intakeController) DescribeDocuments(ctx *fiber.Ctx) error {
	userID, sessionID, err := intakeIDs(ctx)
	if err != nil {
		return err
	}
	var req dto.DescribeDocumentsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errIntakeDocuments
	}
	res, err := c.service.DescribeDocuments(ctx.UserContext(), userID, sessionID, req.Files)
	return stepResponse(ctx, res, err)
}
