package controller

import (
	"councellorx-be/internal/dto"
	"councellorx-be/internal/pkg/serverutils"
	"councellorx-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
}

type userController struct {
	service   service.IUserService
	jwtSecret string
}

func NewUserController(service service.IUserService, jwtSecret string) IUserController {
	return &userController{service: service, jwtSecret: jwtSecret}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Get("/me", c.GetProfile)
	h.Put("/me", c.UpdateProfile)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetProfile(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User profile", res))
}

func (c *userController) UpdateProfile(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateProfile(ctx.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile updated", res))
}
