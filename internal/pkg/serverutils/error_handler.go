package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders errors returned by handlers into the
// BaseResponse envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return RenderError(ctx, err)
	}
}

func RenderError(ctx *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		res := ErrorResponse(appErr.Code, appErr.Message)
		res.ErrCode = appErr.ErrCode
		if len(appErr.Details) > 0 {
			res.Data = appErr.Details
		}
		return ctx.Status(appErr.Code).JSON(res)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
}
