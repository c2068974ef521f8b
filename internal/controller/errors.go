package controller

import (
	"errors"
	"net/http"

	"councellorx-be/internal/pkg/serverutils"
	"councellorx-be/internal/service"
	"councellorx-be/pkg/intake"
)

var (
	errSessionNotFound  = serverutils.NewAppError(http.StatusNotFound, "chat/session-not-found", "Chat session not found")
	errInvalidMessage   = serverutils.NewAppError(http.StatusBadRequest, "chat/invalid-message", "Message role or content is invalid")
	errInvalidBody      = serverutils.BadRequest("Invalid request body")
	errInvalidSessionID = serverutils.BadRequest("Invalid session id")
	errIntakeTransition = serverutils.NewAppError(http.StatusConflict, "intake/invalid-transition", "That action is not available at this step")
	errIntakeChoice     = serverutils.NewAppError(http.StatusBadRequest, "intake/invalid-choice", "Unknown option")
	errIntakeStatement  = serverutils.NewAppError(http.StatusBadRequest, "intake/empty-statement", "Please describe what happened before continuing")
	errIntakeDocuments  = serverutils.NewAppError(http.StatusBadRequest, "intake/invalid-documents", "Invalid request")
)

// mapServiceError turns known service sentinels into renderable AppErrors.
// Anything else passes through and renders as a 500.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return errSessionNotFound.Wrap(err)
	case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrEmptyMessage):
		return errInvalidMessage.Wrap(err)
	case errors.Is(err, intake.ErrInvalidTransition):
		return errIntakeTransition.Wrap(err)
	case errors.Is(err, intake.ErrInvalidChoice):
		return errIntakeChoice.Wrap(err)
	case errors.Is(err, intake.ErrEmptyStatement):
		return errIntakeStatement.Wrap(err)
	case errors.Is(err, service.ErrInvalidRequest):
		return errIntakeDocuments.Wrap(err)
	}
	return err
}
