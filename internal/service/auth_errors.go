package service

import (
	"net/http"

	"councellorx-be/internal/pkg/serverutils"
)

// Auth failures map to a fixed set of messages the client can show as-is.
var (
	ErrEmailInUse        = serverutils.NewAppError(http.StatusConflict, "auth/email-already-in-use", "This email is already registered.")
	ErrUsernameInUse     = serverutils.NewAppError(http.StatusConflict, "auth/username-already-in-use", "This username is already taken.")
	ErrWeakPassword      = serverutils.NewAppError(http.StatusBadRequest, "auth/weak-password", "Please choose a stronger password.")
	ErrInvalidUsername   = serverutils.NewAppError(http.StatusBadRequest, "auth/invalid-username", "Usernames may only contain letters, numbers, dots and underscores.")
	ErrInvalidCredential = serverutils.NewAppError(http.StatusUnauthorized, "auth/invalid-credential", "Invalid email, username or password.")
	ErrUserNotFound      = serverutils.NewAppError(http.StatusNotFound, "auth/user-not-found", "No account found for this username.")
	ErrInvalidResetToken = serverutils.NewAppError(http.StatusBadRequest, "auth/invalid-reset-token", "This reset link is invalid or has expired.")
	ErrUnsupportedOAuth  = serverutils.NewAppError(http.StatusBadRequest, "auth/operation-not-allowed", "This sign-in provider is not supported.")
)
