package serverutils

import (
	"errors"
	"fmt"
)

// AppError is an error that already knows how it should be rendered.
type AppError struct {
	Code    int
	ErrCode string
	Message string
	Details map[string]string
	Err     error
}

func NewAppError(code int, errCode, message string) *AppError {
	return &AppError{Code: code, ErrCode: errCode, Message: message}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on the string code so sentinel AppErrors work with errors.Is
// even after Wrap.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.ErrCode != "" && e.ErrCode == t.ErrCode
}

// Wrap returns a copy of e carrying err as its cause.
func (e *AppError) Wrap(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

func BadRequest(message string) *AppError {
	return NewAppError(400, "request/invalid", message)
}

func NotFound(message string) *AppError {
	return NewAppError(404, "request/not-found", message)
}

var ErrUnauthenticated = NewAppError(401, "auth/unauthenticated", "Sign in required")
