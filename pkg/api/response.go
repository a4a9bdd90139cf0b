package api

import (
	"github.com/labstack/echo/v4"
)

// Response is the envelope of the telephony routes.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// SuccessOne returns one object under "data".
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SuccessMessage returns the envelope without data.
func SuccessMessage(c echo.Context, code int, message string) error {
	return c.JSON(code, Response[any]{
		Success: true,
		Message: message,
	})
}
