package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

func (c *HealthController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok", "message": "Server is running"})
}

func (c *HealthController) Welcome(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"message": "Welcome to CRM APIs"})
}
