package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"talkbot-gateway/internal/services"
	apperrors "talkbot-gateway/pkg/errors"
	"talkbot-gateway/pkg/utils"
)

// CRMController mirrors the CRM: bodies go through untouched and responses come back as the CRM sent them.
type CRMController struct {
	crmService services.CRMProxyServiceInterface
	logger     *zap.Logger
}

func NewCRMController(crmService services.CRMProxyServiceInterface, logger *zap.Logger) *CRMController {
	return &CRMController{
		crmService: crmService,
		logger:     logger,
	}
}

func (c *CRMController) GetEntities(ctx echo.Context) error {
	data, err := c.crmService.List(ctx.Request().Context(), ctx.Param("entityType"), ctx.QueryParams())
	if err != nil {
		return utils.ProxyErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSONBlob(http.StatusOK, data)
}

func (c *CRMController) GetEntity(ctx echo.Context) error {
	data, err := c.crmService.Get(ctx.Request().Context(), ctx.Param("entityType"), ctx.Param("id"))
	if err != nil {
		return utils.ProxyErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSONBlob(http.StatusOK, data)
}

func (c *CRMController) CreateEntity(ctx echo.Context) error {
	body, err := readJSONBody(ctx)
	if err != nil {
		return utils.ProxyErrorResponse(ctx, err, c.logger)
	}

	data, err := c.crmService.Create(ctx.Request().Context(), ctx.Param("entityType"), body)
	if err != nil {
		return utils.ProxyErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSONBlob(http.StatusCreated, data)
}

func (c *CRMController) UpdateEntity(ctx echo.Context) error {
	body, err := readJSONBody(ctx)
	if err != nil {
		return utils.ProxyErrorResponse(ctx, err, c.logger)
	}

	data, err := c.crmService.Update(ctx.Request().Context(), ctx.Param("entityType"), ctx.Param("id"), body)
	if err != nil {
		return utils.ProxyErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSONBlob(http.StatusOK, data)
}

func (c *CRMController) DeleteEntity(ctx echo.Context) error {
	if err := c.crmService.Delete(ctx.Request().Context(), ctx.Param("entityType"), ctx.Param("id")); err != nil {
		return utils.ProxyErrorResponse(ctx, err, c.logger)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// readJSONBody returns the raw request body. An empty body is sent as {}.
func readJSONBody(ctx echo.Context) (json.RawMessage, error) {
	raw, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "failed to read request body", err, nil)
	}
	if len(raw) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(raw) {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "request body must be valid JSON", nil, nil)
	}
	return json.RawMessage(raw), nil
}
