package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"talkbot-gateway/internal/dto"
	"talkbot-gateway/internal/services"
	"talkbot-gateway/pkg/api"
	apperrors "talkbot-gateway/pkg/errors"
	"talkbot-gateway/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TelephonyController struct {
	provisioningService services.ProvisioningServiceInterface
	logger              *zap.Logger
}

func NewTelephonyController(provisioningService services.ProvisioningServiceInterface, logger *zap.Logger) *TelephonyController {
	return &TelephonyController{
		provisioningService: provisioningService,
		logger:              logger,
	}
}

func (c *TelephonyController) SearchNumbers(ctx echo.Context) error {
	var req dto.SearchNumbersDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "invalid query parameters", err, nil), c.logger)
	}

	res, err := c.provisioningService.SearchNumbers(ctx.Request().Context(), req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return api.SuccessOne(ctx, http.StatusOK, "", res)
}

func (c *TelephonyController) PurchaseNumber(ctx echo.Context) error {
	var req dto.PurchaseNumberDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil), c.logger)
	}

	res, err := c.provisioningService.PurchaseNumber(ctx.Request().Context(), req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return api.SuccessOne(ctx, http.StatusCreated, "Number purchased and configured successfully", res)
}

func (c *TelephonyController) UpdateWebhook(ctx echo.Context) error {
	var req dto.UpdateWebhookDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil), c.logger)
	}

	res, err := c.provisioningService.UpdateWebhook(ctx.Request().Context(), req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return api.SuccessOne(ctx, http.StatusOK, "Webhook updated successfully", res)
}

func (c *TelephonyController) ReleaseNumber(ctx echo.Context) error {
	req := dto.ReleaseNumberDTO{PhoneNumberID: ctx.Param("phoneNumberId")}

	if err := c.provisioningService.ReleaseNumber(ctx.Request().Context(), req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return api.SuccessMessage(ctx, http.StatusOK, "Number released successfully")
}

func (c *TelephonyController) ExportNumbers(ctx echo.Context) error {
	export, err := c.provisioningService.ExportPhoneNumbers(ctx.Request().Context(), ctx.QueryParam("accountId"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer export.File.Close()

	ctx.Response().Header().Set(echo.HeaderContentType, xlsxContentType)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+export.FileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return export.File.Write(ctx.Response().Writer)
}
