package utils

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "talkbot-gateway/pkg/errors"
)

type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    *int   `json:"code,omitempty"`
}

type ProxyErrorBody struct {
	Error string `json:"error"`
}

// ErrorResponse writes err in the telephony envelope. The provider's error code is included when
// the error carries one.
func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	code := apperrors.StatusCode(err)
	logError(ctx, err, code, logger)

	body := ErrorBody{Success: false, Error: apperrors.Message(err)}
	if providerCode, ok := apperrors.ProviderCode(err); ok {
		body.Code = &providerCode
	}
	return ctx.JSON(code, body)
}

// ProxyErrorResponse writes err the way the CRM proxy routes report failures: {"error": message}.
func ProxyErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	code := apperrors.StatusCode(err)
	logError(ctx, err, code, logger)
	return ctx.JSON(code, ProxyErrorBody{Error: apperrors.Message(err)})
}

func logError(ctx echo.Context, err error, code int, logger *zap.Logger) {
	if logger == nil {
		return
	}
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", code),
		zap.String("method", ctx.Request().Method),
		zap.String("path", ctx.Path()),
	}
	if code >= 500 {
		logger.Error("request failed", fields...)
		return
	}
	logger.Warn("request rejected", fields...)
}
