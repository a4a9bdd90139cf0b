package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	apperrors "talkbot-gateway/pkg/errors"
	"talkbot-gateway/pkg/utils"
)

const APIKeyHeader = "X-API-Key"

// APIKeyAuth accepts the static key in X-API-Key or as a Bearer token.
func APIKeyAuth(key string, logger *zap.Logger) echo.MiddlewareFunc {
	return echomw.KeyAuthWithConfig(echomw.KeyAuthConfig{
		KeyLookup: "header:" + APIKeyHeader + ",header:" + echo.HeaderAuthorization + ":Bearer ",
		Validator: func(candidate string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(candidate), []byte(key)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			logger.Warn("API key rejected", zap.String("path", c.Request().URL.Path), zap.String("ip", c.RealIP()))
			return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusUnauthorized, "invalid or missing API key", err, nil), nil)
		},
	})
}
