package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"talkbot-gateway/internal/controllers"
	"talkbot-gateway/internal/integrations"
	"talkbot-gateway/internal/services"
	"talkbot-gateway/pkg/config"
	"talkbot-gateway/pkg/metrics"
	"talkbot-gateway/pkg/middleware"
)

type Loggers struct {
	Main      *zap.Logger
	CRM       *zap.Logger
	Telephony *zap.Logger
}

func InitRouter(
	e *echo.Echo,
	crmClient integrations.CRMClient,
	telephony integrations.TelephonyProvider,
	validator services.StructValidator,
	loggers *Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("InitRouter: registering routes", zap.String("telephonyProvider", telephony.Name()))

	health := controllers.NewHealthController()
	e.GET("/health", health.Health)
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api")
	if cfg.Security.APIKey != "" {
		api.Use(middleware.APIKeyAuth(cfg.Security.APIKey, loggers.Main))
	} else {
		loggers.Main.Warn("API_KEY is not set, /api routes are open")
	}
	api.GET("", health.Welcome)
	api.GET("/", health.Welcome)

	crmService := services.NewCRMProxyService(crmClient, loggers.CRM)
	provisioningService := services.NewProvisioningService(crmService, telephony, validator, loggers.Telephony)

	runTelephonyRouter(api, provisioningService, loggers.Telephony)
	runCRMRouter(api, crmService, loggers.CRM)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "route not found"})
	})

	loggers.Main.Info("InitRouter: routes registered")
}
