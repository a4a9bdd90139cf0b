package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"talkbot-gateway/internal/controllers"
	"talkbot-gateway/internal/services"
)

func runTelephonyRouter(api *echo.Group, provisioningService services.ProvisioningServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewTelephonyController(provisioningService, logger)

	twilio := api.Group("/twilio")
	twilio.GET("/search-numbers", ctrl.SearchNumbers)
	twilio.POST("/purchase-number", ctrl.PurchaseNumber)
	twilio.PUT("/update-webhook/:phoneNumberId", ctrl.UpdateWebhook)
	twilio.DELETE("/release-number/:phoneNumberId", ctrl.ReleaseNumber)
	twilio.GET("/numbers/export", ctrl.ExportNumbers)
}
