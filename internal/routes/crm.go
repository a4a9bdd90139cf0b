package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"talkbot-gateway/internal/controllers"
	"talkbot-gateway/internal/services"
)

func runCRMRouter(api *echo.Group, crmService services.CRMProxyServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewCRMController(crmService, logger)

	crm := api.Group("/crm")
	crm.GET("/:entityType", ctrl.GetEntities)
	crm.GET("/:entityType/:id", ctrl.GetEntity)
	crm.POST("/:entityType", ctrl.CreateEntity)
	crm.PUT("/:entityType/:id", ctrl.UpdateEntity)
	crm.DELETE("/:entityType/:id", ctrl.DeleteEntity)
}
