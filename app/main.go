package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"talkbot-gateway/internal/integrations"
	"talkbot-gateway/internal/integrations/espocrm"
	"talkbot-gateway/internal/integrations/mock"
	"talkbot-gateway/internal/integrations/twilio"
	"talkbot-gateway/internal/routes"
	"talkbot-gateway/pkg/config"
	apperrors "talkbot-gateway/pkg/errors"
	applogger "talkbot-gateway/pkg/logger"
	"talkbot-gateway/pkg/metrics"
	appmiddleware "talkbot-gateway/pkg/middleware"
	"talkbot-gateway/pkg/utils"
	"talkbot-gateway/pkg/validation"
)

func main() {
	cfg := config.New()

	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer func() { _ = logger.Sync() }()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "internal server error", err, nil)
				_ = utils.ErrorResponse(c, httpErr, nil)
			}
			return err
		},
	}))

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(appmiddleware.RequestLogger(logger.Named("http")))
	e.Use(metrics.Middleware())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			for _, o := range cfg.Server.AllowedOrigins {
				if o == "*" || origin == o {
					return true, nil
				}
			}
			return false, nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, appmiddleware.APIKeyHeader},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
	}))

	validator := validation.New()
	e.Validator = validator

	crmClient := espocrm.New(cfg.CRM.BaseURL, cfg.CRM.APIKey, cfg.CRM.Timeout, nil, logger)
	if cfg.CRM.BaseURL == "" {
		logger.Warn("ESPOCRM_URL is not set, CRM calls will fail")
	}

	registry := integrations.NewRegistry()
	for _, p := range []integrations.TelephonyProvider{
		twilio.New(cfg.Twilio, nil, logger),
		mock.NewTelephony(),
	} {
		if err := registry.Register(p); err != nil {
			logger.Fatal("failed to register telephony provider", zap.Error(err))
		}
	}
	if err := registry.SetActive(cfg.Telephony.Provider); err != nil {
		logger.Fatal("unknown TELEPHONY_PROVIDER", zap.String("provider", cfg.Telephony.Provider), zap.Error(err))
	}
	telephony, err := registry.GetActive()
	if err != nil {
		logger.Fatal("no telephony provider", zap.Error(err))
	}

	loggers := &routes.Loggers{
		Main:      logger,
		CRM:       logger.Named("crm"),
		Telephony: logger.Named("provisioning"),
	}
	routes.InitRouter(e, crmClient, telephony, validator, loggers, cfg)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("telephonyProvider", telephony.Name()))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
