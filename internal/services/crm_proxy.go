package services

import (
	"context"
	"encoding/json"
	"net/url"

	"go.uber.org/zap"

	"talkbot-gateway/internal/integrations"
)

// CRMProxyServiceInterface forwards entity CRUD to the CRM. Any entity type is accepted; the CRM
// decides what exists.
type CRMProxyServiceInterface interface {
	List(ctx context.Context, entityType string, params url.Values) (json.RawMessage, error)
	Get(ctx context.Context, entityType, id string) (json.RawMessage, error)
	Create(ctx context.Context, entityType string, data interface{}) (json.RawMessage, error)
	Update(ctx context.Context, entityType, id string, data interface{}) (json.RawMessage, error)
	Delete(ctx context.Context, entityType, id string) error
}

type crmProxyService struct {
	crm    integrations.CRMClient
	logger *zap.Logger
}

func NewCRMProxyService(crm integrations.CRMClient, logger *zap.Logger) CRMProxyServiceInterface {
	return &crmProxyService{crm: crm, logger: logger}
}

func (s *crmProxyService) List(ctx context.Context, entityType string, params url.Values) (json.RawMessage, error) {
	s.logger.Debug("proxy list", zap.String("entityType", entityType), zap.Int("params", len(params)))
	return s.crm.List(ctx, entityType, params)
}

func (s *crmProxyService) Get(ctx context.Context, entityType, id string) (json.RawMessage, error) {
	s.logger.Debug("proxy get", zap.String("entityType", entityType), zap.String("id", id))
	return s.crm.GetByID(ctx, entityType, id)
}

func (s *crmProxyService) Create(ctx context.Context, entityType string, data interface{}) (json.RawMessage, error) {
	s.logger.Debug("proxy create", zap.String("entityType", entityType))
	return s.crm.Create(ctx, entityType, data)
}

func (s *crmProxyService) Update(ctx context.Context, entityType, id string, data interface{}) (json.RawMessage, error) {
	s.logger.Debug("proxy update", zap.String("entityType", entityType), zap.String("id", id))
	return s.crm.Update(ctx, entityType, id, data)
}

func (s *crmProxyService) Delete(ctx context.Context, entityType, id string) error {
	s.logger.Debug("proxy delete", zap.String("entityType", entityType), zap.String("id", id))
	return s.crm.Delete(ctx, entityType, id)
}
