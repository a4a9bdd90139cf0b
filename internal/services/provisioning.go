package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"talkbot-gateway/internal/dto"
	"talkbot-gateway/internal/entities"
	"talkbot-gateway/internal/integrations"
	telephonydto "talkbot-gateway/internal/integrations/dto"
	apperrors "talkbot-gateway/pkg/errors"
	"talkbot-gateway/pkg/types"
)

const (
	defaultCountryCode  = "US"
	defaultSearchLimit  = 5
	friendlyNameSuffix  = " - Talkbot"
	accountNotFoundMsg  = "account not found in CRM"
	phoneNotFoundMsg    = "phone number not found"
	invalidCRMRecordMsg = "CRM returned an unreadable %s record: %v"
)

// StructValidator is satisfied by validation.CustomValidator.
type StructValidator interface {
	ValidateStruct(i interface{}) error
}

type ProvisioningServiceInterface interface {
	SearchNumbers(ctx context.Context, req dto.SearchNumbersDTO) (*dto.SearchResultDTO, error)
	PurchaseNumber(ctx context.Context, req dto.PurchaseNumberDTO) (*dto.PurchaseResultDTO, error)
	UpdateWebhook(ctx context.Context, req dto.UpdateWebhookDTO) (*telephonydto.UpdatedNumber, error)
	ReleaseNumber(ctx context.Context, req dto.ReleaseNumberDTO) error
	ExportPhoneNumbers(ctx context.Context, accountID string) (*PhoneNumberExport, error)
}

// ProvisioningService sequences the CRM and the telephony provider. Nothing is rolled back: a
// failure after the provider call leaves the provider side as it is.
type ProvisioningService struct {
	crm       CRMProxyServiceInterface
	telephony integrations.TelephonyProvider
	validator StructValidator
	logger    *zap.Logger
	now       func() time.Time
}

func NewProvisioningService(
	crm CRMProxyServiceInterface,
	telephony integrations.TelephonyProvider,
	validator StructValidator,
	logger *zap.Logger,
) *ProvisioningService {
	return &ProvisioningService{
		crm:       crm,
		telephony: telephony,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ProvisioningService) SearchNumbers(ctx context.Context, req dto.SearchNumbersDTO) (*dto.SearchResultDTO, error) {
	req.CountryCode = strings.ToUpper(strings.TrimSpace(req.CountryCode))
	if err := s.validator.ValidateStruct(&req); err != nil {
		return nil, err
	}

	countryCode := req.CountryCode
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	areaCode := strings.TrimSpace(req.AreaCode)

	numbers, err := s.telephony.SearchAvailableNumbers(context.WithoutCancel(ctx), areaCode, countryCode, limit)
	if err != nil {
		return nil, err
	}
	if numbers == nil {
		numbers = make([]telephonydto.AvailableNumber, 0)
	}

	return &dto.SearchResultDTO{
		AreaCode:    areaCode,
		CountryCode: countryCode,
		Total:       len(numbers),
		Numbers:     numbers,
	}, nil
}

// PurchaseNumber checks the account, buys and configures the number, then records it in the CRM.
func (s *ProvisioningService) PurchaseNumber(ctx context.Context, req dto.PurchaseNumberDTO) (*dto.PurchaseResultDTO, error) {
	ctx = context.WithoutCancel(ctx)
	run := newWorkflowRun(WorkflowPurchase)

	if err := run.step(StepValidate, func() error { return s.validator.ValidateStruct(&req) }); err != nil {
		return nil, err
	}

	var account entities.Account
	err := run.step(StepAccountLookup, func() error {
		return s.fetch(ctx, entities.AccountEntityType, req.AccountID, accountNotFoundMsg, &account)
	})
	if err != nil {
		return nil, err
	}

	friendlyName := strings.TrimSpace(req.FriendlyName.String)
	if !req.FriendlyName.Valid || friendlyName == "" {
		friendlyName = account.Name + friendlyNameSuffix
	}

	var purchased *telephonydto.PurchasedNumber
	err = run.step(StepProviderPurchase, func() (err error) {
		purchased, err = s.telephony.PurchaseAndConfigureNumber(ctx, req.PhoneNumber, req.WebhookURL, friendlyName)
		return err
	})
	if err != nil {
		return nil, err
	}

	record := entities.PhoneNumberRecord{
		PhoneNumber:  purchased.PhoneNumber,
		TwilioSID:    purchased.SID,
		AccountID:    req.AccountID,
		MonthlyCost:  entities.DefaultMonthlyCost,
		Status:       entities.PhoneNumberStatusActive,
		WebhookURL:   req.WebhookURL,
		PurchaseDate: types.NewDate(s.now()),
	}

	var saved json.RawMessage
	err = run.step(StepCRMCreate, func() (err error) {
		saved, err = s.crm.Create(ctx, entities.PhoneNumberEntityType, record)
		return err
	})
	if err != nil {
		s.logger.Warn("number purchased at provider but not recorded in CRM",
			zap.String("sid", purchased.SID),
			zap.String("phoneNumber", purchased.PhoneNumber),
			zap.String("accountId", req.AccountID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("number purchased",
		zap.String("sid", purchased.SID),
		zap.String("phoneNumber", purchased.PhoneNumber),
		zap.String("accountId", req.AccountID),
		zap.String("provider", s.telephony.Name()),
	)

	if len(bytes.TrimSpace(saved)) == 0 {
		saved = json.RawMessage("null")
	}
	return &dto.PurchaseResultDTO{Twilio: purchased, CRM: saved}, nil
}

// UpdateWebhook repoints the number at the provider first. The CRM keeps the old URL if that fails.
func (s *ProvisioningService) UpdateWebhook(ctx context.Context, req dto.UpdateWebhookDTO) (*telephonydto.UpdatedNumber, error) {
	ctx = context.WithoutCancel(ctx)
	run := newWorkflowRun(WorkflowUpdateWebhook)

	if err := run.step(StepValidate, func() error { return s.validator.ValidateStruct(&req) }); err != nil {
		return nil, err
	}

	var record entities.PhoneNumberRef
	err := run.step(StepRecordLookup, func() error {
		return s.fetch(ctx, entities.PhoneNumberEntityType, req.PhoneNumberID, phoneNotFoundMsg, &record)
	})
	if err != nil {
		return nil, err
	}

	var updated *telephonydto.UpdatedNumber
	err = run.step(StepProviderUpdate, func() (err error) {
		updated, err = s.telephony.UpdateNumberConfiguration(ctx, record.TwilioSID, req.WebhookURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = run.step(StepCRMUpdate, func() error {
		_, err := s.crm.Update(ctx, entities.PhoneNumberEntityType, req.PhoneNumberID, entities.PhoneNumberPatch{
			WebhookURL: null.StringFrom(req.WebhookURL),
		})
		return err
	})
	if err != nil {
		s.logger.Warn("webhook changed at provider but not in CRM",
			zap.String("sid", record.TwilioSID),
			zap.String("phoneNumberId", req.PhoneNumberID),
			zap.Error(err),
		)
		return nil, err
	}

	return updated, nil
}

// ReleaseNumber gives the number back to the provider and marks the record Released. The record
// and its SID are kept.
func (s *ProvisioningService) ReleaseNumber(ctx context.Context, req dto.ReleaseNumberDTO) error {
	ctx = context.WithoutCancel(ctx)
	run := newWorkflowRun(WorkflowRelease)

	if err := run.step(StepValidate, func() error { return s.validator.ValidateStruct(&req) }); err != nil {
		return err
	}

	var record entities.PhoneNumberRef
	err := run.step(StepRecordLookup, func() error {
		return s.fetch(ctx, entities.PhoneNumberEntityType, req.PhoneNumberID, phoneNotFoundMsg, &record)
	})
	if err != nil {
		return err
	}

	err = run.step(StepProviderRelease, func() error {
		return s.telephony.ReleaseNumber(ctx, record.TwilioSID)
	})
	if err != nil {
		return err
	}

	err = run.step(StepCRMUpdate, func() error {
		_, err := s.crm.Update(ctx, entities.PhoneNumberEntityType, req.PhoneNumberID, entities.PhoneNumberPatch{
			Status: null.StringFrom(string(entities.PhoneNumberStatusReleased)),
		})
		return err
	})
	if err != nil {
		s.logger.Warn("number released at provider but still Active in CRM",
			zap.String("sid", record.TwilioSID),
			zap.String("phoneNumberId", req.PhoneNumberID),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("number released", zap.String("sid", record.TwilioSID), zap.String("phoneNumberId", req.PhoneNumberID))
	return nil
}

// fetch loads one CRM entity into out. An empty or null body means the entity does not exist.
func (s *ProvisioningService) fetch(ctx context.Context, entityType, id, notFoundMsg string, out interface{}) error {
	raw, err := s.crm.Get(ctx, entityType, id)
	if err != nil {
		return err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return apperrors.NewNotFoundError(entityType, id, notFoundMsg)
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return &apperrors.UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: fmt.Sprintf(invalidCRMRecordMsg, entityType, err),
			Err:     err,
		}
	}
	return nil
}
