package dto

import (
	"encoding/json"

	"github.com/aarondl/null/v8"

	telephonydto "talkbot-gateway/internal/integrations/dto"
)

type SearchNumbersDTO struct {
	AreaCode    string `query:"areaCode" validate:"required,notblank"`
	CountryCode string `query:"countryCode" validate:"omitempty,iso3166_1_alpha2"`
	Limit       int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

type SearchResultDTO struct {
	AreaCode    string                         `json:"areaCode"`
	CountryCode string                         `json:"countryCode"`
	Total       int                            `json:"total"`
	Numbers     []telephonydto.AvailableNumber `json:"numbers"`
}

// PurchaseNumberDTO fields are validated in declaration order; the first failure is reported.
type PurchaseNumberDTO struct {
	PhoneNumber  string      `json:"phoneNumber" validate:"required,notblank"`
	AccountID    string      `json:"accountId" validate:"required,notblank"`
	WebhookURL   string      `json:"webhookUrl" validate:"required,notblank,webhook_url"`
	FriendlyName null.String `json:"friendlyName" validate:"omitempty,max=64"`
}

type PurchaseResultDTO struct {
	Twilio *telephonydto.PurchasedNumber `json:"twilio"`
	CRM    json.RawMessage               `json:"crm"`
}

type UpdateWebhookDTO struct {
	WebhookURL    string `json:"webhookUrl" validate:"required,notblank,webhook_url"`
	PhoneNumberID string `json:"-" param:"phoneNumberId" validate:"required,notblank"`
}

type ReleaseNumberDTO struct {
	PhoneNumberID string `param:"phoneNumberId" validate:"required,notblank"`
}
