package integrations

import (
	"context"
	"encoding/json"
	"net/url"

	"talkbot-gateway/internal/integrations/dto"
)

// CRMClient is the generic entity API of the CRM. Bodies are passed through untouched.
type CRMClient interface {
	List(ctx context.Context, entityType string, params url.Values) (json.RawMessage, error)
	GetByID(ctx context.Context, entityType, id string) (json.RawMessage, error)
	Create(ctx context.Context, entityType string, data interface{}) (json.RawMessage, error)
	Update(ctx context.Context, entityType, id string, data interface{}) (json.RawMessage, error)
	Delete(ctx context.Context, entityType, id string) error
}

// TelephonyProvider provisions phone numbers and points their voice/SMS traffic at a webhook.
type TelephonyProvider interface {
	Name() string
	SearchAvailableNumbers(ctx context.Context, areaCode, countryCode string, limit int) ([]dto.AvailableNumber, error)
	PurchaseAndConfigureNumber(ctx context.Context, phoneNumber, webhookURL, friendlyName string) (*dto.PurchasedNumber, error)
	UpdateNumberConfiguration(ctx context.Context, sid, webhookURL string) (*dto.UpdatedNumber, error)
	ReleaseNumber(ctx context.Context, sid string) error
}
