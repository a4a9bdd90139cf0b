package twilio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"talkbot-gateway/internal/integrations"
	"talkbot-gateway/internal/integrations/dto"
	"talkbot-gateway/pkg/config"
	apperrors "talkbot-gateway/pkg/errors"
)

const (
	ProviderName   = "twilio"
	apiVersion     = "2010-04-01"
	callbackMethod = http.MethodPost

	DefaultCountryCode = "US"
	DefaultSearchLimit = 5
)

// Provider is the Twilio REST client. It is built once at startup and never mutated, so it is shared
// by all requests. Without credentials every call fails with ErrTelephonyNotConfigured.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	configured bool
	logger     *zap.Logger
}

// New builds the provider from cfg. A nil httpClient gets one with cfg.Timeout.
func New(cfg config.TwilioConfig, httpClient *http.Client, logger *zap.Logger) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	p := &Provider{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		configured: cfg.Configured(),
		logger:     logger.Named("twilio_provider"),
	}
	if !p.configured {
		p.logger.Warn("Twilio credentials are not configured, telephony operations will fail")
	}
	return p
}

var _ integrations.TelephonyProvider = (*Provider)(nil)

func (p *Provider) Name() string {
	return ProviderName
}

// SearchAvailableNumbers lists local numbers in areaCode that support voice and SMS, in provider order.
func (p *Provider) SearchAvailableNumbers(ctx context.Context, areaCode, countryCode string, limit int) ([]dto.AvailableNumber, error) {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query := url.Values{}
	query.Set("AreaCode", areaCode)
	query.Set("VoiceEnabled", "true")
	query.Set("SmsEnabled", "true")
	query.Set("PageSize", strconv.Itoa(limit))

	var page availableNumberPage
	path := fmt.Sprintf("/AvailablePhoneNumbers/%s/Local.json", url.PathEscape(countryCode))
	if err := p.call(ctx, "search", http.MethodGet, path, query, nil, &page); err != nil {
		return nil, p.wrap("error searching numbers", err)
	}

	numbers := page.AvailablePhoneNumbers
	if len(numbers) > limit {
		numbers = numbers[:limit]
	}
	return mapAvailableNumbers(numbers), nil
}

// PurchaseAndConfigureNumber buys phoneNumber and, in the same request, points voice and SMS at
// webhookURL and the status callback at webhookURL + "/status".
func (p *Provider) PurchaseAndConfigureNumber(ctx context.Context, phoneNumber, webhookURL, friendlyName string) (*dto.PurchasedNumber, error) {
	form := url.Values{}
	form.Set("PhoneNumber", phoneNumber)
	form.Set("FriendlyName", friendlyName)
	form.Set("VoiceUrl", webhookURL)
	form.Set("VoiceMethod", callbackMethod)
	form.Set("SmsUrl", webhookURL)
	form.Set("SmsMethod", callbackMethod)
	form.Set("StatusCallback", StatusCallbackURL(webhookURL))
	form.Set("StatusCallbackMethod", callbackMethod)

	var number incomingPhoneNumber
	if err := p.call(ctx, "purchase", http.MethodPost, "/IncomingPhoneNumbers.json", nil, form, &number); err != nil {
		return nil, p.wrap("error purchasing number", err)
	}

	purchased, err := mapPurchasedNumber(number)
	if err != nil {
		p.logger.Warn("unexpected date_created in purchase response", zap.String("sid", number.SID), zap.Error(err))
	}
	return purchased, nil
}

// UpdateNumberConfiguration repoints an owned number's voice and SMS URLs.
func (p *Provider) UpdateNumberConfiguration(ctx context.Context, sid, webhookURL string) (*dto.UpdatedNumber, error) {
	if err := requireSID(sid); err != nil {
		return nil, p.wrap("error updating number", err)
	}

	form := url.Values{}
	form.Set("VoiceUrl", webhookURL)
	form.Set("VoiceMethod", callbackMethod)
	form.Set("SmsUrl", webhookURL)
	form.Set("SmsMethod", callbackMethod)

	var number incomingPhoneNumber
	path := fmt.Sprintf("/IncomingPhoneNumbers/%s.json", url.PathEscape(sid))
	if err := p.call(ctx, "update", http.MethodPost, path, nil, form, &number); err != nil {
		return nil, p.wrap("error updating number", err)
	}

	return &dto.UpdatedNumber{
		SID:         number.SID,
		PhoneNumber: number.PhoneNumber,
		VoiceURL:    number.VoiceURL,
	}, nil
}

// ReleaseNumber gives the number back to Twilio. Releasing twice fails with the provider's 404.
func (p *Provider) ReleaseNumber(ctx context.Context, sid string) error {
	if err := requireSID(sid); err != nil {
		return p.wrap("error releasing number", err)
	}

	path := fmt.Sprintf("/IncomingPhoneNumbers/%s.json", url.PathEscape(sid))
	if err := p.call(ctx, "release", http.MethodDelete, path, nil, nil, nil); err != nil {
		return p.wrap("error releasing number", err)
	}
	return nil
}

// StatusCallbackURL is where Twilio posts call status events for a number configured with webhookURL.
func StatusCallbackURL(webhookURL string) string {
	return webhookURL + "/status"
}

func requireSID(sid string) error {
	if strings.TrimSpace(sid) == "" {
		return &apperrors.ProvisioningError{Status: http.StatusBadRequest, Message: "phone number has no provider sid"}
	}
	return nil
}
