package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "talkbot-gateway/pkg/errors"
	"talkbot-gateway/pkg/metrics"
)

// call performs one request against the account's API root and decodes a 2xx body into out.
func (p *Provider) call(ctx context.Context, operation, method, path string, query, form url.Values, out interface{}) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(ProviderName, operation, start, err) }()

	if !p.configured {
		return &apperrors.ProvisioningError{
			Status:  http.StatusInternalServerError,
			Message: apperrors.ErrTelephonyNotConfigured.Error(),
			Err:     apperrors.ErrTelephonyNotConfigured,
		}
	}

	endpoint := fmt.Sprintf("%s/%s/Accounts/%s%s", p.baseURL, apiVersion, url.PathEscape(p.accountSID), path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &apperrors.ProvisioningError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &apperrors.ProvisioningError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperrors.ProvisioningError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("failed to read response: %v", err),
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &apperrors.ProvisioningError{
			Status:  http.StatusBadGateway,
			Message: fmt.Sprintf("failed to decode response: %v", err),
			Err:     err,
		}
	}
	return nil
}

func decodeAPIError(status int, raw []byte) *apperrors.ProvisioningError {
	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Message == "" {
		return &apperrors.ProvisioningError{
			Status:  status,
			Message: fmt.Sprintf("request failed with status code %d", status),
		}
	}
	if apiErr.Status == 0 {
		apiErr.Status = status
	}
	return &apperrors.ProvisioningError{
		Status:  apiErr.Status,
		Message: apiErr.Message,
		Code:    apiErr.Code,
	}
}

// wrap prefixes the failure with what was being attempted and logs it. Status and provider code are kept.
func (p *Provider) wrap(action string, err error) error {
	var provErr *apperrors.ProvisioningError
	if !errors.As(err, &provErr) {
		provErr = &apperrors.ProvisioningError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
	}

	p.logger.Error(action,
		zap.Int("status", provErr.Status),
		zap.Int("code", provErr.Code),
		zap.String("message", provErr.Message),
	)

	return &apperrors.ProvisioningError{
		Status:  provErr.Status,
		Message: fmt.Sprintf("%s: %s", action, provErr.Message),
		Code:    provErr.Code,
		Err:     provErr,
	}
}
