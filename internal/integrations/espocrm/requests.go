package espocrm

import (
	"bytes"
	"context"
	"encoding/json"
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

// errorBody is the JSON EspoCRM (or a proxy in front of it) may return on failure.
type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, payload interface{}) (body json.RawMessage, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream("espocrm", operation, start, err) }()

	if c.baseURL == "" {
		return nil, &apperrors.UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: apperrors.ErrCRMNotConfigured.Error(),
			Err:     apperrors.ErrCRMNotConfigured,
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, &apperrors.UpstreamError{
				Status:  http.StatusInternalServerError,
				Message: fmt.Sprintf("failed to encode request body: %v", err),
				Err:     err,
			}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &apperrors.UpstreamError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("CRM request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("CRM request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, &apperrors.UpstreamError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.UpstreamError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("failed to read CRM response: %v", err),
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstreamErr := &apperrors.UpstreamError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp, respBody),
		}
		c.logger.Warn("CRM returned an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", upstreamErr.Message),
		)
		return nil, upstreamErr
	}

	return json.RawMessage(respBody), nil
}

// errorMessage prefers the structured message in the body, then EspoCRM's X-Status-Reason header,
// then a generic transport message.
func errorMessage(resp *http.Response, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && strings.TrimSpace(eb.Message) != "" {
		return eb.Message
	}
	if reason := strings.TrimSpace(resp.Header.Get("X-Status-Reason")); reason != "" {
		return reason
	}
	return fmt.Sprintf("request failed with status code %d", resp.StatusCode)
}
