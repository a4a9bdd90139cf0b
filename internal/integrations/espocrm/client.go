package espocrm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"talkbot-gateway/internal/integrations"
)

const apiKeyHeader = "X-Api-Key"

// Client talks to the EspoCRM REST API. It holds no per-request state and is safe to share.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// New builds the client. A nil httpClient gets one with the given timeout.
func New(baseURL, apiKey string, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) integrations.CRMClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger.Named("espocrm"),
	}
}

// List returns a page of entities. params are forwarded as-is (offset, maxSize, where[...], orderBy...).
func (c *Client) List(ctx context.Context, entityType string, params url.Values) (json.RawMessage, error) {
	return c.do(ctx, "list", http.MethodGet, entityPath(entityType), params, nil)
}

func (c *Client) GetByID(ctx context.Context, entityType, id string) (json.RawMessage, error) {
	return c.do(ctx, "get", http.MethodGet, entityPath(entityType, id), nil, nil)
}

func (c *Client) Create(ctx context.Context, entityType string, data interface{}) (json.RawMessage, error) {
	return c.do(ctx, "create", http.MethodPost, entityPath(entityType), nil, data)
}

func (c *Client) Update(ctx context.Context, entityType, id string, data interface{}) (json.RawMessage, error) {
	return c.do(ctx, "update", http.MethodPut, entityPath(entityType, id), nil, data)
}

func (c *Client) Delete(ctx context.Context, entityType, id string) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, entityPath(entityType, id), nil, nil)
	return err
}

func entityPath(segments ...string) string {
	path := ""
	for _, s := range segments {
		path += "/" + url.PathEscape(s)
	}
	return path
}
