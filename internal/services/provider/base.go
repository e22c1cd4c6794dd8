package provider

import (
	"context"
	"fmt"
	"time"

	"TickPull/pkg/config"
	xhttp "TickPull/pkg/http"
)

// HTTPProviderBase centralizes client construction and JSON GET handling
// for vendor REST APIs.
type HTTPProviderBase struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

// NewHTTPProviderBase builds an HTTP client with timeout and base URL from config.
func NewHTTPProviderBase(cfg *config.Config) *HTTPProviderBase {
	timeout := cfg.History.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProviderBase{
		baseURL: cfg.History.BaseURL,
		apiKey:  cfg.History.APIKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// GetJSON performs a GET against `path` under baseURL and decodes JSON into dest.
func (b *HTTPProviderBase) GetJSON(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("history http client not initialized")
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + b.apiKey,
		},
		QueryParams: query,
	}, dest)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return nil
}

// GetJSONWithRetry performs GetJSON with up to `attempts` retries for
// transient errors.
func (b *HTTPProviderBase) GetJSONWithRetry(ctx context.Context, path string, query map[string][]string, dest interface{}, attempts int) error {
	if attempts <= 1 {
		return b.GetJSON(ctx, path, query, dest)
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = b.GetJSON(ctx, path, query, dest)
		if err == nil {
			return nil
		}
		// simple backoff
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
