package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/prognoza/forecast-platform/pkg/integration"
)

const maxErrorBodySize = 64 * 1024

// MLClient posts assembled payloads to the forecasting service.
// Failures are returned raw enough for integration.Classify to see the
// status code, body and headers.
type MLClient struct {
	url        string
	httpClient *http.Client
}

// NewMLClient creates a new ML service client
func NewMLClient(url string) *MLClient {
	return &MLClient{
		url: url,
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Predict sends the payload and decodes the response array. The first
// response element carries run metrics, the rest are predictions.
func (c *MLClient) Predict(ctx context.Context, payload []map[string]interface{}) ([]map[string]interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ML payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build ML request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		httpErr := &integration.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Header:     resp.Header,
		}
		// Validation rejections carry a structured {error, details}
		// body; keep the field errors for classification.
		var parsed struct {
			Error   string                   `json:"error"`
			Details []integration.FieldError `json:"details"`
		}
		if json.Unmarshal(respBody, &parsed) == nil {
			httpErr.Details = parsed.Details
		}
		return nil, httpErr
	}

	var result []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode ML response: %w", err)
	}

	return result, nil
}
