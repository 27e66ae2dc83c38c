// internal/backend/client.go
// Package backend is the HTTP client for the analytics API: explore queries,
// raw SQL verification, entity and dimension lookups, and saved reports.
package backend

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

	"github.com/mwiater/benchlens/internal/appconfig"
	"github.com/mwiater/benchlens/internal/logging"
	"github.com/mwiater/benchlens/internal/result"
)

// Client talks to one analytics backend.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	debug   bool
}

// New constructs a Client configured with the application's base URL and
// request timeout.
func New(cfg *appconfig.Config) *Client {
	timeout := cfg.RequestTimeout()
	return &Client{
		baseURL: cfg.BaseURL(),
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
		debug:   cfg.Debug,
	}
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Explore runs an explore query and returns the validated result.
func (c *Client) Explore(ctx context.Context, req ExploreRequest) (*result.Result, error) {
	body, err := c.do(ctx, http.MethodPost, "/analytics/explore", "explore", req)
	if err != nil {
		return nil, err
	}
	res, err := result.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("explore: %w", err)
	}
	return res, nil
}

// Verify cross-checks a query against raw SQL.
func (c *Client) Verify(ctx context.Context, req ExploreRequest) (*Validation, error) {
	body, err := c.do(ctx, http.MethodPost, "/validation/verify", "verify", req)
	if err != nil {
		return nil, err
	}
	var wire validationWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("verify: decode response: %w", err)
	}
	v := wire.Validation
	if len(wire.AnalyticsResult) > 0 && string(wire.AnalyticsResult) != "null" {
		res, err := result.Decode(wire.AnalyticsResult)
		if err != nil {
			return nil, fmt.Errorf("verify: analytics_result: %w", err)
		}
		v.AnalyticsResult = res
	}
	return &v, nil
}

// Entities lists the institutions available for filtering.
func (c *Client) Entities(ctx context.Context) ([]Entity, error) {
	body, err := c.do(ctx, http.MethodGet, "/analytics/entities", "entities", nil)
	if err != nil {
		return nil, err
	}
	var entities []Entity
	if err := json.Unmarshal(body, &entities); err != nil {
		return nil, fmt.Errorf("entities: decode response: %w", err)
	}
	return entities, nil
}

// DimensionValues lists the distinct values of one dimension.
func (c *Client) DimensionValues(ctx context.Context, dimension string) ([]string, error) {
	endpoint := "/analytics/dimension-values?dimension_name=" + url.QueryEscape(dimension)
	body, err := c.do(ctx, http.MethodGet, endpoint, "dimension-values", nil)
	if err != nil {
		return nil, err
	}
	var values []string
	if err := json.Unmarshal(body, &values); err != nil {
		return nil, fmt.Errorf("dimension-values: decode response: %w", err)
	}
	return values, nil
}

// Reports lists saved reports, optionally filtered by a search string.
func (c *Client) Reports(ctx context.Context, search string) ([]SavedReport, error) {
	endpoint := "/reports"
	if s := strings.TrimSpace(search); s != "" {
		endpoint += "?" + url.Values{"search": {s}}.Encode()
	}
	body, err := c.do(ctx, http.MethodGet, endpoint, "reports", nil)
	if err != nil {
		return nil, err
	}
	var reports []SavedReport
	if err := json.Unmarshal(body, &reports); err != nil {
		return nil, fmt.Errorf("reports: decode response: %w", err)
	}
	return reports, nil
}

// Report fetches one saved report.
func (c *Client) Report(ctx context.Context, id string) (*SavedReport, error) {
	body, err := c.do(ctx, http.MethodGet, "/reports/"+url.PathEscape(id), "report", nil)
	if err != nil {
		return nil, err
	}
	var report SavedReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("report: decode response: %w", err)
	}
	return &report, nil
}

// do sends one request and returns the body of a 2xx response. Other
// statuses become an *APIError carrying the backend's detail message.
func (c *Client) do(ctx context.Context, method, endpoint, op string, payload any) ([]byte, error) {
	var reader io.Reader
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(body)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	logging.LogRequest("BENCHLENS->API", endpoint, op, body)
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}
	if c.debug {
		logging.LogRequest("API->BENCHLENS", endpoint, op, respBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Detail: parseDetail(respBody)}
		logging.LogEvent("backend: %s %s returned %s: %s", method, endpoint, resp.Status, apiErr)
		return nil, apiErr
	}
	return respBody, nil
}

// parseDetail extracts the detail field of an error body. Non-string details
// such as validation error lists are returned as compact JSON.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if string(payload.Detail) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload.Detail); err != nil {
		return string(payload.Detail)
	}
	return buf.String()
}
