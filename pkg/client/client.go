// Package client provides the GreenShield Go SDK for submitting citizen
// reports to a validation service and reading its health and statistics
// surfaces.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ValidateRequest is the payload for ValidateReport. Pointer fields are
// omitted when nil so the service can distinguish absent keys.
type ValidateRequest struct {
	PhotoURL    *string  `json:"photo_url,omitempty"`
	Timestamp   *string  `json:"timestamp,omitempty"`
	Description string   `json:"description"`
	ReporterID  *string  `json:"reporter_id,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// Decision mirrors the service's decision object.
type Decision struct {
	ReportID        string   `json:"report_id"`
	ReporterID      string   `json:"reporter_id"`
	ConfidenceScore float64  `json:"confidence_score"`
	ConfidenceLevel string   `json:"confidence_level"`
	AnomalyDetected bool     `json:"anomaly_detected"`
	AnomalyScore    float64  `json:"anomaly_score"`
	UrgencyLevel    string   `json:"urgency_level"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
	PointsEarned    int      `json:"points_earned"`
	Badges          []string `json:"badges"`
}

// ValidateResult is the full validate-report response.
type ValidateResult struct {
	Decision   Decision `json:"decision"`
	Satellite  string   `json:"satellite_source"`
	Degraded   bool     `json:"degraded"`
	ElapsedMS  int64    `json:"elapsed_ms"`
	Validation struct {
		Valid    bool     `json:"valid"`
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
	} `json:"validation"`
}

// ServiceStatus is the pipeline health response.
type ServiceStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Uptime     float64           `json:"uptime_seconds"`
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("service error %d: %s (%s)", e.StatusCode, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("service error %d: %s", e.StatusCode, e.Message)
}

// Client is the GreenShield SDK entry point.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithTimeout overrides the default 60 s request timeout. Validation requests
// can legitimately take tens of seconds when the photo is large.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.httpClient.Timeout = d
		return nil
	}
}

// New creates a Client connected to baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on error. Useful in tests and program init.
func MustNew(baseURL string, opts ...Option) *Client {
	c, err := New(baseURL, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ValidateReport submits one report and returns the service's decision.
func (c *Client) ValidateReport(ctx context.Context, req ValidateRequest) (*ValidateResult, error) {
	var out ValidateResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/validate-report", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches the pipeline health surface.
func (c *Client) Status(ctx context.Context) (*ServiceStatus, error) {
	var out ServiceStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Statistics fetches the aggregate statistics surface. The shape is stable
// but loosely typed; callers pick the fields they need.
func (c *Client) Statistics(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/v1/statistics", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
		var payload struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Details = payload.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
