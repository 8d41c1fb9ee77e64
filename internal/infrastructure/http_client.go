package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shieldboard/internal/domain"
	"shieldboard/pkg/logger"
	"shieldboard/pkg/metrics"

	"golang.org/x/time/rate"
)

const dashboardPath = "/api/dashboard"

// implements domain.SnapshotClient and domain.DashboardForwarder
type HTTPClient struct {
	client      *http.Client
	apiBase     string
	backendURL  string
	logger      *logger.Logger
	metrics     *metrics.Metrics
	rateLimiter *rate.Limiter
}

// creates a new HTTP client. apiBase is where snapshots are fetched from;
// backendURL is the origin the proxy forwards to and may be empty.
func NewHTTPClient(apiBase, backendURL string, timeout time.Duration, ratePerSecond int, logger *logger.Logger, metrics *metrics.Metrics) *HTTPClient {
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		apiBase:     strings.TrimRight(apiBase, "/"),
		backendURL:  strings.TrimRight(backendURL, "/"),
		logger:      logger,
		metrics:     metrics,
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
	}
}

// DashboardURL returns the snapshot URL for the given filters.
func (c *HTTPClient) DashboardURL(filters domain.Filters) string {
	return c.apiBase + dashboardPath + filters.QueryString()
}

// FetchSnapshot issues exactly one GET for the filters and decodes the result.
// Every failure is a *domain.FetchError; no retries are attempted.
func (c *HTTPClient) FetchSnapshot(ctx context.Context, filters domain.Filters) (*domain.Snapshot, error) {
	start := time.Now()
	url := c.DashboardURL(filters)

	// Apply rate limiting
	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordExternalAPIFailure("dashboard", "rate_limit")
		return nil, &domain.FetchError{Kind: domain.FetchErrorTransport, Err: fmt.Errorf("rate limit: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("dashboard", "request_creation")
		return nil, &domain.FetchError{Kind: domain.FetchErrorTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("dashboard", "network_error")
		return nil, &domain.FetchError{Kind: domain.FetchErrorTransport, Err: err}
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordExternalAPICall("dashboard", fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, &domain.FetchError{Kind: domain.FetchErrorStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("dashboard", "read_body")
		return nil, &domain.FetchError{Kind: domain.FetchErrorTransport, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	snapshot, err := DecodeSnapshot(body)
	if err != nil {
		var malformed *domain.MalformedResponseError
		if errors.As(err, &malformed) {
			c.metrics.RecordExternalAPIFailure("dashboard", "malformed")
		} else {
			c.metrics.RecordExternalAPIFailure("dashboard", "json_parse")
		}
		return nil, &domain.FetchError{Kind: domain.FetchErrorParse, StatusCode: resp.StatusCode, Err: err}
	}

	c.metrics.RecordExternalAPICall("dashboard", "success", duration)

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"url":         url,
		"duration":    duration,
		"months":      len(snapshot.SignupsOverTime),
		"last_synced": snapshot.LastSynced,
	}).Info("Successfully fetched dashboard snapshot")

	return snapshot, nil
}

// ErrBackendNotConfigured is returned by ForwardDashboard when no backend
// origin is set.
var ErrBackendNotConfigured = errors.New("backend URL not configured")

// ErrUpstreamNotJSON is returned when the backend answers with a body that is
// not JSON.
var ErrUpstreamNotJSON = errors.New("upstream response is not JSON")

// ForwardDashboard relays a dashboard request with its raw query string to the
// backend origin and returns status and body untouched.
func (c *HTTPClient) ForwardDashboard(ctx context.Context, rawQuery string) (*domain.ForwardedResponse, error) {
	if c.backendURL == "" {
		return nil, ErrBackendNotConfigured
	}

	start := time.Now()
	url := c.backendURL + dashboardPath
	if rawQuery != "" {
		url += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("backend", "request_creation")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("backend", "network_error")
		return nil, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("backend", "read_body")
		return nil, fmt.Errorf("failed to read backend body: %w", err)
	}

	duration := time.Since(start)

	if !isJSON(body) {
		c.metrics.RecordExternalAPIFailure("backend", "json_parse")
		return nil, ErrUpstreamNotJSON
	}

	c.metrics.RecordExternalAPICall("backend", fmt.Sprintf("%d", resp.StatusCode), duration)

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
		"bytes":    len(body),
	}).Debug("Forwarded dashboard request")

	return &domain.ForwardedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}
