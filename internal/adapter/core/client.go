// Package core is the gateway to the external computation service: it
// translates workflow snapshots into backend requests and folds results
// back into store actions. The backend performs all numerical work
// (calibration, weather types, mapping functions); this package treats it
// as an opaque HTTP API.
//
// Backend failures are transient notices: they surface as errors to the
// caller and are retried only on an explicit user re-trigger, never
// automatically.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/calibrate-workbench/internal/domain"
	"github.com/couchcryptid/calibrate-workbench/internal/observability"
)

// ErrMetadataUnavailable is returned when the backend has no metadata for
// the requested predictor path.
var ErrMetadataUnavailable = errors.New("predictor metadata unavailable")

// Metadata describes a predictor dataset as reported by the backend.
type Metadata struct {
	Name  string `json:"name"`
	Units string `json:"units"`
}

// ObsMetadata describes an observation dataset.
type ObsMetadata struct {
	Units string `json:"units"`
}

// RunStatus reports whether a computation run is in progress.
type RunStatus struct {
	Running bool `json:"isRunning"`
}

// Client talks to the computation service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a computation service client. The timeout bounds
// individual requests; computation runs can be long, so callers configure
// it generously.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Health probes the backend healthcheck endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthcheck", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck: status %d", resp.StatusCode)
	}
	return nil
}

// Predictors lists the predictor codes found under path. The backend
// warms its own metadata cache as a side effect of this call.
func (c *Client) Predictors(ctx context.Context, path string) ([]string, error) {
	var codes []string
	if err := c.post(ctx, "predictors", "/predictors", pathPayload{Path: path}, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// PredictorMetadata fetches units and name for a single predictor path.
// Returns ErrMetadataUnavailable when the backend has nothing for it.
func (c *Client) PredictorMetadata(ctx context.Context, path string) (Metadata, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "predictor_metadata", "/get-predictor-metadata", pathPayload{Path: path}, &raw); err != nil {
		return Metadata{}, err
	}

	// The backend answers the JSON string "-" for paths it cannot
	// describe.
	var md Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return Metadata{}, ErrMetadataUnavailable
	}
	return md, nil
}

// ObservationsMetadata fetches the units of an observation dataset.
func (c *Client) ObservationsMetadata(ctx context.Context, path string) (ObsMetadata, error) {
	var md ObsMetadata
	if err := c.post(ctx, "observations_metadata", "/loaders/observations/metadata", pathPayload{Path: path}, &md); err != nil {
		return ObsMetadata{}, err
	}
	return md, nil
}

// StartComputation submits the run configuration derived from a workflow
// snapshot. The backend processes synchronously; poll RunStatus from
// another goroutine for progress.
func (c *Client) StartComputation(ctx context.Context, s domain.State) error {
	return c.post(ctx, "computation_start", "/computations/start", BuildRunConfig(s), nil)
}

// ComputationStatus reports whether a run is currently executing.
func (c *Client) ComputationStatus(ctx context.Context) (RunStatus, error) {
	var st RunStatus
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/computations/status", nil)
	if err != nil {
		return st, fmt.Errorf("create request: %w", err)
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GatewayDuration.WithLabelValues("computation_status").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GatewayRequests.WithLabelValues("computation_status", "error").Inc()
		return st, fmt.Errorf("computation status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.metrics.GatewayRequests.WithLabelValues("computation_status", "error").Inc()
		return st, backendError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		c.metrics.GatewayRequests.WithLabelValues("computation_status", "error").Inc()
		return st, fmt.Errorf("decode response: %w", err)
	}
	c.metrics.GatewayRequests.WithLabelValues("computation_status", "success").Inc()
	return st, nil
}

// SaveOperation triggers one of the postprocessing exports. The backend
// writes the artifacts to the request's output path itself; a nil error
// means the files exist.
func (c *Client) SaveOperation(ctx context.Context, req SaveRequest) error {
	return c.post(ctx, "save_"+req.Mode, "/postprocessing/save", req, nil)
}

type pathPayload struct {
	Path string `json:"path"`
}

// post sends a JSON payload and optionally decodes the JSON response into
// out. op labels metrics and error messages.
func (c *Client) post(ctx context.Context, op, route string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GatewayDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GatewayRequests.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.GatewayRequests.WithLabelValues(op, "error").Inc()
		return backendError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.metrics.GatewayRequests.WithLabelValues(op, "error").Inc()
			return fmt.Errorf("decode response: %w", err)
		}
	}

	c.metrics.GatewayRequests.WithLabelValues(op, "success").Inc()
	return nil
}

// backendError turns a non-200 response into an error carrying the
// backend's message, which is a plain-text traceback summary.
func backendError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("backend error: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
}
