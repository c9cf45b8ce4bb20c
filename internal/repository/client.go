package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/Veraticus/geoscope/internal/common"
	"github.com/Veraticus/geoscope/internal/model"
)

// Client talks to the backend REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      common.RetryOptions
}

// NewClient creates a backend client. baseURL has no trailing slash.
func NewClient(baseURL string, timeout time.Duration, retryAttempts int) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry: common.RetryOptions{
			MaxAttempts:  retryAttempts,
			InitialDelay: 250 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
	}
}

// Countries fetches and normalizes the country table.
func (c *Client) Countries(ctx context.Context) ([]model.CountryRecord, error) {
	body, err := c.get(ctx, "/api/countries")
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: countries response: %v", common.ErrBadPayload, err)
	}

	records := make([]model.CountryRecord, 0, len(rows))
	for _, row := range rows {
		if rec, ok := recordFromRow(row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// GeoJSON fetches the world geometry. The endpoint serves either a full
// FeatureCollection or a bare feature array; both normalize to one shape.
func (c *Client) GeoJSON(ctx context.Context) ([]*geojson.Feature, error) {
	body, err := c.get(ctx, "/api/map/geojson")
	if err != nil {
		return nil, err
	}
	return decodeFeatures(body)
}

// ErrorCurve fetches the clustering MSE sequence and the optimal-k marker.
func (c *Client) ErrorCurve(ctx context.Context) (*model.ErrorCurve, error) {
	mseBody, err := c.get(ctx, "/api/clustering/mse")
	if err != nil {
		return nil, err
	}

	var rows []struct {
		KValue   int     `json:"k_value"`
		MSEValue float64 `json:"mse_value"`
	}
	if err := json.Unmarshal(mseBody, &rows); err != nil {
		return nil, fmt.Errorf("%w: mse response: %v", common.ErrBadPayload, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty mse response", common.ErrBadPayload)
	}

	curve := &model.ErrorCurve{Points: make([]model.ErrorCurvePoint, 0, len(rows))}
	for _, row := range rows {
		curve.Points = append(curve.Points, model.ErrorCurvePoint{K: row.KValue, MSE: row.MSEValue})
	}

	optBody, err := c.get(ctx, "/api/clustering/optimal-k")
	if err != nil {
		return nil, err
	}
	var opt struct {
		OptimalK int `json:"optimalK"`
	}
	if err := json.Unmarshal(optBody, &opt); err != nil {
		return nil, fmt.Errorf("%w: optimal-k response: %v", common.ErrBadPayload, err)
	}
	curve.OptimalK = opt.OptimalK

	return curve, nil
}

// get performs a GET with retry on transient failures. The retry budget
// covers one request only; source-level fallback is the repository's job.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request %s: %w", path, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests {
			return common.ErrRateLimit
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("backend %s: status %d", path, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &common.RetryableError{
				Err:       fmt.Errorf("backend %s: status %d - %s", path, resp.StatusCode, bytes.TrimSpace(detail)),
				Retryable: false,
			}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		return nil
	}

	if err := common.WithRetry(ctx, operation, c.retry); err != nil {
		return nil, err
	}
	return body, nil
}

// decodeFeatures accepts either a FeatureCollection object or a bare
// array of features.
func decodeFeatures(body []byte) ([]*geojson.Feature, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var features []*geojson.Feature
		if err := json.Unmarshal(trimmed, &features); err != nil {
			return nil, fmt.Errorf("%w: feature array: %v", common.ErrBadPayload, err)
		}
		return features, nil
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("%w: feature collection: %v", common.ErrBadPayload, err)
	}
	return fc.Features, nil
}
