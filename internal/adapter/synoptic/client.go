// Package synoptic implements a client for the Synoptic Data Mesonet API
// timeseries endpoint (https://docs.synopticdata.com/services/time-series).
package synoptic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/naqfc-fetch/internal/observability"
)

// requestTimeFormat is the compact UTC timestamp the API expects for
// start/end bounds.
const requestTimeFormat = "200601021504"

// Observation is one flattened station/variable/time/value row.
type Observation struct {
	StationID string    `json:"station_id"`
	Variable  string    `json:"variable"`
	Time      time.Time `json:"time"`
	Value     float64   `json:"value"`
}

// TimeSeriesParams selects the stations, variables, and time window to fetch.
type TimeSeriesParams struct {
	Stations  []string
	Variables []string
	Start     time.Time
	End       time.Time
}

// Client calls the Synoptic Data API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Synoptic API client. baseURL should point at the API
// root, e.g. "https://api.synopticdata.com/v2".
func NewClient(token, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// TimeSeries fetches observations for the requested stations and variables
// and flattens the per-station column arrays into rows. Null readings are
// dropped.
func (c *Client) TimeSeries(ctx context.Context, params TimeSeriesParams) ([]Observation, error) {
	if len(params.Stations) == 0 {
		return nil, errors.New("at least one station is required")
	}
	if !params.End.After(params.Start) {
		return nil, errors.New("end must be after start")
	}

	q := url.Values{
		"token":      {c.token},
		"stid":       {strings.Join(params.Stations, ",")},
		"start":      {params.Start.UTC().Format(requestTimeFormat)},
		"end":        {params.End.UTC().Format(requestTimeFormat)},
		"obtimezone": {"utc"},
	}
	if len(params.Variables) > 0 {
		q.Set("vars", strings.Join(params.Variables, ","))
	}

	resp, err := c.doRequest(ctx, c.baseURL+"/stations/timeseries?"+q.Encode())
	if err != nil {
		return nil, err
	}

	rows, err := flatten(resp)
	if err != nil {
		return nil, err
	}

	c.metrics.ObservationRows.Add(float64(len(rows)))
	c.logger.Debug("synoptic timeseries fetched",
		"stations", len(resp.Stations),
		"rows", len(rows),
	)
	return rows, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.SynopticDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.SynopticRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("timeseries request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.SynopticRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("synoptic API error: status %d: %s", resp.StatusCode, body)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.metrics.SynopticRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// The API reports application errors with HTTP 200 and a non-1 code.
	if parsed.Summary.ResponseCode != 1 {
		c.metrics.SynopticRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("synoptic API error: code %d: %s",
			parsed.Summary.ResponseCode, parsed.Summary.ResponseMessage)
	}

	c.metrics.SynopticRequests.WithLabelValues("success").Inc()
	return &parsed, nil
}
