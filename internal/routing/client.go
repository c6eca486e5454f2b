// Package routing fetches driving routes from an OSRM-compatible service.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ridefare/internal/config"
	"ridefare/internal/domain"
	"ridefare/internal/domain/entities"
	"ridefare/internal/logger"
	"ridefare/internal/metrics"
)

// codeNoRoute is the OSRM status for "no path between these points". OSRM
// sends it with HTTP 400, so the body is inspected before the status.
const codeNoRoute = "NoRoute"

// Client is an OSRM client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	profile    string
	httpClient *http.Client
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

// WithMetrics records every upstream call on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a Client from the routing config section.
func NewClient(cfg config.RoutingConfig, opts ...Option) *Client {
	profile := cfg.Profile
	if profile == "" {
		profile = "driving"
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		profile:    profile,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// GetRoute returns the first route between origin and destination.
//
// Go Learning Note — (nil, nil) Returns:
// "The service answered and there is no route" is a normal outcome, not an
// error, so it comes back as (nil, nil). Errors are reserved for failures
// talking to the service; they wrap domain.ErrNetworkFailure so callers can
// tell the two apart with errors.Is.
func (c *Client) GetRoute(ctx context.Context, origin, destination entities.GeoPoint) (*entities.RoutePath, error) {
	start := time.Now()
	route, err := c.fetch(ctx, origin, destination)

	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeFailure
		c.log.Warn("route request failed",
			zap.Stringer("origin", origin),
			zap.Stringer("destination", destination),
			zap.Error(err),
		)
	case route == nil:
		outcome = metrics.OutcomeEmpty
	}
	c.metrics.ObserveUpstream(metrics.ServiceRouting, "route", outcome, time.Since(start))
	return route, err
}

func (c *Client) fetch(ctx context.Context, origin, destination entities.GeoPoint) (*entities.RoutePath, error) {
	url := fmt.Sprintf("%s/route/v1/%s/%s;%s?overview=full&geometries=geojson",
		c.baseURL, c.profile, lonLat(origin), lonLat(destination))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrNetworkFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrNetworkFailure, err)
	}

	var payload routeResponse
	decodeErr := json.Unmarshal(body, &payload)
	if decodeErr == nil && payload.Code == codeNoRoute {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrNetworkFailure, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrNetworkFailure, decodeErr)
	}
	if len(payload.Routes) == 0 {
		return nil, nil
	}

	first := payload.Routes[0]
	path := make([]entities.GeoPoint, 0, len(first.Geometry.Coordinates))
	for i, pair := range first.Geometry.Coordinates {
		if len(pair) < 2 {
			return nil, fmt.Errorf("%w: coordinate %d has %d values", domain.ErrNetworkFailure, i, len(pair))
		}
		// GeoJSON order is [lon, lat].
		path = append(path, entities.NewGeoPoint(pair[1], pair[0]))
	}

	return &entities.RoutePath{
		Path:            path,
		DistanceMeters:  first.Distance,
		DurationSeconds: first.Duration,
	}, nil
}

func lonLat(p entities.GeoPoint) string {
	return strconv.FormatFloat(p.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Latitude, 'f', -1, 64)
}
