// Package geocoding talks to a Nominatim-compatible service: free-text place
// search, reverse lookup of coordinates and resolution of the device
// position into a Place.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"ridefare/internal/config"
	"ridefare/internal/domain"
	"ridefare/internal/domain/entities"
	"ridefare/internal/logger"
	"ridefare/internal/metrics"
)

// Client is a Nominatim client. It is safe for concurrent use.
type Client struct {
	baseURL         string
	countryCodes    string
	limit           int
	minQueryLength  int
	userAgent       string
	locationTimeout time.Duration

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

// WithLogger sets the logger used for soft failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

// WithMetrics records every upstream call on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLocationTimeout bounds how long ResolveCurrentLocation waits for a fix.
func WithLocationTimeout(d time.Duration) Option {
	return func(c *Client) { c.locationTimeout = d }
}

// NewClient builds a Client from the geocoding config section.
func NewClient(cfg config.GeocodingConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		countryCodes:    cfg.CountryCodes,
		limit:           cfg.ResultLimit,
		minQueryLength:  cfg.MinQueryLength,
		userAgent:       cfg.UserAgent,
		locationTimeout: 10 * time.Second,
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		log:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MinQueryLength is the shortest trimmed query that reaches the network.
func (c *Client) MinQueryLength() int {
	return c.minQueryLength
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Search returns up to the configured number of places matching text, in
// the order the service ranked them.
//
// Search never fails: a query shorter than the minimum length, a transport
// error, a non-2xx status or a malformed body all yield an empty slice. The
// user simply sees no suggestions and keeps typing.
func (c *Client) Search(ctx context.Context, text string) []entities.Place {
	query := strings.TrimSpace(text)
	if utf8.RuneCountInString(query) < c.minQueryLength {
		return []entities.Place{}
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("countrycodes", c.countryCodes)
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("addressdetails", "1")

	start := time.Now()
	var results []searchResult
	if err := c.getJSON(ctx, "/search", params, &results); err != nil {
		c.metrics.ObserveUpstream(metrics.ServiceGeocoding, "search", metrics.OutcomeFailure, time.Since(start))
		if ctx.Err() == nil {
			c.log.Warn("place search failed", zap.String("query", query), zap.Error(err))
		}
		return []entities.Place{}
	}

	places, err := toPlaces(results, c.limit)
	if err != nil {
		c.metrics.ObserveUpstream(metrics.ServiceGeocoding, "search", metrics.OutcomeFailure, time.Since(start))
		c.log.Warn("place search returned malformed coordinates", zap.String("query", query), zap.Error(err))
		return []entities.Place{}
	}

	outcome := metrics.OutcomeOK
	if len(places) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	c.metrics.ObserveUpstream(metrics.ServiceGeocoding, "search", outcome, time.Since(start))
	return places
}

// toPlaces converts wire results. One unparseable coordinate discards the
// whole batch, since the body can no longer be trusted.
func toPlaces(results []searchResult, limit int) ([]entities.Place, error) {
	places := make([]entities.Place, 0, len(results))
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("parse lat %q: %w", r.Lat, err)
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("parse lon %q: %w", r.Lon, err)
		}
		places = append(places, entities.Place{
			Point:       entities.NewGeoPoint(lat, lon),
			DisplayName: r.DisplayName,
			Name:        shortName(r.Name, r.DisplayName),
		})
		if limit > 0 && len(places) == limit {
			break
		}
	}
	return places, nil
}

func shortName(name, displayName string) string {
	if name != "" {
		return name
	}
	first, _, _ := strings.Cut(displayName, ",")
	return strings.TrimSpace(first)
}

// Reverse returns the address Nominatim reports for p. Every failure wraps
// domain.ErrReverseGeocodeFailure.
func (c *Client) Reverse(ctx context.Context, p entities.GeoPoint) (string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(p.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(p.Longitude, 'f', -1, 64))

	start := time.Now()
	var result reverseResult
	err := c.getJSON(ctx, "/reverse", params, &result)
	if err == nil && result.DisplayName == "" {
		err = fmt.Errorf("empty display name (service error %q)", result.Error)
	}
	if err != nil {
		c.metrics.ObserveUpstream(metrics.ServiceGeocoding, "reverse", metrics.OutcomeFailure, time.Since(start))
		return "", fmt.Errorf("%w: %v", domain.ErrReverseGeocodeFailure, err)
	}
	c.metrics.ObserveUpstream(metrics.ServiceGeocoding, "reverse", metrics.OutcomeOK, time.Since(start))
	return result.DisplayName, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
