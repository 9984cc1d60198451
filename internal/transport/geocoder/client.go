// Package geocoder is a client for a Nominatim-compatible geocoding API.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bazaarhq/listing-search/internal/domain"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/metrics"
	"github.com/bazaarhq/listing-search/internal/version"
)

const (
	defaultTimeout = 3 * time.Second
	maxErrorBody   = 512
)

// Client searches cities through the external geocoder.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	logger    *zap.Logger
}

// Config holds the geocoder settings.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewClient creates a geocoder client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = version.String()
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: userAgent,
		logger:    logger,
	}
}

// place is one entry of the jsonv2 search response.
type place struct {
	PlaceID     int64  `json:"place_id"`
	OSMType     string `json:"osm_type"`
	OSMID       int64  `json:"osm_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Address     struct {
		CountryCode string `json:"country_code"`
	} `json:"address"`
	ExtraTags map[string]string `json:"extratags"`
}

// SearchCities returns up to limit cities matching q.
// Transport and API failures wrap domain.ErrUpstream.
func (c *Client) SearchCities(ctx context.Context, q string, limit int) ([]listing.CachedCity, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "jsonv2")
	params.Set("featureType", "city")
	params.Set("addressdetails", "1")
	params.Set("extratags", "1")
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build geocoder request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	places, err := c.do(req)
	metrics.GeocoderRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GeocoderRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.GeocoderRequestsTotal.WithLabelValues("success").Inc()

	out := make([]listing.CachedCity, 0, len(places))
	for _, p := range places {
		city, err := toCity(p)
		if err != nil {
			c.logger.Warn("Skipping geocoder result", zap.Int64("place_id", p.PlaceID), zap.Error(err))
			continue
		}
		out = append(out, city)
	}
	return out, nil
}

func (c *Client) do(req *http.Request) ([]place, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder request failed: %w: %w", domain.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("geocoder API error %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(body)), domain.ErrUpstream)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode geocoder response: %w: %w", domain.ErrUpstream, err)
	}
	return places, nil
}

func toCity(p place) (listing.CachedCity, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return listing.CachedCity{}, fmt.Errorf("parse lat %q: %w", p.Lat, err)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return listing.CachedCity{}, fmt.Errorf("parse lon %q: %w", p.Lon, err)
	}

	name := p.Name
	if name == "" {
		name, _, _ = strings.Cut(p.DisplayName, ",")
	}
	if name == "" {
		return listing.CachedCity{}, fmt.Errorf("place has no name")
	}

	var population int64
	if v, ok := p.ExtraTags["population"]; ok {
		population, _ = strconv.ParseInt(v, 10, 64)
	}

	return listing.CachedCity{
		ExternalID:  externalID(p),
		Name:        name,
		DisplayName: p.DisplayName,
		CountryCode: strings.ToUpper(p.Address.CountryCode),
		Latitude:    lat,
		Longitude:   lng,
		Population:  population,
	}, nil
}

// externalID is the stable OSM reference, e.g. "R65606", or the place id
// when the OSM reference is missing.
func externalID(p place) string {
	if p.OSMType != "" && p.OSMID != 0 {
		return strings.ToUpper(p.OSMType[:1]) + strconv.FormatInt(p.OSMID, 10)
	}
	return "P" + strconv.FormatInt(p.PlaceID, 10)
}
