// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/wastewise/wastewise/spatial"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// NominatimURL is the public OpenStreetMap search endpoint.
	NominatimURL = "https://nominatim.openstreetmap.org/search"

	// DefaultDelay is the minimum wait before every Nominatim call.
	DefaultDelay = time.Second

	candidateLimit = 5
)

// NominatimOptions configures a Nominatim geocoder.
type NominatimOptions struct {
	BaseURL string
	Area    Area
	// Delay waited before each request. Zero disables waiting.
	Delay time.Duration
	// Client must carry the User-Agent and Accept-Language headers.
	Client *http.Client
}

// Nominatim geocodes through an OpenStreetMap Nominatim instance.
type Nominatim struct {
	baseURL string
	area    Area
	delay   time.Duration
	limiter *rate.Limiter
	client  *http.Client
}

// NewNominatim creates a Nominatim geocoder.
func NewNominatim(options NominatimOptions) *Nominatim {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = NominatimURL
	}

	client := options.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	limit := rate.Inf
	if options.Delay > 0 {
		limit = rate.Every(options.Delay)
	}

	return &Nominatim{
		baseURL: baseURL,
		area:    options.Area,
		delay:   options.Delay,
		limiter: rate.NewLimiter(limit, 1),
		client:  client,
	}
}

type nominatimResponse struct {
	Lat         string         `json:"lat"`
	Lon         string         `json:"lon"`
	DisplayName string         `json:"display_name"`
	Address     map[string]any `json:"address"`
}

// wait holds the caller for the fixed delay and then for the shared limiter,
// which keeps concurrent callers spaced as well.
func (n *Nominatim) wait(ctx context.Context) error {
	if n.delay > 0 {
		timer := time.NewTimer(n.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return n.limiter.Wait(ctx)
}

// Geocode implements Geocoder.
func (n *Nominatim) Geocode(ctx context.Context, address string) (*Result, error) {
	if strings.TrimSpace(address) == "" {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "empty address"}
	}

	if err := n.wait(ctx); err != nil {
		return nil, classifyTransportError(eris.Wrap(err, "waiting for nominatim slot"))
	}

	query := n.area.Query(address)
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(candidateLimit))
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := n.client.Do(req)
	if err != nil {
		zap.L().Error("nominatim request failed", zap.String("query", query), zap.Error(err))

		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		zap.L().Error("nominatim upstream error", zap.Int("status", resp.StatusCode))

		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var raw []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: "decoding nominatim response",
			Err:     eris.Wrap(err, "nominatim payload"),
		}
	}

	candidates := make([]candidate, 0, len(raw))
	for _, r := range raw {
		c, ok := r.candidate()
		if !ok {
			zap.L().Warn("skipping nominatim result with malformed coordinates",
				zap.String("display_name", r.DisplayName),
				zap.String("lat", r.Lat),
				zap.String("lon", r.Lon))

			continue
		}

		candidates = append(candidates, c)
	}

	best, err := n.area.pick(address, len(raw), candidates)
	if err != nil {
		zap.L().Info("address not resolved", zap.String("address", address), zap.Error(err))

		return nil, err
	}

	return &Result{
		Point:       best.Point,
		DisplayName: best.DisplayName,
		Provider:    "nominatim",
	}, nil
}

func (r nominatimResponse) candidate() (candidate, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(r.Lat), 64)
	if err != nil {
		return candidate{}, false
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(r.Lon), 64)
	if err != nil {
		return candidate{}, false
	}

	p := spatial.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return candidate{}, false
	}

	components := make([]string, 0, len(r.Address))
	for _, v := range r.Address {
		if s, ok := v.(string); ok {
			components = append(components, s)
		}
	}

	return candidate{Point: p, DisplayName: r.DisplayName, Components: components}, true
}
