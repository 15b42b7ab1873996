// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/wastewise/wastewise/spatial"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// GoogleGeocodeURL is the Google Maps Geocoding API endpoint.
const GoogleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleOptions configures a Google geocoder.
type GoogleOptions struct {
	BaseURL string
	APIKey  string
	Area    Area
	// Region biases results, "ch" by default.
	Region string
	Client *http.Client
	// Limiter caps the request rate. Nil means ten requests per second.
	Limiter *rate.Limiter
}

// Google uses the Google Maps Geocoding API.
type Google struct {
	baseURL string
	apiKey  string
	area    Area
	region  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewGoogle creates a Google Maps geocoder.
func NewGoogle(options GoogleOptions) *Google {
	g := &Google{
		baseURL: options.BaseURL,
		apiKey:  options.APIKey,
		area:    options.Area,
		region:  options.Region,
		client:  options.Client,
		limiter: options.Limiter,
	}

	if g.baseURL == "" {
		g.baseURL = GoogleGeocodeURL
	}

	if g.region == "" {
		g.region = "ch"
	}

	if g.client == nil {
		g.client = &http.Client{Timeout: 10 * time.Second}
	}

	if g.limiter == nil {
		g.limiter = rate.NewLimiter(rate.Limit(10), 1)
	}

	return g
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string `json:"long_name"`
			ShortName string `json:"short_name"`
		} `json:"address_components"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// Geocode implements Geocoder.
func (g *Google) Geocode(ctx context.Context, address string) (*Result, error) {
	if strings.TrimSpace(address) == "" {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "empty address"}
	}

	if g.apiKey == "" {
		return nil, &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "google api key not configured"}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, classifyTransportError(eris.Wrap(err, "google rate limit"))
	}

	params := url.Values{}
	params.Set("address", g.area.Query(address))
	params.Set("key", g.apiKey)
	params.Set("region", g.region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		zap.L().Error("google geocoding request failed", zap.Error(err))

		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: "decoding google response",
			Err:     eris.Wrap(err, "google payload"),
		}
	}

	switch gmResp.Status {
	case "OK", "ZERO_RESULTS":
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT", "REQUEST_DENIED":
		return nil, &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "google maps status: " + gmResp.Status + " " + gmResp.ErrorMessage}
	case "INVALID_REQUEST":
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "google maps status: " + gmResp.Status}
	default:
		return nil, &GeocodingError{Type: ErrorTypeUnknown, Message: "google maps status: " + gmResp.Status}
	}

	candidates := make([]candidate, 0, len(gmResp.Results))
	for _, r := range gmResp.Results {
		p := spatial.Point{Lat: r.Geometry.Location.Lat, Lon: r.Geometry.Location.Lng}
		if !p.Valid() {
			continue
		}

		c := candidate{Point: p, DisplayName: r.FormattedAddress}
		for _, ac := range r.AddressComponents {
			c.Components = append(c.Components, ac.LongName, ac.ShortName)
		}

		candidates = append(candidates, c)
	}

	best, err := g.area.pick(address, len(gmResp.Results), candidates)
	if err != nil {
		return nil, err
	}

	return &Result{
		Point:       best.Point,
		DisplayName: best.DisplayName,
		Provider:    "google_maps",
	}, nil
}
