// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastewise/wastewise/utils/httputils"
)

func newNominatimServer(t *testing.T, status int, body string) (*httptest.Server, *url.Values, *http.Header, *int32) {
	t.Helper()

	var (
		query   url.Values
		headers http.Header
		calls   int32
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		query = r.URL.Query()
		headers = r.Header.Clone()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, &query, &headers, &calls
}

func newTestNominatim(baseURL string) *Nominatim {
	return NewNominatim(NominatimOptions{
		BaseURL: baseURL,
		Area:    StGallen,
		Client: httputils.NewClient(httputils.ClientOptions{
			UserAgent:      "WasteWise-StGallen-App/1.0 (test)",
			AcceptLanguage: "de,en",
			Timeout:        5 * time.Second,
		}),
	})
}

func TestNominatimGeocode(t *testing.T) {
	srv, query, headers, _ := newNominatimServer(t, http.StatusOK, `[
		{"lat": "47.3769", "lon": "8.5417", "display_name": "Marktgasse, Zürich", "address": {"city": "Zürich"}},
		{"lat": "abc", "lon": "9.37", "display_name": "broken, St. Gallen"},
		{"lat": "47.4245", "lon": "9.3767", "display_name": "Marktgasse 5, Altstadt",
		 "address": {"road": "Marktgasse", "city": "St. Gallen", "postcode": "9000", "ISO3166-2-lvl4": "CH-SG"}}
	]`)

	result, err := newTestNominatim(srv.URL).Geocode(context.Background(), "Marktgasse 5")
	require.NoError(t, err)

	assert.InDelta(t, 47.4245, result.Point.Lat, 1e-9)
	assert.InDelta(t, 9.3767, result.Point.Lon, 1e-9)
	assert.Equal(t, "Marktgasse 5, Altstadt", result.DisplayName)
	assert.Equal(t, "nominatim", result.Provider)

	assert.Equal(t, "Marktgasse 5, St. Gallen, Switzerland", query.Get("q"))
	assert.Equal(t, "json", query.Get("format"))
	assert.Equal(t, "5", query.Get("limit"))
	assert.Equal(t, "1", query.Get("addressdetails"))
	assert.Equal(t, "WasteWise-StGallen-App/1.0 (test)", headers.Get("User-Agent"))
	assert.Equal(t, "de,en", headers.Get("Accept-Language"))
}

func TestNominatimFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"empty result", http.StatusOK, `[]`, IsNotFound},
		{"malformed coordinates only", http.StatusOK, `[{"lat": "", "lon": "9.3", "display_name": "St. Gallen"}]`, IsNotFound},
		{"outside service area", http.StatusOK, `[{"lat": "47.3769", "lon": "8.5417", "display_name": "Zürich"}]`, IsOutOfCoverage},
		{"inside bounds without city", http.StatusOK, `[{"lat": "47.42", "lon": "9.37", "display_name": "Gaiserwald", "address": {"village": "Engelburg"}}]`, IsOutOfCoverage},
		{"throttled", http.StatusTooManyRequests, ``, IsRateLimitError},
		{"upstream down", http.StatusServiceUnavailable, ``, IsTransportError},
		{"garbage payload", http.StatusOK, `<html>`, IsTransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _, _ := newNominatimServer(t, tt.status, tt.body)

			result, err := newTestNominatim(srv.URL).Geocode(context.Background(), "Marktgasse 5")
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
		})
	}
}

func TestNominatimEmptyAddress(t *testing.T) {
	srv, _, _, calls := newNominatimServer(t, http.StatusOK, `[]`)

	_, err := newTestNominatim(srv.URL).Geocode(context.Background(), "   ")
	require.Error(t, err)

	var geoErr *GeocodingError
	require.ErrorAs(t, err, &geoErr)
	assert.Equal(t, ErrorTypeInvalidRequest, geoErr.Type)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestNominatimNetworkFailure(t *testing.T) {
	srv, _, _, _ := newNominatimServer(t, http.StatusOK, `[]`)
	baseURL := srv.URL
	srv.Close()

	_, err := newTestNominatim(baseURL).Geocode(context.Background(), "Marktgasse 5")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.False(t, IsNotFound(err))
}

func TestNominatimDelayHonoursContext(t *testing.T) {
	srv, _, _, calls := newNominatimServer(t, http.StatusOK, `[]`)

	n := NewNominatim(NominatimOptions{BaseURL: srv.URL, Area: StGallen, Delay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := n.Geocode(ctx, "Marktgasse 5")
	require.Error(t, err)
	assert.True(t, IsTimeoutError(err))
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestNominatimDelayBeforeEachCall(t *testing.T) {
	srv, _, _, calls := newNominatimServer(t, http.StatusOK, `[]`)

	n := NewNominatim(NominatimOptions{BaseURL: srv.URL, Area: StGallen, Delay: 30 * time.Millisecond})

	start := time.Now()
	_, _ = n.Geocode(context.Background(), "a")
	_, _ = n.Geocode(context.Background(), "b")

	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}
