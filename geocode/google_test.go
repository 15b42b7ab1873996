// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestGoogle(t *testing.T, body string) (*Google, *string) {
	t.Helper()

	var address string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address = r.URL.Query().Get("address")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return NewGoogle(GoogleOptions{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Area:    StGallen,
		Limiter: rate.NewLimiter(rate.Inf, 1),
	}), &address
}

func TestGoogleGeocode(t *testing.T) {
	g, address := newTestGoogle(t, `{
		"status": "OK",
		"results": [{
			"geometry": {"location": {"lat": 47.4245, "lng": 9.3767}, "location_type": "ROOFTOP"},
			"formatted_address": "Marktgasse 5, 9000 Sankt Gallen, Switzerland",
			"address_components": [{"long_name": "Sankt Gallen", "short_name": "St. Gallen"}]
		}]
	}`)

	result, err := g.Geocode(context.Background(), "Marktgasse 5")
	require.NoError(t, err)
	assert.InDelta(t, 47.4245, result.Point.Lat, 1e-9)
	assert.Equal(t, "google_maps", result.Provider)
	assert.Equal(t, "Marktgasse 5, St. Gallen, Switzerland", *address)
}

func TestGoogleGeocodeStatuses(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(error) bool
	}{
		{"zero results", `{"status": "ZERO_RESULTS", "results": []}`, IsNotFound},
		{"over limit", `{"status": "OVER_QUERY_LIMIT", "results": []}`, IsQuotaExceededError},
		{"outside", `{"status": "OK", "results": [{"geometry": {"location": {"lat": 47.37, "lng": 8.54}}, "formatted_address": "Zürich"}]}`, IsOutOfCoverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGoogle(t, tt.body)

			_, err := g.Geocode(context.Background(), "Marktgasse 5")
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
		})
	}
}

func TestGoogleGeocodeWithoutKey(t *testing.T) {
	_, err := NewGoogle(GoogleOptions{Area: StGallen}).Geocode(context.Background(), "Marktgasse 5")
	require.Error(t, err)
	assert.True(t, IsQuotaExceededError(err))
}
