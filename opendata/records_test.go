// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package opendata

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastewise/wastewise/spatial"
)

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want StringList
	}{
		{"single string", `"Marktgasse"`, StringList{"Marktgasse"}},
		{"list", `["Marktgasse", " Spisergasse "]`, StringList{"Marktgasse", "Spisergasse"}},
		{"blank entries dropped", `["", "  ", "Webergasse"]`, StringList{"Webergasse"}},
		{"non strings dropped", `["Webergasse", 5, null]`, StringList{"Webergasse"}},
		{"null", `null`, nil},
		{"empty string", `""`, StringList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("StringList mismatch (-want +got):\n%s", diff)
			}
		})
	}

	var got StringList
	assert.Error(t, json.Unmarshal([]byte(`{}`), &got))
}

func TestCollectionPointDecoding(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want CollectionPoint
	}{
		{
			name: "complete",
			in: `{"standort": "Bahnhof Nord", "geo_point_2d": {"lat": 47.4245, "lon": 9.3767},
				"abfallarten": ["Glas", "Dosen"], "oeffnungsz": "Mo-Sa<br>7-20 Uhr"}`,
			want: CollectionPoint{
				Name:         "Bahnhof Nord",
				Location:     &spatial.Point{Lat: 47.4245, Lon: 9.3767},
				WasteTypes:   StringList{"Glas", "Dosen"},
				OpeningHours: "Mo-Sa 7-20 Uhr",
			},
		},
		{
			name: "string coordinates and single type",
			in:   `{"standort": "Olma", "geo_point_2d": {"lat": "47.4289", "lon": "9.3856"}, "abfallarten": "Altöl"}`,
			want: CollectionPoint{
				Name:         "Olma",
				Location:     &spatial.Point{Lat: 47.4289, Lon: 9.3856},
				WasteTypes:   StringList{"Altöl"},
				OpeningHours: NotAvailable,
			},
		},
		{
			name: "missing coordinates",
			in:   `{"standort": "Nowhere", "abfallarten": ["Glas"], "oeffnungsz": ""}`,
			want: CollectionPoint{Name: "Nowhere", WasteTypes: StringList{"Glas"}, OpeningHours: NotAvailable},
		},
		{
			name: "malformed coordinates",
			in:   `{"standort": "Broken", "geo_point_2d": {"lat": "n/a", "lon": 9.3}, "abfallarten": ["Glas"]}`,
			want: CollectionPoint{Name: "Broken", WasteTypes: StringList{"Glas"}, OpeningHours: NotAvailable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got CollectionPoint
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CollectionPoint mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollectionPointAccepts(t *testing.T) {
	p := CollectionPoint{WasteTypes: StringList{"Glas", "Dosen"}}

	assert.True(t, p.Accepts("glas"))
	assert.True(t, p.Accepts(" DOSEN "))
	assert.False(t, p.Accepts("Papier"))
	assert.False(t, p.Accepts(""))
}

func TestCollectionEventNormalize(t *testing.T) {
	var e CollectionEvent
	require.NoError(t, json.Unmarshal([]byte(`{"sammlung": "Papier", "strasse": "Marktgasse", "datum": "2025-06-03", "zeit": "ab 7.00 Uhr"}`), &e))
	e.normalize()

	assert.Equal(t, DefaultTitle, e.Title)
	assert.Equal(t, NotAvailable, e.Area)
	assert.Equal(t, StringList{"Marktgasse"}, e.Streets)
}

func TestCollectionEventDay(t *testing.T) {
	loc := time.UTC

	day, err := CollectionEvent{Date: "2025-06-03"}.Day(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, loc), day)

	day, err = CollectionEvent{Date: "2025-06-03T00:00:00+00:00"}.Day(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, loc), day)

	_, err = CollectionEvent{Date: "3. Juni"}.Day(loc)
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	p := CollectionPoint{Location: &spatial.Point{Lat: 1, Lon: 2}, WasteTypes: StringList{"Glas"}}
	c := p.Clone()
	c.Location.Lat = 5
	c.WasteTypes[0] = "Papier"

	assert.InDelta(t, 1.0, p.Location.Lat, 0)
	assert.Equal(t, "Glas", p.WasteTypes[0])

	e := CollectionEvent{Streets: StringList{"Marktgasse"}}
	ec := e.Clone()
	ec.Streets[0] = "Webergasse"
	assert.Equal(t, "Marktgasse", e.Streets[0])
}
