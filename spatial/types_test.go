// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	station   = Point{Lat: 47.4232, Lon: 9.3699}
	cathedral = Point{Lat: 47.4233, Lon: 9.3770}
	olma      = Point{Lat: 47.4289, Lon: 9.3856}
)

func TestDistanceZero(t *testing.T) {
	for _, p := range []Point{station, cathedral, olma, {}} {
		assert.InDelta(t, 0.0, Distance(p, p), 1e-12)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]Point{
		{station, cathedral},
		{cathedral, olma},
		{station, olma},
		{{Lat: 47.36, Lon: 9.30}, {Lat: 47.48, Lon: 9.45}},
	}

	for _, pair := range pairs {
		assert.InDelta(t, Distance(pair[0], pair[1]), Distance(pair[1], pair[0]), 1e-9)
	}
}

func TestDistanceTriangle(t *testing.T) {
	ab := Distance(station, cathedral)
	bc := Distance(cathedral, olma)
	ac := Distance(station, olma)

	assert.LessOrEqual(t, ac, ab+bc+1e-9)
	assert.LessOrEqual(t, ab, ac+bc+1e-9)
	assert.LessOrEqual(t, bc, ab+ac+1e-9)

	// station and cathedral are roughly half a kilometer apart
	assert.InDelta(t, 0.53, ab, 0.05)
}

func TestDistanceKnownValue(t *testing.T) {
	// one degree of latitude along a meridian
	d := Distance(Point{Lat: 0, Lon: 0}, Point{Lat: 1, Lon: 0})
	assert.InDelta(t, EarthRadiusKm*math.Pi/180, d, 1e-9)
}

func TestBoundingBoxContains(t *testing.T) {
	box := BoundingBox{MinLat: 47.36, MaxLat: 47.48, MinLon: 9.30, MaxLon: 9.45}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", station, true},
		{"south-west corner", Point{Lat: 47.36, Lon: 9.30}, true},
		{"north-east corner", Point{Lat: 47.48, Lon: 9.45}, true},
		{"too far north", Point{Lat: 47.50, Lon: 9.37}, false},
		{"too far east", Point{Lat: 47.42, Lon: 9.50}, false},
		{"zurich", Point{Lat: 47.3769, Lon: 8.5417}, false},
		{"nan", Point{Lat: math.NaN(), Lon: 9.37}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, box.Contains(tt.p))
		})
	}
}

func TestPointString(t *testing.T) {
	assert.Equal(t, "POINT(9.369900 47.423200)", station.String())
}
