// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves free text addresses to coordinates inside a
// fixed service area.
package geocode

import (
	"context"
	"strings"

	"github.com/wastewise/wastewise/spatial"
)

// Result represents an accepted geocoding candidate.
type Result struct {
	Point       spatial.Point
	DisplayName string
	Provider    string
}

// Geocoder resolves an address to a point inside the service area.
//
// Failures are *GeocodingError values: ErrorTypeNotFound when nothing usable
// came back, ErrorTypeOutOfCoverage when every candidate fell outside the
// area, and the transport kinds otherwise.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Area describes the service area a geocoder is constrained to.
type Area struct {
	// Bounds every accepted point must fall in.
	Bounds spatial.BoundingBox
	// Token must appear in the display name or one address component.
	Token string
	// Suffix is appended to queries that do not mention the area.
	Suffix string
	// Aliases of the area name, matched case-insensitively with and
	// without spaces.
	Aliases []string
}

// StGallen is the city of St. Gallen, Switzerland.
var StGallen = Area{
	Bounds: spatial.BoundingBox{MinLat: 47.36, MaxLat: 47.48, MinLon: 9.30, MaxLon: 9.45},
	Token:  "gallen",
	Suffix: ", St. Gallen, Switzerland",
	Aliases: []string{
		"st. gallen",
	},
}

func removeSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Query returns the search string sent to the provider: the address with
// the area suffix appended unless the address already names the area.
func (a Area) Query(address string) string {
	address = strings.TrimSpace(address)
	lower := strings.ToLower(address)
	compact := removeSpaces(lower)

	for _, alias := range a.Aliases {
		alias = strings.ToLower(alias)
		if strings.Contains(lower, alias) || strings.Contains(compact, removeSpaces(alias)) {
			return address
		}
	}

	return address + a.Suffix
}

// candidate is a provider-neutral view of one geocoding hit.
type candidate struct {
	Point       spatial.Point
	DisplayName string
	Components  []string
}

// mentionsToken reports whether the display name or any address component
// contains the area token.
func (a Area) mentionsToken(c candidate) bool {
	token := strings.ToLower(a.Token)
	if token == "" {
		return true
	}

	if strings.Contains(strings.ToLower(c.DisplayName), token) {
		return true
	}

	for _, v := range c.Components {
		if strings.Contains(strings.ToLower(v), token) {
			return true
		}
	}

	return false
}

// accepts reports whether c lies in the bounds and mentions the area token.
func (a Area) accepts(c candidate) bool {
	return a.Bounds.Contains(c.Point) && a.mentionsToken(c)
}

// pick returns the first accepted candidate, or the error describing why
// none was. total is the number of hits before coordinate validation.
func (a Area) pick(address string, total int, candidates []candidate) (*candidate, error) {
	if total == 0 {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: "no results for address: " + address,
		}
	}

	if len(candidates) == 0 {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: "no result with valid coordinates for address: " + address,
		}
	}

	for i := range candidates {
		if a.accepts(candidates[i]) {
			return &candidates[i], nil
		}
	}

	return nil, &GeocodingError{
		Type:    ErrorTypeOutOfCoverage,
		Message: "address is outside the service area: " + address,
	}
}
