// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

// Package opendata reads the collection point and collection calendar
// datasets of the St. Gallen open data portal.
package opendata

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/wastewise/wastewise/spatial"
	"github.com/wastewise/wastewise/utils/htmlutils"
)

const (
	// NotAvailable fills missing free text fields.
	NotAvailable = "N/A"

	// DefaultTitle is used for events without a title.
	DefaultTitle = "Collection"

	// DateLayout is the layout of the event date field.
	DateLayout = "2006-01-02"
)

// StringList is a field published either as a single string or as a list
// of strings. It always decodes to a list of trimmed, non-empty values.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil

		return nil
	}

	var values []string

	if data[0] == '[' {
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return eris.Wrap(err, "decoding string list")
		}

		for _, v := range raw {
			if s, ok := v.(string); ok {
				values = append(values, s)
			}
		}
	} else {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "decoding string list")
		}

		values = []string{s}
	}

	out := make(StringList, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	*l = out

	return nil
}

// CollectionPoint is a drop-off location.
type CollectionPoint struct {
	Name string `json:"standort"`
	// Location is nil when the record has no usable coordinates.
	Location     *spatial.Point `json:"geo_point_2d,omitempty"`
	WasteTypes   StringList     `json:"abfallarten"`
	OpeningHours string         `json:"oeffnungsz"`
}

// Accepts reports whether the point takes wasteType, compared
// case-insensitively.
func (p CollectionPoint) Accepts(wasteType string) bool {
	wasteType = strings.TrimSpace(wasteType)
	for _, t := range p.WasteTypes {
		if strings.EqualFold(t, wasteType) {
			return true
		}
	}

	return false
}

// UnmarshalJSON implements json.Unmarshaler. Malformed coordinates leave
// Location nil instead of failing the record.
func (p *CollectionPoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name         string          `json:"standort"`
		Location     json.RawMessage `json:"geo_point_2d"`
		WasteTypes   StringList      `json:"abfallarten"`
		OpeningHours *string         `json:"oeffnungsz"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "decoding collection point")
	}

	*p = CollectionPoint{
		Name:         strings.TrimSpace(raw.Name),
		Location:     parseLocation(raw.Location),
		WasteTypes:   raw.WasteTypes,
		OpeningHours: NotAvailable,
	}

	if raw.OpeningHours != nil {
		if hours := htmlutils.PlainText(*raw.OpeningHours); hours != "" {
			p.OpeningHours = hours
		}
	}

	return nil
}

func parseLocation(data json.RawMessage) *spatial.Point {
	if len(data) == 0 {
		return nil
	}

	var raw struct {
		Lat any `json:"lat"`
		Lon any `json:"lon"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	lat, ok := toFloat(raw.Lat)
	if !ok {
		return nil
	}

	lon, ok := toFloat(raw.Lon)
	if !ok {
		return nil
	}

	p := spatial.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return nil
	}

	return &p
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)

		return f, err == nil
	default:
		return 0, false
	}
}

// CollectionEvent is one scheduled home collection.
type CollectionEvent struct {
	WasteType  string     `json:"sammlung"`
	Streets    StringList `json:"strasse"`
	Date       string     `json:"datum"`
	TimeWindow string     `json:"zeit"`
	Title      string     `json:"titel"`
	Area       string     `json:"gebietsbezeichnung"`
}

func (e *CollectionEvent) normalize() {
	e.WasteType = strings.TrimSpace(e.WasteType)
	e.Date = strings.TrimSpace(e.Date)
	e.TimeWindow = strings.TrimSpace(e.TimeWindow)

	if e.Title = strings.TrimSpace(e.Title); e.Title == "" {
		e.Title = DefaultTitle
	}

	if e.Area = strings.TrimSpace(e.Area); e.Area == "" {
		e.Area = NotAvailable
	}
}

// Day parses the event date, at midnight in loc.
func (e CollectionEvent) Day(loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, e.Date, loc); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, e.Date)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "invalid collection date %q", e.Date)
	}

	t = t.In(loc)

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// Clone returns a deep copy of the event.
func (e CollectionEvent) Clone() CollectionEvent {
	e.Streets = append(StringList(nil), e.Streets...)

	return e
}

// Clone returns a deep copy of the point.
func (p CollectionPoint) Clone() CollectionPoint {
	p.WasteTypes = append(StringList(nil), p.WasteTypes...)
	if p.Location != nil {
		loc := *p.Location
		p.Location = &loc
	}

	return p
}
