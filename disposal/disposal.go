// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

// Package disposal answers where and when a resident can get rid of a given
// waste type.
package disposal

import (
	"context"
	"strings"
	"time"

	"github.com/wastewise/wastewise/dropoff"
	"github.com/wastewise/wastewise/geocode"
	"github.com/wastewise/wastewise/opendata"
	"github.com/wastewise/wastewise/schedule"
	"github.com/wastewise/wastewise/spatial"
	"github.com/wastewise/wastewise/utils/textutils"
	"github.com/wastewise/wastewise/wastetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report is the outcome of one Resolve call.
type Report struct {
	// WasteType is the upstream code the lookup ran with.
	WasteType      string           `json:"waste_type"`
	Points         []dropoff.Result `json:"collection_points"`
	NextCollection *schedule.Pickup `json:"next_collection,omitempty"`
	HasDropOff     bool             `json:"has_drop_off"`
	HasPickup      bool             `json:"has_pickup"`
	Message        string           `json:"message"`
	Coordinate     *spatial.Point   `json:"coordinate,omitempty"`
	Street         string           `json:"street,omitempty"`
}

// Service composes geocoding, drop-off search and the collection calendar.
type Service struct {
	geocoder      geocode.Geocoder
	source        opendata.Source
	now           func() time.Time
	maxDistanceKm float64
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMaxDistance drops collection points farther than km. Zero keeps all.
func WithMaxDistance(km float64) Option {
	return func(s *Service) {
		s.maxDistanceKm = km
	}
}

// NewService creates a Service.
func NewService(geocoder geocode.Geocoder, source opendata.Source, opts ...Option) *Service {
	s := &Service{
		geocoder: geocoder,
		source:   source,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// StreetName derives the street from an address: the part before the first
// comma, without tokens starting with a digit. Addresses of fewer than two
// tokens are used as they are.
func StreetName(address string) string {
	address = strings.TrimSpace(address)

	head, _, _ := strings.Cut(address, ",")

	tokens := strings.Fields(head)
	if len(tokens) < 2 {
		return address
	}

	kept := tokens[:0]
	for _, tok := range tokens {
		if !textutils.IsNumeric(tok) {
			kept = append(kept, tok)
		}
	}

	if len(kept) == 0 {
		return address
	}

	return strings.Join(kept, " ")
}

// datasets fetches both datasets concurrently. A failed fetch yields an
// empty dataset.
func (s *Service) datasets(ctx context.Context) ([]opendata.CollectionPoint, []opendata.CollectionEvent) {
	var (
		points []opendata.CollectionPoint
		events []opendata.CollectionEvent
		g      errgroup.Group
	)

	g.Go(func() error {
		var err error
		if points, err = s.source.CollectionPoints(ctx); err != nil {
			zap.L().Error("collection points unavailable", zap.Error(err))

			points = nil
		}

		return nil
	})

	g.Go(func() error {
		var err error
		if events, err = s.source.CollectionEvents(ctx); err != nil {
			zap.L().Error("collection events unavailable", zap.Error(err))

			events = nil
		}

		return nil
	})

	_ = g.Wait()

	return points, events
}

// Resolve builds the disposal report for address and wasteType. wasteType
// may be written in any vocabulary wastetype.Parse understands; unknown
// values are used verbatim. Resolve never fails: problems end up in the
// message.
func (s *Service) Resolve(ctx context.Context, address, wasteType string) *Report {
	wasteType = wastetype.ToUpstream(strings.TrimSpace(wasteType))
	report := &Report{WasteType: wasteType, Points: []dropoff.Result{}}

	address = strings.TrimSpace(address)
	if address == "" {
		report.Message = "Please enter an address."

		return report
	}

	if wasteType == "" {
		report.Message = "Please select a waste type."

		return report
	}

	loc, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		zap.L().Info("geocoding failed", zap.String("address", address), zap.Error(err))

		report.Message = geocodeFailure(address, err)

		return report
	}

	points, events := s.datasets(ctx)

	report.Coordinate = &loc.Point
	report.Street = StreetName(address)

	if s.maxDistanceKm > 0 {
		report.Points = dropoff.NewIndex(points).Within(loc.Point, wasteType, s.maxDistanceKm)
	} else {
		report.Points = dropoff.Find(loc.Point, wasteType, points)
	}

	report.NextCollection = schedule.NextDate(report.Street, wasteType, events, s.now())
	report.HasDropOff = len(report.Points) > 0
	report.HasPickup = report.NextCollection != nil

	report.Message = scenario{
		wasteType: wasteType,
		street:    report.Street,
		points:    len(report.Points),
		pickup:    report.NextCollection,
		available: schedule.StreetWasteTypes(report.Street, events),
	}.message()

	zap.L().Info("disposal resolved",
		zap.String("street", report.Street),
		zap.String("waste_type", wasteType),
		zap.Int("points", len(report.Points)),
		zap.Bool("pickup", report.HasPickup))

	return report
}
