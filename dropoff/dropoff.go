// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

// Package dropoff finds the collection points accepting a waste type,
// nearest first.
package dropoff

import (
	"math"
	"slices"
	"sort"

	"github.com/uber/h3-go/v4"
	"github.com/wastewise/wastewise/opendata"
	"github.com/wastewise/wastewise/spatial"
	"go.uber.org/zap"
)

// Result is a collection point with its distance to the query point.
type Result struct {
	opendata.CollectionPoint
	// DistanceKm is the unrounded great-circle distance.
	DistanceKm float64 `json:"distance_km"`
}

// RoundedDistance is DistanceKm rounded to two decimals, for display.
func (r Result) RoundedDistance() float64 {
	return math.Round(r.DistanceKm*100) / 100
}

// Find returns the points accepting wasteType, sorted by distance to user.
// Points without usable coordinates are skipped. Ties keep dataset order.
func Find(user spatial.Point, wasteType string, points []opendata.CollectionPoint) []Result {
	results := []Result{}

	for i := range points {
		if r, ok := match(user, wasteType, &points[i]); ok {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})

	return results
}

func match(user spatial.Point, wasteType string, p *opendata.CollectionPoint) (Result, bool) {
	if !p.Accepts(wasteType) {
		return Result{}, false
	}

	if p.Location == nil {
		zap.L().Warn("skipping collection point without coordinates", zap.String("name", p.Name))

		return Result{}, false
	}

	return Result{
		CollectionPoint: p.Clone(),
		DistanceKm:      spatial.Distance(user, *p.Location),
	}, true
}

const (
	// cellResolution is the H3 resolution of the index. Cells are roughly
	// 0.74 km² with 0.46 km edges.
	cellResolution = 8
	cellEdgeKm     = 0.4614
	maxRings       = 64
)

// Index is an immutable set of collection points bucketed by H3 cell for
// radius queries. It is safe for concurrent use.
type Index struct {
	points []opendata.CollectionPoint
	cells  map[h3.Cell][]int
}

// NewIndex builds an Index over a copy of points.
func NewIndex(points []opendata.CollectionPoint) *Index {
	ix := &Index{
		points: make([]opendata.CollectionPoint, len(points)),
		cells:  make(map[h3.Cell][]int),
	}

	for i, p := range points {
		ix.points[i] = p.Clone()

		if p.Location == nil {
			continue
		}

		cell, err := h3.LatLngToCell(h3.NewLatLng(p.Location.Lat, p.Location.Lon), cellResolution)
		if err != nil {
			zap.L().Warn("cannot index collection point", zap.String("name", p.Name), zap.Error(err))

			continue
		}

		ix.cells[cell] = append(ix.cells[cell], i)
	}

	return ix
}

// Len returns the number of points in the index.
func (ix *Index) Len() int {
	return len(ix.points)
}

// Find is Find over the indexed points.
func (ix *Index) Find(user spatial.Point, wasteType string) []Result {
	return Find(user, wasteType, ix.points)
}

// Within returns the points accepting wasteType no farther than radiusKm
// from user, nearest first.
func (ix *Index) Within(user spatial.Point, wasteType string, radiusKm float64) []Result {
	if radiusKm < 0 {
		return []Result{}
	}

	candidates, ok := ix.candidates(user, radiusKm)
	if !ok {
		candidates = make([]int, len(ix.points))
		for i := range candidates {
			candidates[i] = i
		}
	}

	results := []Result{}

	for _, i := range candidates {
		r, ok := match(user, wasteType, &ix.points[i])
		if ok && r.DistanceKm <= radiusKm {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})

	return results
}

// candidates returns the indexes of the points in the cells around user, in
// dataset order. It reports false when the disk would be too large to be
// worth it.
func (ix *Index) candidates(user spatial.Point, radiusKm float64) ([]int, bool) {
	rings := int(math.Ceil(radiusKm/cellEdgeKm)) + 1
	if rings > maxRings {
		return nil, false
	}

	origin, err := h3.LatLngToCell(h3.NewLatLng(user.Lat, user.Lon), cellResolution)
	if err != nil {
		return nil, false
	}

	disk, err := h3.GridDisk(origin, rings)
	if err != nil {
		return nil, false
	}

	var out []int
	for _, cell := range disk {
		out = append(out, ix.cells[cell]...)
	}

	slices.Sort(out)

	return out, true
}
