// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package opendata

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// FileSource reads dataset snapshots exported from the portal, either the
// records API payload or a bare JSON array of records.
type FileSource struct {
	PointsPath string
	EventsPath string
}

// CollectionPoints implements Source.
func (f FileSource) CollectionPoints(ctx context.Context) ([]CollectionPoint, error) {
	raw, err := readSnapshot(ctx, f.PointsPath)
	if err != nil {
		return nil, eris.Wrap(err, "loading collection points")
	}

	return decodeRecords[CollectionPoint](raw, f.PointsPath), nil
}

// CollectionEvents implements Source.
func (f FileSource) CollectionEvents(ctx context.Context) ([]CollectionEvent, error) {
	raw, err := readSnapshot(ctx, f.EventsPath)
	if err != nil {
		return nil, eris.Wrap(err, "loading collection events")
	}

	events := decodeRecords[CollectionEvent](raw, f.EventsPath)
	for i := range events {
		events[i].normalize()
	}

	return events, nil
}

func readSnapshot(ctx context.Context, path string) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if path == "" {
		return nil, eris.New("no snapshot file configured")
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return nil, eris.Wrap(err, "reading snapshot file")
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, eris.Wrap(err, "parsing snapshot")
		}

		return records, nil
	}

	var page recordsPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, eris.Wrap(err, "parsing snapshot")
	}

	return page.Results, nil
}
