// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	// BaseURL is the St. Gallen open data portal.
	BaseURL = "https://daten.stadt.sg.ch"

	// PointsDataset holds the drop-off locations.
	PointsDataset = "sammelstellen"

	// EventsDataset holds the home collection calendar.
	EventsDataset = "abfuhrdaten-stadt-stgallen"

	// DefaultPageSize is the page size used for both datasets.
	DefaultPageSize = 100

	// maxRecords is the explore API's limit for offset+limit.
	maxRecords = 10000
)

// Source provides the two reference datasets.
type Source interface {
	CollectionPoints(ctx context.Context) ([]CollectionPoint, error)
	CollectionEvents(ctx context.Context) ([]CollectionEvent, error)
}

// ProgressFunc is called after every fetched page of events.
type ProgressFunc func(fetched, total int)

// Options configures a Client.
type Options struct {
	BaseURL       string
	PointsDataset string
	EventsDataset string
	PageSize      int
	// PointsLimit caps the drop-off dataset fetch.
	PointsLimit int
	// Year restricts events to one calendar year. Zero means the current one.
	Year int
	// PingTimeout bounds Ping, 10s by default.
	PingTimeout time.Duration
	Client      *http.Client
	Progress    ProgressFunc
	Now         func() time.Time
}

// Client reads the datasets over the Opendatasoft explore API.
type Client struct {
	options Options
	client  *http.Client
}

// NewClient creates a Client, filling unset options with defaults.
func NewClient(options Options) *Client {
	if options.BaseURL == "" {
		options.BaseURL = BaseURL
	}

	options.BaseURL = strings.TrimRight(options.BaseURL, "/")

	if options.PointsDataset == "" {
		options.PointsDataset = PointsDataset
	}

	if options.EventsDataset == "" {
		options.EventsDataset = EventsDataset
	}

	if options.PageSize <= 0 {
		options.PageSize = DefaultPageSize
	}

	if options.PointsLimit <= 0 {
		options.PointsLimit = DefaultPageSize
	}

	if options.PingTimeout <= 0 {
		options.PingTimeout = 10 * time.Second
	}

	if options.Now == nil {
		options.Now = time.Now
	}

	client := options.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{options: options, client: client}
}

// WithProgress returns a copy of c reporting event pagination to fn.
func (c *Client) WithProgress(fn ProgressFunc) *Client {
	clone := *c
	clone.options.Progress = fn

	return &clone
}

type recordsPage struct {
	TotalCount int               `json:"total_count"`
	Results    []json.RawMessage `json:"results"`
}

func (c *Client) recordsURL(dataset string, params url.Values) string {
	return fmt.Sprintf("%s/api/explore/v2.1/catalog/datasets/%s/records?%s",
		c.options.BaseURL, url.PathEscape(dataset), params.Encode())
}

func (c *Client) fetchPage(ctx context.Context, reqURL string) (*recordsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "building request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "requesting records")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		return nil, eris.Errorf("open data portal returned status %d", resp.StatusCode)
	}

	var page recordsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, eris.Wrap(err, "decoding records page")
	}

	return &page, nil
}

// CollectionPoints fetches the drop-off locations.
func (c *Client) CollectionPoints(ctx context.Context) ([]CollectionPoint, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.options.PointsLimit))

	page, err := c.fetchPage(ctx, c.recordsURL(c.options.PointsDataset, params))
	if err != nil {
		return nil, eris.Wrap(err, "fetching collection points")
	}

	points := decodeRecords[CollectionPoint](page.Results, c.options.PointsDataset)

	zap.L().Debug("fetched collection points",
		zap.Int("count", len(points)),
		zap.Int("total", page.TotalCount))

	return points, nil
}

func (c *Client) year() int {
	if c.options.Year != 0 {
		return c.options.Year
	}

	return c.options.Now().Year()
}

// CollectionEvents fetches the collection calendar of the configured year,
// following pagination until the reported total, an empty page or a short
// page.
func (c *Client) CollectionEvents(ctx context.Context) ([]CollectionEvent, error) {
	var (
		events  []CollectionEvent
		fetched int
	)

	refine := fmt.Sprintf("datum:%q", strconv.Itoa(c.year()))

	for offset := 0; offset < maxRecords; offset += c.options.PageSize {
		limit := min(c.options.PageSize, maxRecords-offset)

		params := url.Values{}
		params.Set("limit", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("refine", refine)

		page, err := c.fetchPage(ctx, c.recordsURL(c.options.EventsDataset, params))
		if err != nil {
			return nil, eris.Wrapf(err, "fetching collection events at offset %d", offset)
		}

		if len(page.Results) == 0 {
			break
		}

		fetched += len(page.Results)

		batch := decodeRecords[CollectionEvent](page.Results, c.options.EventsDataset)
		for i := range batch {
			batch[i].normalize()
		}

		events = append(events, batch...)

		if c.options.Progress != nil {
			c.options.Progress(fetched, page.TotalCount)
		}

		if fetched >= page.TotalCount || len(page.Results) < limit {
			break
		}
	}

	zap.L().Debug("fetched collection events", zap.Int("count", len(events)), zap.Int("year", c.year()))

	return events, nil
}

// Ping checks that the portal answers.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.options.PingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.options.BaseURL, nil)
	if err != nil {
		return eris.Wrap(err, "building ping request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "open data portal unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("open data portal returned status %d", resp.StatusCode)
	}

	return nil
}

// decodeRecords decodes each record on its own, so that one malformed
// record is skipped instead of losing the page.
func decodeRecords[T any](raw []json.RawMessage, dataset string) []T {
	out := make([]T, 0, len(raw))

	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			zap.L().Warn("skipping malformed record",
				zap.String("dataset", dataset),
				zap.Int("index", i),
				zap.Error(err))

			continue
		}

		out = append(out, v)
	}

	return out
}
