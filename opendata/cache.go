// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package opendata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCacheTTL is how long a dataset stays cached.
	DefaultCacheTTL = time.Hour

	// fetchTimeout bounds a shared fetch, which outlives any single caller.
	fetchTimeout = 2 * time.Minute

	pointsKey = "points"
	eventsKey = "events"
)

// CachedSource keeps encoded datasets in redis and collapses concurrent
// fetches of the same dataset. Every caller decodes its own copy, so
// results never share memory.
type CachedSource struct {
	source Source
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	group  singleflight.Group
}

// NewCachedSource wraps source with a redis cache.
func NewCachedSource(source Source, rdb *redis.Client, ttl time.Duration, prefix string) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	if prefix == "" {
		prefix = "wastewise:opendata:"
	}

	return &CachedSource{source: source, rdb: rdb, ttl: ttl, prefix: prefix}
}

// CollectionPoints implements Source.
func (c *CachedSource) CollectionPoints(ctx context.Context) ([]CollectionPoint, error) {
	data, err := c.load(ctx, pointsKey, func(ctx context.Context) (any, error) {
		return c.source.CollectionPoints(ctx)
	})
	if err != nil {
		return nil, err
	}

	var points []CollectionPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, eris.Wrap(err, "decoding cached collection points")
	}

	return points, nil
}

// CollectionEvents implements Source.
func (c *CachedSource) CollectionEvents(ctx context.Context) ([]CollectionEvent, error) {
	data, err := c.load(ctx, eventsKey, func(ctx context.Context) (any, error) {
		return c.source.CollectionEvents(ctx)
	})
	if err != nil {
		return nil, err
	}

	var events []CollectionEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, eris.Wrap(err, "decoding cached collection events")
	}

	return events, nil
}

// Invalidate drops both cached datasets.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, c.prefix+pointsKey, c.prefix+eventsKey).Err(); err != nil {
		return eris.Wrap(err, "invalidating dataset cache")
	}

	return nil
}

func (c *CachedSource) load(ctx context.Context, name string, fetch func(context.Context) (any, error)) ([]byte, error) {
	key := c.prefix + name

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		zap.L().Debug("dataset cache hit", zap.String("key", key))

		return data, nil
	}

	if !errors.Is(err, redis.Nil) {
		zap.L().Warn("dataset cache unavailable", zap.String("key", key), zap.Error(err))
	}

	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		records, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		encoded, err := json.Marshal(records)
		if err != nil {
			return nil, eris.Wrap(err, "encoding dataset")
		}

		if err := c.rdb.Set(fetchCtx, key, encoded, c.ttl).Err(); err != nil {
			zap.L().Warn("storing dataset in cache", zap.String("key", key), zap.Error(err))
		}

		return encoded, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "waiting for dataset")
	}

	if res.Err != nil {
		return nil, res.Err
	}

	zap.L().Debug("dataset fetched", zap.String("key", key), zap.Bool("shared", res.Shared))

	return res.Val.([]byte), nil
}
