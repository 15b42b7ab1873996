// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package opendata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastewise/wastewise/spatial"
)

type countingSource struct {
	pointCalls atomic.Int32
	eventCalls atomic.Int32
	delay      time.Duration
	err        error
}

func (s *countingSource) CollectionPoints(context.Context) ([]CollectionPoint, error) {
	s.pointCalls.Add(1)
	time.Sleep(s.delay)

	if s.err != nil {
		return nil, s.err
	}

	return []CollectionPoint{{
		Name:         "Bahnhof Nord",
		Location:     &spatial.Point{Lat: 47.4245, Lon: 9.3767},
		WasteTypes:   StringList{"Glas"},
		OpeningHours: NotAvailable,
	}}, nil
}

func (s *countingSource) CollectionEvents(context.Context) ([]CollectionEvent, error) {
	s.eventCalls.Add(1)

	if s.err != nil {
		return nil, s.err
	}

	return []CollectionEvent{{
		WasteType: "Papier", Streets: StringList{"Marktgasse"}, Date: "2025-06-03",
		Title: DefaultTitle, Area: NotAvailable,
	}}, nil
}

// slowSource holds each fetch open until release is closed or its
// context ends.
type slowSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (s *slowSource) CollectionPoints(ctx context.Context) ([]CollectionPoint, error) {
	if s.calls.Add(1) == 1 {
		close(s.started)
	}

	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return []CollectionPoint{{Name: "Bahnhof Nord", WasteTypes: StringList{"Glas"}}}, nil
}

func (s *slowSource) CollectionEvents(context.Context) ([]CollectionEvent, error) {
	return nil, nil
}

func newTestCache(t *testing.T, src Source) (*CachedSource, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewCachedSource(src, rdb, time.Minute, "test:"), mr
}

func TestCachedSourceHit(t *testing.T) {
	src := &countingSource{}
	cache, mr := newTestCache(t, src)
	ctx := context.Background()

	first, err := cache.CollectionPoints(ctx)
	require.NoError(t, err)

	second, err := cache.CollectionPoints(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), src.pointCalls.Load())
	assert.True(t, mr.Exists("test:points"))
	assert.Equal(t, time.Minute, mr.TTL("test:points"))

	events, err := cache.CollectionEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, StringList{"Marktgasse"}, events[0].Streets)

	_, err = cache.CollectionEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.eventCalls.Load())
}

func TestCachedSourceReturnsCopies(t *testing.T) {
	cache, _ := newTestCache(t, &countingSource{})
	ctx := context.Background()

	first, err := cache.CollectionPoints(ctx)
	require.NoError(t, err)

	first[0].WasteTypes[0] = "Papier"
	first[0].Location.Lat = 0

	second, err := cache.CollectionPoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Glas", second[0].WasteTypes[0])
	assert.InDelta(t, 47.4245, second[0].Location.Lat, 1e-9)
}

func TestCachedSourceCollapsesConcurrentFetches(t *testing.T) {
	src := &countingSource{delay: 50 * time.Millisecond}
	cache, _ := newTestCache(t, src)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			points, err := cache.CollectionPoints(context.Background())
			assert.NoError(t, err)
			assert.Len(t, points, 1)
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), src.pointCalls.Load())
}

func TestCachedSourceCanceledCallerDoesNotFailOthers(t *testing.T) {
	src := &slowSource{started: make(chan struct{}), release: make(chan struct{})}
	cache, mr := newTestCache(t, src)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	errA := make(chan error, 1)
	go func() {
		_, err := cache.CollectionPoints(ctxA)
		errA <- err
	}()

	<-src.started

	type result struct {
		points []CollectionPoint
		err    error
	}

	resB := make(chan result, 1)
	go func() {
		points, err := cache.CollectionPoints(context.Background())
		resB <- result{points, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelA()

	select {
	case err := <-errA:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("canceled caller did not return")
	}

	close(src.release)

	select {
	case res := <-resB:
		require.NoError(t, res.err)
		require.Len(t, res.points, 1)
		assert.Equal(t, "Bahnhof Nord", res.points[0].Name)
	case <-time.After(time.Second):
		t.Fatal("waiting caller did not return")
	}

	assert.Equal(t, int32(1), src.calls.Load())
	assert.True(t, mr.Exists("test:points"))
}

func TestCachedSourceErrorsAreNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("portal down")}
	cache, mr := newTestCache(t, src)
	ctx := context.Background()

	_, err := cache.CollectionEvents(ctx)
	require.Error(t, err)
	assert.False(t, mr.Exists("test:events"))

	src.err = nil

	events, err := cache.CollectionEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestCachedSourceRedisDown(t *testing.T) {
	src := &countingSource{}
	cache, mr := newTestCache(t, src)
	mr.Close()

	points, err := cache.CollectionPoints(context.Background())
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestCachedSourceInvalidate(t *testing.T) {
	src := &countingSource{}
	cache, mr := newTestCache(t, src)
	ctx := context.Background()

	_, err := cache.CollectionPoints(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists("test:points"))

	_, err = cache.CollectionPoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.pointCalls.Load())
}
