// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/wastewise/wastewise/classify"
	"github.com/wastewise/wastewise/disposal"
	"github.com/wastewise/wastewise/geocode"
	"github.com/wastewise/wastewise/opendata"
	"github.com/wastewise/wastewise/utils/httputils"
	"go.uber.org/zap"
)

func httpClient(timeout time.Duration, acceptLanguage string) *http.Client {
	options := httputils.ClientOptions{
		UserAgent:      userAgent(),
		AcceptLanguage: acceptLanguage,
		Timeout:        timeout,
	}

	if cfg.HTTP.Trace {
		options.Trace = os.Stderr
		options.TraceBody = cfg.HTTP.TraceBody
	}

	return httputils.NewClient(options)
}

func newGeocoder(ctx context.Context) (geocode.Geocoder, error) {
	gc := cfg.Geocoder
	client := httpClient(gc.Timeout, gc.AcceptLanguage)

	if gc.Provider != "google" {
		return geocode.NewNominatim(geocode.NominatimOptions{
			BaseURL: gc.BaseURL,
			Area:    cfg.Area(),
			Delay:   gc.Delay,
			Client:  client,
		}), nil
	}

	apiKey := gc.Google.APIKey
	if apiKey == "" {
		zap.L().Info("geocoder.google.api_key is not set, retrieving it via ADC")

		var err error

		apiKey, err = geocode.APIKeyFromADC(ctx, gc.Google.Project, gc.Google.KeyDisplayName)
		if err != nil {
			return nil, eris.Wrap(err, "google geocoding needs an api key")
		}
	}

	return geocode.NewGoogle(geocode.GoogleOptions{
		BaseURL: gc.BaseURL,
		APIKey:  apiKey,
		Area:    cfg.Area(),
		Region:  gc.Google.Region,
		Client:  client,
	}), nil
}

// portal returns the live open data client.
func portal(progress opendata.ProgressFunc) *opendata.Client {
	od := cfg.OpenData

	return opendata.NewClient(opendata.Options{
		BaseURL:       od.BaseURL,
		PointsDataset: od.PointsDataset,
		EventsDataset: od.EventsDataset,
		PageSize:      od.PageSize,
		PointsLimit:   od.PointsLimit,
		Year:          od.Year,
		PingTimeout:   od.PingTimeout,
		Client:        httpClient(od.Timeout, ""),
		Progress:      progress,
	})
}

// newSource returns the configured dataset source and a function releasing
// its resources.
func newSource(progress opendata.ProgressFunc) (opendata.Source, func(), error) {
	od := cfg.OpenData

	var source opendata.Source = portal(progress)
	if od.Offline() {
		zap.L().Info("using offline open data snapshots",
			zap.String("points", od.PointsFile), zap.String("events", od.EventsFile))

		source = opendata.FileSource{PointsPath: od.PointsFile, EventsPath: od.EventsFile}
	}

	if cfg.Cache.RedisURL == "" {
		return source, func() {}, nil
	}

	opt, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		return nil, nil, eris.Wrap(err, "parsing cache.redis_url")
	}

	rdb := redis.NewClient(opt)
	cached := opendata.NewCachedSource(source, rdb, cfg.Cache.TTL, cfg.Cache.Prefix)

	return cached, func() { _ = rdb.Close() }, nil
}

func newDisposalService(ctx context.Context) (*disposal.Service, func(), error) {
	geocoder, err := newGeocoder(ctx)
	if err != nil {
		return nil, nil, err
	}

	source, closeFn, err := newSource(nil)
	if err != nil {
		return nil, nil, err
	}

	return disposal.NewService(geocoder, source, disposal.WithMaxDistance(cfg.Disposal.MaxDistanceKm)), closeFn, nil
}

// loadTextModel returns nil when no model is configured or it cannot be
// loaded, leaving the keyword heuristic in charge.
func loadTextModel() *classify.TextModel {
	if cfg.Models.TextDir == "" {
		return nil
	}

	model, err := classify.LoadTextModel(cfg.Models.TextDir)
	if err != nil {
		zap.L().Warn("text model not loaded", zap.String("dir", cfg.Models.TextDir), zap.Error(err))

		return nil
	}

	return model
}

// imageModel returns the serving model and its class labels, or nil when
// none is configured.
func imageModel() (classify.ImageModel, []string) {
	classes := cfg.Models.ImageClasses
	if len(classes) == 0 {
		classes = classify.ImageClassNames()
	}

	if cfg.Models.ImageURL == "" {
		return nil, classes
	}

	return classify.NewServingModel(cfg.Models.ImageURL, cfg.Models.ImageName, httpClient(cfg.Models.Timeout, "")), classes
}
