// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the wastewise configuration from defaults, an
// optional YAML file, a .env file and WASTEWISE_ environment variables.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"github.com/wastewise/wastewise/geocode"
	"github.com/wastewise/wastewise/opendata"
	"github.com/wastewise/wastewise/spatial"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g. WASTEWISE_LOG_LEVEL.
const EnvPrefix = "WASTEWISE"

// Config holds the full application configuration.
type Config struct {
	Log      LogConfig           `yaml:"log" mapstructure:"log"`
	HTTP     HTTPConfig          `yaml:"http" mapstructure:"http"`
	Geocoder GeocoderConfig      `yaml:"geocoder" mapstructure:"geocoder"`
	Bounds   spatial.BoundingBox `yaml:"bounds" mapstructure:"bounds"`
	OpenData OpenDataConfig      `yaml:"opendata" mapstructure:"opendata"`
	Cache    CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Disposal DisposalConfig      `yaml:"disposal" mapstructure:"disposal"`
	Models   ModelsConfig        `yaml:"models" mapstructure:"models"`
	Server   ServerConfig        `yaml:"server" mapstructure:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// HTTPConfig configures the outbound HTTP clients.
type HTTPConfig struct {
	// Trace dumps every outbound request and response to stderr.
	Trace     bool   `yaml:"trace" mapstructure:"trace"`
	TraceBody bool   `yaml:"trace_body" mapstructure:"trace_body"`
	// UserAgent defaults to wastewise/<version>.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// GeocoderConfig configures address lookup.
type GeocoderConfig struct {
	// Provider is "nominatim" or "google".
	Provider       string        `yaml:"provider" mapstructure:"provider"`
	// BaseURL overrides the provider endpoint.
	BaseURL        string        `yaml:"base_url" mapstructure:"base_url"`
	AcceptLanguage string        `yaml:"accept_language" mapstructure:"accept_language"`
	Delay          time.Duration `yaml:"delay" mapstructure:"delay"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CitySuffix     string        `yaml:"city_suffix" mapstructure:"city_suffix"`
	CityToken      string        `yaml:"city_token" mapstructure:"city_token"`
	CityAliases    []string      `yaml:"city_aliases" mapstructure:"city_aliases"`
	Google         GoogleConfig  `yaml:"google" mapstructure:"google"`
}

// GoogleConfig holds Google Maps settings. Without an API key one is looked
// up through Application Default Credentials.
type GoogleConfig struct {
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	Project        string `yaml:"project" mapstructure:"project"`
	KeyDisplayName string `yaml:"key_display_name" mapstructure:"key_display_name"`
	Region         string `yaml:"region" mapstructure:"region"`
}

// OpenDataConfig configures the open data portal access.
type OpenDataConfig struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	PointsDataset string        `yaml:"points_dataset" mapstructure:"points_dataset"`
	EventsDataset string        `yaml:"events_dataset" mapstructure:"events_dataset"`
	PageSize      int           `yaml:"page_size" mapstructure:"page_size"`
	PointsLimit   int           `yaml:"points_limit" mapstructure:"points_limit"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	PingTimeout   time.Duration `yaml:"ping_timeout" mapstructure:"ping_timeout"`
	Year          int           `yaml:"year" mapstructure:"year"`
	// PointsFile and EventsFile switch to offline snapshots when both are set.
	PointsFile string `yaml:"points_file" mapstructure:"points_file"`
	EventsFile string `yaml:"events_file" mapstructure:"events_file"`
}

// Offline reports whether snapshots replace the live portal.
func (c OpenDataConfig) Offline() bool {
	return c.PointsFile != "" && c.EventsFile != ""
}

// CacheConfig configures the redis dataset cache. An empty URL disables it.
type CacheConfig struct {
	RedisURL string        `yaml:"redis_url" mapstructure:"redis_url"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
}

// DisposalConfig configures the disposal lookup.
type DisposalConfig struct {
	// MaxDistanceKm drops collection points farther away. Zero keeps all.
	MaxDistanceKm float64 `yaml:"max_distance_km" mapstructure:"max_distance_km"`
}

// ModelsConfig locates the classification models.
type ModelsConfig struct {
	// TextDir holds vectorizer.json, classifier.json and encoder.json.
	TextDir string `yaml:"text_dir" mapstructure:"text_dir"`
	// ImageURL is a TensorFlow Serving REST endpoint. Empty disables the
	// image model.
	ImageURL  string `yaml:"image_url" mapstructure:"image_url"`
	ImageName string `yaml:"image_name" mapstructure:"image_name"`
	// ImageClasses overrides the model's output labels.
	ImageClasses []string      `yaml:"image_classes" mapstructure:"image_classes"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string   `yaml:"addr" mapstructure:"addr"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// Area returns the geocoding service area described by the configuration.
func (c *Config) Area() geocode.Area {
	return geocode.Area{
		Bounds:  c.Bounds,
		Token:   c.Geocoder.CityToken,
		Suffix:  c.Geocoder.CitySuffix,
		Aliases: c.Geocoder.CityAliases,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("http.trace", false)
	v.SetDefault("http.trace_body", false)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("geocoder.provider", "nominatim")
	v.SetDefault("geocoder.base_url", "")
	v.SetDefault("geocoder.accept_language", "de,en")
	v.SetDefault("geocoder.delay", geocode.DefaultDelay)
	v.SetDefault("geocoder.timeout", 30*time.Second)
	v.SetDefault("geocoder.city_suffix", geocode.StGallen.Suffix)
	v.SetDefault("geocoder.city_token", geocode.StGallen.Token)
	v.SetDefault("geocoder.city_aliases", geocode.StGallen.Aliases)
	v.SetDefault("geocoder.google.key_display_name", geocode.DefaultKeyDisplayName)
	v.SetDefault("geocoder.google.region", "ch")
	v.SetDefault("bounds.min_lat", geocode.StGallen.Bounds.MinLat)
	v.SetDefault("bounds.max_lat", geocode.StGallen.Bounds.MaxLat)
	v.SetDefault("bounds.min_lon", geocode.StGallen.Bounds.MinLon)
	v.SetDefault("bounds.max_lon", geocode.StGallen.Bounds.MaxLon)
	v.SetDefault("opendata.base_url", opendata.BaseURL)
	v.SetDefault("opendata.points_dataset", opendata.PointsDataset)
	v.SetDefault("opendata.events_dataset", opendata.EventsDataset)
	v.SetDefault("opendata.page_size", opendata.DefaultPageSize)
	v.SetDefault("opendata.points_limit", opendata.DefaultPageSize)
	v.SetDefault("opendata.timeout", 30*time.Second)
	v.SetDefault("opendata.ping_timeout", 10*time.Second)
	v.SetDefault("opendata.year", 0)
	v.SetDefault("opendata.points_file", "")
	v.SetDefault("opendata.events_file", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.prefix", "wastewise:opendata:")
	v.SetDefault("disposal.max_distance_km", 0.0)
	v.SetDefault("models.text_dir", "")
	v.SetDefault("models.image_url", "")
	v.SetDefault("models.image_name", "waste")
	v.SetDefault("models.image_classes", []string{})
	v.SetDefault("models.timeout", 30*time.Second)
	v.SetDefault("server.addr", "localhost:8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:8501"})
}

// New returns a viper instance with defaults and environment bindings but
// no file read yet, so callers can bind flags before Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetConfigName("wastewise")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return v
}

// Load reads .env, the optional config file and the environment into a
// Config. file overrides the default wastewise.yaml lookup.
func Load(v *viper.Viper, file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	if file != "" {
		v.SetConfigFile(file)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Geocoder.Provider {
	case "nominatim", "google":
	default:
		return eris.Errorf("config: unknown geocoder provider %q", c.Geocoder.Provider)
	}

	if c.Geocoder.Provider == "nominatim" && c.Geocoder.Delay < geocode.DefaultDelay {
		return eris.Errorf("config: geocoder.delay %s is below the %s nominatim minimum",
			c.Geocoder.Delay, geocode.DefaultDelay)
	}

	if c.Bounds.MinLat >= c.Bounds.MaxLat || c.Bounds.MinLon >= c.Bounds.MaxLon {
		return eris.Errorf("config: empty bounds %+v", c.Bounds)
	}

	if c.Disposal.MaxDistanceKm < 0 {
		return eris.Errorf("config: negative disposal.max_distance_km %v", c.Disposal.MaxDistanceKm)
	}

	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}

	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}

	zap.ReplaceGlobals(logger)

	return nil
}
