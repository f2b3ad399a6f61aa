// Package config defines the immutable runtime configuration for the
// GreenShield pipeline. A Config is assembled once at startup (from viper
// defaults, an optional YAML file, and environment variables) and passed by
// value into component constructors; nothing mutates it afterwards.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Processing holds photo intake and preprocessing settings.
type Processing struct {
	// SupportedFormats is the file-extension allow-list for citizen photos.
	SupportedFormats []string

	// MaxImageSize is the maximum image dimension in pixels; larger images
	// are downscaled before further processing.
	MaxImageSize int

	// MinPhotoQuality gates photos below this quality score (0–1).
	MinPhotoQuality float64

	// MaxDownloadBytes caps the photo download body size.
	MaxDownloadBytes int64

	// FetchTimeoutSeconds bounds a single photo download.
	FetchTimeoutSeconds int
}

// Model holds segmentation and anomaly-scoring settings.
type Model struct {
	// InputSize is the square edge length images are resized to before
	// segmentation; both masks in a fusion must share it.
	InputSize int

	// SegmentationThreshold binarizes segmentation output.
	SegmentationThreshold float64

	// AnomalyThreshold is compared against the RAW anomaly score; raw scores
	// below it flag an anomaly. Tunable constant, not derived from anything.
	AnomalyThreshold float64

	// FeatureMeans and FeatureStds standardize the 7-dimensional anomaly
	// feature vector before scoring.
	FeatureMeans [7]float64
	FeatureStds  [7]float64
}

// Satellite holds reference-imagery acquisition settings.
type Satellite struct {
	// Endpoint is the reference imagery service URL; empty means synthetic
	// data only.
	Endpoint string

	// ImageSize is the edge length of fetched reference images.
	ImageSize int

	// CloudCoverageThreshold is the maximum acceptable cloud fraction.
	CloudCoverageThreshold float64

	// CacheTTLSeconds bounds how long fetched reference evidence is reused
	// for the same location. Zero disables the cache.
	CacheTTLSeconds int
}

// Gamification holds the points and badge policy.
type Gamification struct {
	BasePoints              int
	HighConfidenceBonus     int
	AnomalyBonus            int
	HighConfidenceThreshold float64
}

// Server holds HTTP transport settings.
type Server struct {
	Port         int
	CORSOrigins  []string
	RateLimitRPS int
}

// Config is the top-level immutable configuration object.
type Config struct {
	Processing   Processing
	Model        Model
	Satellite    Satellite
	Gamification Gamification
	Server       Server
}

// Default returns the built-in configuration. Values mirror the tuned
// production defaults; tests construct components from this directly.
func Default() Config {
	return Config{
		Processing: Processing{
			SupportedFormats:    []string{".jpg", ".jpeg", ".png", ".tiff"},
			MaxImageSize:        2048,
			MinPhotoQuality:     0.3,
			MaxDownloadBytes:    10 << 20,
			FetchTimeoutSeconds: 30,
		},
		Model: Model{
			InputSize:             512,
			SegmentationThreshold: 0.5,
			AnomalyThreshold:      0.8,
			FeatureMeans:          [7]float64{0.25, 0.5, 0.15, 0.35, 0.35, 0, 0},
			FeatureStds:           [7]float64{0.2, 0.3, 0.15, 0.25, 0.25, 35, 100},
		},
		Satellite: Satellite{
			Endpoint:               "",
			ImageSize:              512,
			CloudCoverageThreshold: 0.1,
			CacheTTLSeconds:        300,
		},
		Gamification: Gamification{
			BasePoints:              10,
			HighConfidenceBonus:     5,
			AnomalyBonus:            15,
			HighConfidenceThreshold: 0.8,
		},
		Server: Server{
			Port:         8080,
			CORSOrigins:  []string{"http://localhost:3000"},
			RateLimitRPS: 20,
		},
	}
}

// SetDefaults registers every config key with viper so env overrides work
// without a config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.rate_limit_rps", d.Server.RateLimitRPS)
	v.SetDefault("processing.supported_formats", d.Processing.SupportedFormats)
	v.SetDefault("processing.max_image_size", d.Processing.MaxImageSize)
	v.SetDefault("processing.min_photo_quality", d.Processing.MinPhotoQuality)
	v.SetDefault("processing.max_download_bytes", d.Processing.MaxDownloadBytes)
	v.SetDefault("processing.fetch_timeout_seconds", d.Processing.FetchTimeoutSeconds)
	v.SetDefault("model.input_size", d.Model.InputSize)
	v.SetDefault("model.segmentation_threshold", d.Model.SegmentationThreshold)
	v.SetDefault("model.anomaly_threshold", d.Model.AnomalyThreshold)
	v.SetDefault("satellite.endpoint", d.Satellite.Endpoint)
	v.SetDefault("satellite.image_size", d.Satellite.ImageSize)
	v.SetDefault("satellite.cloud_coverage_threshold", d.Satellite.CloudCoverageThreshold)
	v.SetDefault("satellite.cache_ttl_seconds", d.Satellite.CacheTTLSeconds)
	v.SetDefault("gamification.base_points", d.Gamification.BasePoints)
	v.SetDefault("gamification.high_confidence_bonus", d.Gamification.HighConfidenceBonus)
	v.SetDefault("gamification.anomaly_bonus", d.Gamification.AnomalyBonus)
	v.SetDefault("gamification.high_confidence_threshold", d.Gamification.HighConfidenceThreshold)
}

// FromViper flattens viper state into a Config and validates it.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Default()
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.CORSOrigins = v.GetStringSlice("server.cors_origins")
	cfg.Server.RateLimitRPS = v.GetInt("server.rate_limit_rps")
	cfg.Processing.SupportedFormats = v.GetStringSlice("processing.supported_formats")
	cfg.Processing.MaxImageSize = v.GetInt("processing.max_image_size")
	cfg.Processing.MinPhotoQuality = v.GetFloat64("processing.min_photo_quality")
	cfg.Processing.MaxDownloadBytes = v.GetInt64("processing.max_download_bytes")
	cfg.Processing.FetchTimeoutSeconds = v.GetInt("processing.fetch_timeout_seconds")
	cfg.Model.InputSize = v.GetInt("model.input_size")
	cfg.Model.SegmentationThreshold = v.GetFloat64("model.segmentation_threshold")
	cfg.Model.AnomalyThreshold = v.GetFloat64("model.anomaly_threshold")
	cfg.Satellite.Endpoint = v.GetString("satellite.endpoint")
	cfg.Satellite.ImageSize = v.GetInt("satellite.image_size")
	cfg.Satellite.CloudCoverageThreshold = v.GetFloat64("satellite.cloud_coverage_threshold")
	cfg.Satellite.CacheTTLSeconds = v.GetInt("satellite.cache_ttl_seconds")
	cfg.Gamification.BasePoints = v.GetInt("gamification.base_points")
	cfg.Gamification.HighConfidenceBonus = v.GetInt("gamification.high_confidence_bonus")
	cfg.Gamification.AnomalyBonus = v.GetInt("gamification.anomaly_bonus")
	cfg.Gamification.HighConfidenceThreshold = v.GetFloat64("gamification.high_confidence_threshold")
	return cfg, cfg.Validate()
}

// Validate rejects configurations that would make the pipeline's bounded-range
// guarantees impossible.
func (c Config) Validate() error {
	if c.Processing.MinPhotoQuality < 0 || c.Processing.MinPhotoQuality > 1 {
		return fmt.Errorf("processing.min_photo_quality must be in [0,1], got %v", c.Processing.MinPhotoQuality)
	}
	if c.Model.SegmentationThreshold <= 0 || c.Model.SegmentationThreshold >= 1 {
		return fmt.Errorf("model.segmentation_threshold must be in (0,1), got %v", c.Model.SegmentationThreshold)
	}
	if c.Satellite.ImageSize <= 0 {
		return fmt.Errorf("satellite.image_size must be positive, got %d", c.Satellite.ImageSize)
	}
	for i, s := range c.Model.FeatureStds {
		if s <= 0 {
			return fmt.Errorf("model feature std %d must be positive, got %v", i, s)
		}
	}
	for _, ext := range c.Processing.SupportedFormats {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("supported format %q must start with a dot", ext)
		}
	}
	return nil
}
