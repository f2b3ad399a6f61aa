// Package satellite acquires reference imagery for a report location. The
// provider either fetches real imagery or generates deterministic synthetic
// data; the two cases are distinguished explicitly so callers and tests can
// detect degraded mode.
package satellite

import (
	"context"
	"image"
	"time"
)

// Source identifies where reference evidence came from. Synthetic substitution
// is always explicit, never silent.
type Source string

const (
	SourceSentinelHub Source = "sentinel_hub"
	SourceSynthetic   Source = "synthetic"
)

// Metadata describes the acquisition context of a reference image.
type Metadata struct {
	CloudCoverage   float64   `json:"cloud_coverage"`
	AcquisitionTime time.Time `json:"acquisition_time"`
	Satellite       string    `json:"satellite"`
	Resolution      string    `json:"resolution"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
}

// Evidence is a reference image plus its acquisition metadata.
type Evidence struct {
	Image    image.Image
	Source   Source
	Metadata Metadata
}

// Provider acquires reference evidence for a location. Implementations must
// be safe for concurrent use.
type Provider interface {
	Fetch(ctx context.Context, lat, lon float64, size int, cloudThreshold float64) (*Evidence, error)
}
