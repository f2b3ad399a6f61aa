// Package report normalizes raw citizen submissions into validated Report
// records and scores their overall evidentiary quality.
package report

import (
	"time"

	"github.com/Sunny2307/GreenShield/internal/photo"
)

// CoordinateSource records where a report's coordinates came from.
type CoordinateSource string

const (
	CoordinatesFromPhoto CoordinateSource = "photo_gps"
	CoordinatesFromUser  CoordinateSource = "user_input"
	CoordinatesAbsent    CoordinateSource = "none"
)

// RawReport is the untrusted submission payload. Pointer fields distinguish
// absent keys from zero values.
type RawReport struct {
	PhotoURL    *string  `json:"photo_url"`
	Timestamp   *string  `json:"timestamp"`
	Description string   `json:"description"`
	ReporterID  *string  `json:"reporter_id"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// Report is a normalized, validated citizen report. When a photo was
// successfully processed, Latitude/Longitude come exclusively from its EXIF
// GPS block; user-supplied coordinates are never trusted in that case.
type Report struct {
	ID          string
	ReporterID  string
	Timestamp   time.Time // UTC, never future-dated
	Description string
	PhotoURL    string

	Latitude  *float64
	Longitude *float64
	CoordSrc  CoordinateSource

	// Photo is nil on the degraded (no-photo) path.
	Photo *photo.Evidence

	// Quality is attached by the Assessor after normalization.
	Quality *QualityMetrics

	ProcessedAt time.Time
}

// HasCoordinates reports whether both coordinates are present.
func (r *Report) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// QualityMetrics is a derived, read-only snapshot of report quality.
type QualityMetrics struct {
	HasPhoto            bool    `json:"has_photo"`
	PhotoQuality        float64 `json:"photo_quality"`
	CoordinateAccuracy  float64 `json:"coordinate_accuracy"`
	DescriptionLength   int     `json:"description_length"`
	TimestampRecency    float64 `json:"timestamp_recency"`
	OverallQualityScore float64 `json:"overall_quality_score"`
}

// InputValidation is the result of the pre-flight structural check.
type InputValidation struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
