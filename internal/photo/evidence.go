// Package photo downloads citizen-submitted photos, validates their format,
// extracts embedded GPS coordinates, and scores objective image quality.
// Evidence produced here lives only for the duration of one pipeline run.
package photo

import "image"

// Evidence is the decoded, quality-scored photographic evidence attached to a
// report. Coordinates are present only when IsGeotagged is true.
type Evidence struct {
	// Image is the decoded (and possibly downscaled) photo.
	Image image.Image

	// OriginalWidth and OriginalHeight are the dimensions before downscaling.
	OriginalWidth  int
	OriginalHeight int

	// ProcessedWidth and ProcessedHeight are the dimensions after downscaling.
	ProcessedWidth  int
	ProcessedHeight int

	// QualityScore is the composite quality score in [0,1].
	QualityScore float64

	// Latitude and Longitude are decoded from the photo's EXIF GPS block.
	Latitude  float64
	Longitude float64

	// IsGeotagged reports whether usable GPS coordinates were recovered.
	IsGeotagged bool

	// Format is the lowercase file extension, FileSize the downloaded byte count.
	Format   string
	FileSize int
}
