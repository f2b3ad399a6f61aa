package photo

import (
	"fmt"
	"strings"
)

// UnsupportedFormatError is returned when the photo's file extension is not in
// the configured allow-list. Never retried.
type UnsupportedFormatError struct {
	Extension string
	Supported []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q (supported: %s)", e.Extension, strings.Join(e.Supported, ", "))
}

// NotGeotaggedError is returned when no usable GPS coordinates are embedded in
// the photo. Surfaced to the reporter as a user-actionable failure.
type NotGeotaggedError struct {
	URL string
}

func (e *NotGeotaggedError) Error() string {
	return "photo is not geotagged; upload a photo with embedded GPS coordinates"
}

// LowQualityError is returned when the computed quality score falls below the
// configured minimum. Surfaced to the reporter as a user-actionable failure.
type LowQualityError struct {
	Score float64
	Min   float64
}

func (e *LowQualityError) Error() string {
	return fmt.Sprintf("photo quality too low (%.3f, minimum %.3f); upload a clearer photo", e.Score, e.Min)
}

// FetchError wraps a network or HTTP failure while downloading the photo.
// Photo fetch failure is fatal to the report.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch photo %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
