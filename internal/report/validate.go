package report

import (
	"fmt"
	"strings"
)

// Description length bounds for advisory warnings.
const (
	shortDescriptionLen = 10
	longDescriptionLen  = 1000
)

// ValidateInput runs the pre-flight structural check on a raw submission
// before any processing. It never mutates the submission; errors make the
// input invalid, warnings are advisory only.
func ValidateInput(raw RawReport) InputValidation {
	v := InputValidation{Valid: true, Errors: []string{}, Warnings: []string{}}

	if raw.PhotoURL == nil {
		v.fail("missing required field: photo_url")
	}
	if raw.Timestamp == nil {
		v.fail("missing required field: timestamp")
	}
	if raw.ReporterID == nil {
		v.fail("missing required field: reporter_id")
	}

	if raw.PhotoURL != nil && *raw.PhotoURL != "" {
		if !strings.HasPrefix(*raw.PhotoURL, "http://") && !strings.HasPrefix(*raw.PhotoURL, "https://") {
			v.fail("invalid photo URL format")
		}
	}

	// Coordinates are only trusted (and therefore only validated) on the
	// no-photo path; a processed photo overrides them entirely.
	if raw.PhotoURL == nil || *raw.PhotoURL == "" {
		if raw.Latitude != nil && (*raw.Latitude < -90 || *raw.Latitude > 90) {
			v.fail(fmt.Sprintf("invalid latitude %v: must be between -90 and 90", *raw.Latitude))
		}
		if raw.Longitude != nil && (*raw.Longitude < -180 || *raw.Longitude > 180) {
			v.fail(fmt.Sprintf("invalid longitude %v: must be between -180 and 180", *raw.Longitude))
		}
	}

	if n := len(raw.Description); n < shortDescriptionLen {
		v.Warnings = append(v.Warnings, "description is very short")
	} else if n > longDescriptionLen {
		v.Warnings = append(v.Warnings, "description is very long")
	}

	return v
}

func (v *InputValidation) fail(msg string) {
	v.Valid = false
	v.Errors = append(v.Errors, msg)
}
