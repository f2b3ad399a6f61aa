package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sunny2307/GreenShield/internal/photo"
)

// fallback timestamp layouts tried when RFC 3339 parsing fails.
var fallbackLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
}

// PhotoExtractor turns a photo URL into geotagged photo evidence.
// *photo.Extractor satisfies this interface.
type PhotoExtractor interface {
	Extract(ctx context.Context, url string) (*photo.Evidence, error)
}

// Normalizer parses raw submissions into validated Report records.
type Normalizer struct {
	extractor PhotoExtractor
	logger    *zap.Logger
}

// NewNormalizer creates a Normalizer around a photo extractor.
func NewNormalizer(extractor PhotoExtractor, logger *zap.Logger) *Normalizer {
	return &Normalizer{extractor: extractor, logger: logger}
}

// Normalize validates the raw submission, assigns a fresh report ID, parses
// the timestamp, and runs photo evidence extraction when a photo URL is
// present.
//
// Errors: *MissingFieldError, *InvalidTimestampError, *InvalidFieldError, or
// any photo package error (propagated unchanged). A submission without a
// photo URL value is the degraded path, not an error: caller-supplied
// coordinates pass through after range validation.
func (n *Normalizer) Normalize(ctx context.Context, raw RawReport) (*Report, error) {
	if raw.PhotoURL == nil {
		return nil, &MissingFieldError{Field: "photo_url"}
	}
	if raw.Timestamp == nil {
		return nil, &MissingFieldError{Field: "timestamp"}
	}
	if raw.ReporterID == nil || *raw.ReporterID == "" {
		return nil, &MissingFieldError{Field: "reporter_id"}
	}

	ts, err := parseTimestamp(*raw.Timestamp)
	if err != nil {
		return nil, err
	}

	r := &Report{
		ID:          uuid.NewString(),
		ReporterID:  *raw.ReporterID,
		Timestamp:   ts,
		Description: raw.Description,
		PhotoURL:    *raw.PhotoURL,
		CoordSrc:    CoordinatesAbsent,
		ProcessedAt: time.Now().UTC(),
	}

	if r.PhotoURL != "" {
		ev, err := n.extractor.Extract(ctx, r.PhotoURL)
		if err != nil {
			return nil, err
		}
		r.Photo = ev
		lat, lon := ev.Latitude, ev.Longitude
		r.Latitude, r.Longitude = &lat, &lon
		r.CoordSrc = CoordinatesFromPhoto

		n.logger.Info("using GPS coordinates from photo",
			zap.String("report_id", r.ID),
			zap.Float64("latitude", lat),
			zap.Float64("longitude", lon),
		)
		return r, nil
	}

	// Degraded path: no photo, trust the caller's coordinates after a
	// range check.
	if errs := validateCoordinates(raw.Latitude, raw.Longitude); len(errs) > 0 {
		return nil, &InvalidFieldError{Errors: errs}
	}
	r.Latitude, r.Longitude = raw.Latitude, raw.Longitude
	if r.HasCoordinates() {
		r.CoordSrc = CoordinatesFromUser
	}
	n.logger.Info("no photo supplied, using caller coordinates",
		zap.String("report_id", r.ID),
	)
	return r, nil
}

// parseTimestamp accepts RFC 3339 (trailing Z treated as UTC), timezone-naive
// ISO values (assumed UTC), and a small set of fallback layouts. Results are
// normalized to UTC and future-dated values are rejected.
func parseTimestamp(value string) (time.Time, error) {
	var ts time.Time
	var err error

	if strings.Contains(value, "T") {
		ts, err = time.Parse(time.RFC3339, value)
		if err != nil {
			// Timezone-naive ISO values are assumed UTC.
			ts, err = time.Parse("2006-01-02T15:04:05", value)
		}
		if err != nil {
			return time.Time{}, &InvalidTimestampError{Value: value, Reason: "unsupported timestamp format"}
		}
	} else {
		parsed := false
		for _, layout := range fallbackLayouts {
			if ts, err = time.Parse(layout, value); err == nil {
				parsed = true
				break
			}
		}
		if !parsed {
			return time.Time{}, &InvalidTimestampError{Value: value, Reason: "unsupported timestamp format"}
		}
	}

	ts = ts.UTC()
	if ts.After(time.Now().UTC()) {
		return time.Time{}, &InvalidTimestampError{Value: value, Reason: "timestamp is in the future"}
	}
	return ts, nil
}

// validateCoordinates range-checks optional caller-supplied coordinates.
func validateCoordinates(lat, lon *float64) []string {
	var errs []string
	if lat != nil && (*lat < -90 || *lat > 90) {
		errs = append(errs, fmt.Sprintf("invalid latitude %v: must be between -90 and 90", *lat))
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		errs = append(errs, fmt.Sprintf("invalid longitude %v: must be between -180 and 180", *lon))
	}
	return errs
}
