package report

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Overall quality weights. They must sum to 1 so the composite stays in [0,1].
const (
	hasPhotoWeight    = 0.3
	photoQualWeight   = 0.25
	coordWeight       = 0.2
	descriptionWeight = 0.15
	recencyWeight     = 0.1
)

// Coordinate accuracy sub-weights.
const (
	precisionWeight = 0.6
	latWeight       = 0.2
	lonWeight       = 0.2
)

// Mangroves grow in tropical and subtropical coastal bands; latitudes inside
// ±30° score full marks.
const tropicalLatitude = 30.0

// Assessor derives QualityMetrics from a normalized report.
type Assessor struct{}

// NewAssessor creates an Assessor.
func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess computes the weighted quality composite and attaches it to the
// report:
//
//	overall = 0.3*hasPhoto + 0.25*photoQuality + 0.2*coordinateAccuracy
//	        + 0.15*min(descriptionLength/100, 1) + 0.1*timestampRecency
func (a *Assessor) Assess(r *Report) QualityMetrics {
	m := QualityMetrics{
		HasPhoto:          r.Photo != nil,
		DescriptionLength: len(r.Description),
		TimestampRecency:  timestampRecency(r.Timestamp),
	}
	if r.Photo != nil {
		m.PhotoQuality = r.Photo.QualityScore
	}
	if r.HasCoordinates() {
		m.CoordinateAccuracy = coordinateAccuracy(*r.Latitude, *r.Longitude)
	}

	hasPhoto := 0.0
	if m.HasPhoto {
		hasPhoto = 1.0
	}
	descScore := math.Min(float64(m.DescriptionLength)/100.0, 1.0)

	m.OverallQualityScore = hasPhotoWeight*hasPhoto +
		photoQualWeight*m.PhotoQuality +
		coordWeight*m.CoordinateAccuracy +
		descriptionWeight*descScore +
		recencyWeight*m.TimestampRecency

	r.Quality = &m
	return m
}

// coordinateAccuracy rewards decimal precision and plausible mangrove
// latitudes: 0.6*precision + 0.2*latScore + 0.2*lonScore.
func coordinateAccuracy(lat, lon float64) float64 {
	precision := math.Min(float64(decimalDigits(lat)+decimalDigits(lon))/12.0, 1.0)

	latScore := 0.5
	if lat >= -tropicalLatitude && lat <= tropicalLatitude {
		latScore = 1.0
	}
	lonScore := 0.0
	if lon >= -180 && lon <= 180 {
		lonScore = 1.0
	}

	return precisionWeight*precision + latWeight*latScore + lonWeight*lonScore
}

// decimalDigits counts digits after the decimal point in the shortest
// round-trip formatting of v.
func decimalDigits(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// timestampRecency scores how fresh the report is: 1.0 at submission time
// decaying linearly to 0 over 24 hours.
func timestampRecency(ts time.Time) float64 {
	hours := time.Now().UTC().Sub(ts).Hours()
	return math.Max(0, 1.0-hours/24.0)
}
