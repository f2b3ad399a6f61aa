package photo

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// decodeGPS extracts GPS coordinates from the EXIF block of raw image bytes.
// Coordinates are stored as degrees/minutes/seconds rationals plus a
// hemisphere reference; they are converted to signed decimal degrees and
// range-checked. Returns ok=false when the photo is not geotagged, when any
// component is unrecoverable, or when the result is out of range — all of
// which the caller treats identically.
func decodeGPS(data []byte) (lat, lon float64, ok bool) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}

	lat, ok = dmsToDecimal(x, exif.GPSLatitude, exif.GPSLatitudeRef, "S")
	if !ok {
		return 0, 0, false
	}
	lon, ok = dmsToDecimal(x, exif.GPSLongitude, exif.GPSLongitudeRef, "W")
	if !ok {
		return 0, 0, false
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// dmsToDecimal converts one coordinate axis: decimal = deg + min/60 + sec/3600,
// negated when the hemisphere reference matches negRef (South or West).
func dmsToDecimal(x *exif.Exif, field, refField exif.FieldName, negRef string) (float64, bool) {
	tag, err := x.Get(field)
	if err != nil || tag.Count < 3 {
		return 0, false
	}

	var parts [3]float64
	for i := 0; i < 3; i++ {
		parts[i], err = ratFloat(tag, i)
		if err != nil {
			return 0, false
		}
	}
	decimal := parts[0] + parts[1]/60.0 + parts[2]/3600.0

	refTag, err := x.Get(refField)
	if err == nil {
		if ref, refErr := refTag.StringVal(); refErr == nil && ref == negRef {
			decimal = -decimal
		}
	}
	return decimal, true
}

func ratFloat(tag *tiff.Tag, i int) (float64, error) {
	num, den, err := tag.Rat2(i)
	if err != nil {
		return 0, err
	}
	if den == 0 {
		return 0, &zeroDenominatorError{}
	}
	return float64(num) / float64(den), nil
}

type zeroDenominatorError struct{}

func (*zeroDenominatorError) Error() string { return "zero denominator in GPS rational" }
