package photo

import (
	"bytes"
	"context"
	"image"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	// Register decoders for the supported photo formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/Sunny2307/GreenShield/internal/config"
)

// Extractor downloads a citizen photo, enforces the format allow-list,
// extracts embedded GPS coordinates, gates on quality, and downscales
// oversized images.
type Extractor struct {
	cfg     config.Processing
	fetcher ImageFetcher
	logger  *zap.Logger
}

// NewExtractor creates an Extractor. fetcher may be nil, in which case an
// HTTP fetcher built from the processing config is used.
func NewExtractor(cfg config.Processing, fetcher ImageFetcher, logger *zap.Logger) *Extractor {
	if fetcher == nil {
		fetcher = NewHTTPFetcher(time.Duration(cfg.FetchTimeoutSeconds)*time.Second, cfg.MaxDownloadBytes)
	}
	return &Extractor{cfg: cfg, fetcher: fetcher, logger: logger}
}

// Extract processes a geotagged photo URL into Evidence.
//
// Failure modes, in check order:
//   - *UnsupportedFormatError when the extension is not allow-listed
//   - *FetchError when the download fails
//   - *NotGeotaggedError when no usable GPS coordinates are embedded
//   - *LowQualityError when the quality score is below the configured minimum
func (e *Extractor) Extract(ctx context.Context, photoURL string) (*Evidence, error) {
	ext := extensionOf(photoURL)
	if !e.formatSupported(ext) {
		return nil, &UnsupportedFormatError{Extension: ext, Supported: e.cfg.SupportedFormats}
	}

	data, err := e.fetcher.Fetch(ctx, photoURL)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &FetchError{URL: photoURL, Err: err}
	}
	origW := img.Bounds().Dx()
	origH := img.Bounds().Dy()

	// GPS must come from the raw bytes: downscaling strips EXIF.
	lat, lon, geotagged := decodeGPS(data)
	if !geotagged {
		return nil, &NotGeotaggedError{URL: photoURL}
	}

	if max(origW, origH) > e.cfg.MaxImageSize {
		img = downscale(img, e.cfg.MaxImageSize)
	}

	quality := QualityScore(img)
	if quality < e.cfg.MinPhotoQuality {
		e.logger.Warn("photo quality below minimum",
			zap.Float64("quality", quality),
			zap.Float64("minimum", e.cfg.MinPhotoQuality),
		)
		return nil, &LowQualityError{Score: quality, Min: e.cfg.MinPhotoQuality}
	}

	e.logger.Info("photo evidence extracted",
		zap.Float64("latitude", lat),
		zap.Float64("longitude", lon),
		zap.Float64("quality", quality),
	)

	return &Evidence{
		Image:           img,
		OriginalWidth:   origW,
		OriginalHeight:  origH,
		ProcessedWidth:  img.Bounds().Dx(),
		ProcessedHeight: img.Bounds().Dy(),
		QualityScore:    quality,
		Latitude:        lat,
		Longitude:       lon,
		IsGeotagged:     true,
		Format:          ext,
		FileSize:        len(data),
	}, nil
}

func (e *Extractor) formatSupported(ext string) bool {
	for _, s := range e.cfg.SupportedFormats {
		if ext == s {
			return true
		}
	}
	return false
}

// extensionOf returns the lowercase file extension of a URL path, ignoring
// any query string.
func extensionOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return strings.ToLower(path.Ext(u.Path))
	}
	return strings.ToLower(path.Ext(rawURL))
}

// downscale resizes the longest edge to maxSize, preserving aspect ratio.
func downscale(img image.Image, maxSize int) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w >= h {
		return imaging.Resize(img, maxSize, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxSize, imaging.Lanczos)
}
