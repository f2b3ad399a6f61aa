package satellite

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// SentinelProvider fetches reference imagery from a Sentinel-style HTTP
// service and falls back to the synthetic generator when the service is
// unavailable. The fallback is reflected in Evidence.Source; the pipeline
// treats the result as opaque and never retries.
type SentinelProvider struct {
	endpoint string
	client   *http.Client
	fallback *SyntheticProvider
	logger   *zap.Logger
}

// NewSentinelProvider creates a SentinelProvider. An empty endpoint means the
// provider serves synthetic data only.
func NewSentinelProvider(endpoint string, logger *zap.Logger) *SentinelProvider {
	return &SentinelProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		fallback: NewSyntheticProvider(logger),
		logger:   logger,
	}
}

// Fetch implements Provider.
func (p *SentinelProvider) Fetch(ctx context.Context, lat, lon float64, size int, cloudThreshold float64) (*Evidence, error) {
	if p.endpoint == "" {
		return p.fallback.Fetch(ctx, lat, lon, size, cloudThreshold)
	}

	ev, err := p.fetchReal(ctx, lat, lon, size, cloudThreshold)
	if err != nil {
		p.logger.Warn("reference imagery fetch failed, falling back to synthetic data",
			zap.Float64("latitude", lat),
			zap.Float64("longitude", lon),
			zap.Error(err),
		)
		return p.fallback.Fetch(ctx, lat, lon, size, cloudThreshold)
	}
	return ev, nil
}

func (p *SentinelProvider) fetchReal(ctx context.Context, lat, lon float64, size int, cloudThreshold float64) (*Evidence, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("size", strconv.Itoa(size))
	q.Set("max_cloud", strconv.FormatFloat(cloudThreshold, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagery service returned status %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode imagery response: %w", err)
	}

	meta := Metadata{
		Satellite:  "Sentinel-2",
		Resolution: "10m",
		Latitude:   lat,
		Longitude:  lon,
	}
	if cc, err := strconv.ParseFloat(resp.Header.Get("X-Cloud-Coverage"), 64); err == nil {
		meta.CloudCoverage = cc
	}
	if at, err := time.Parse(time.RFC3339, resp.Header.Get("X-Acquisition-Time")); err == nil {
		meta.AcquisitionTime = at
	} else {
		meta.AcquisitionTime = time.Now().UTC()
	}

	return &Evidence{Image: img, Source: SourceSentinelHub, Metadata: meta}, nil
}
