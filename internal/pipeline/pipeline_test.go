package pipeline_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/Sunny2307/GreenShield/internal/config"
	"github.com/Sunny2307/GreenShield/internal/decision"
	"github.com/Sunny2307/GreenShield/internal/fusion"
	"github.com/Sunny2307/GreenShield/internal/model"
	"github.com/Sunny2307/GreenShield/internal/photo"
	"github.com/Sunny2307/GreenShield/internal/pipeline"
	"github.com/Sunny2307/GreenShield/internal/report"
	"github.com/Sunny2307/GreenShield/internal/satellite"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

// stubProvider serves a fixed evidence source or error.
type stubProvider struct {
	source satellite.Source
	err    error
}

func (p *stubProvider) Fetch(_ context.Context, lat, lon float64, size int, _ float64) (*satellite.Evidence, error) {
	if p.err != nil {
		return nil, p.err
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 200, A: 255})
		}
	}
	return &satellite.Evidence{
		Image:    img,
		Source:   p.source,
		Metadata: satellite.Metadata{Latitude: lat, Longitude: lon},
	}, nil
}

// stubExtractor returns canned photo evidence.
type stubExtractor struct {
	evidence *photo.Evidence
	err      error
}

func (s *stubExtractor) Extract(context.Context, string) (*photo.Evidence, error) {
	return s.evidence, s.err
}

// stubScorer pins the anomaly model to a fixed raw score.
type stubScorer struct{ raw float64 }

func (s *stubScorer) Score(context.Context, [fusion.FeatureCount]float64) (float64, error) {
	return s.raw, nil
}

func greenEvidence(size int) *photo.Evidence {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 200, A: 255})
		}
	}
	return &photo.Evidence{
		Image:        img,
		QualityScore: 0.8,
		Latitude:     1.29,
		Longitude:    103.85,
		IsGeotagged:  true,
	}
}

func newTestPipeline(extractor report.PhotoExtractor, provider satellite.Provider, raw float64) *pipeline.Pipeline {
	cfg := config.Default()
	cfg.Model.InputSize = 16
	cfg.Satellite.ImageSize = 16

	logger := zap.NewNop()
	return pipeline.New(
		cfg,
		report.NewNormalizer(extractor, logger),
		report.NewAssessor(),
		model.NewVegetationSegmenter(cfg.Model.InputSize),
		provider,
		fusion.NewEngine(cfg.Model, &stubScorer{raw: raw}, logger),
		decision.NewSynthesizer(cfg.Gamification, logger),
		logger,
	)
}

func photoRaw() report.RawReport {
	return report.RawReport{
		PhotoURL:    strPtr("https://example.com/photo.jpg"),
		Timestamp:   strPtr("2026-08-01T10:00:00Z"),
		Description: "mangrove clearing near the river mouth",
		ReporterID:  strPtr("citizen_042"),
	}
}

func degradedRaw() report.RawReport {
	r := photoRaw()
	r.PhotoURL = strPtr("")
	r.Latitude = f64Ptr(1.29)
	r.Longitude = f64Ptr(103.85)
	return r
}

func TestProcess_photoPath(t *testing.T) {
	p := newTestPipeline(
		&stubExtractor{evidence: greenEvidence(16)},
		&stubProvider{source: satellite.SourceSentinelHub},
		0.9,
	)

	res, err := p.Process(context.Background(), photoRaw())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if res.Degraded {
		t.Error("photo path marked degraded")
	}
	if res.SatelliteSource != satellite.SourceSentinelHub {
		t.Errorf("satellite source = %q", res.SatelliteSource)
	}
	if res.Decision == nil || res.Decision.ReportID == "" {
		t.Fatal("decision missing")
	}
	if res.Report.Quality == nil {
		t.Error("quality metrics not attached")
	}
	if c := res.Decision.ConfidenceScore; c < 0 || c > 1 {
		t.Errorf("confidence %v out of [0,1]", c)
	}
}

func TestProcess_degradedDiscounts(t *testing.T) {
	provider := &stubProvider{source: satellite.SourceSynthetic}

	// Reference run: photo path where both masks are identical, which is
	// exactly what the degraded path fuses before discounting.
	full := newTestPipeline(&stubExtractor{evidence: greenEvidence(16)}, provider, 0.9)
	fullRes, err := full.Process(context.Background(), photoRaw())
	if err != nil {
		t.Fatalf("photo run: %v", err)
	}

	deg := newTestPipeline(&stubExtractor{err: errors.New("must not be called")}, provider, 0.9)
	degRes, err := deg.Process(context.Background(), degradedRaw())
	if err != nil {
		t.Fatalf("degraded run: %v", err)
	}

	if !degRes.Degraded {
		t.Fatal("no-photo path not marked degraded")
	}
	wantConf := fullRes.Decision.ConfidenceScore * 0.5
	if math.Abs(degRes.Decision.ConfidenceScore-wantConf) > 1e-6 {
		t.Errorf("degraded confidence = %v, want %v (half the full-evidence score)",
			degRes.Decision.ConfidenceScore, wantConf)
	}
	wantCitizen := fullRes.Decision.CitizenConfidence * 0.3
	if math.Abs(degRes.Decision.CitizenConfidence-wantCitizen) > 1e-6 {
		t.Errorf("degraded citizen confidence = %v, want %v",
			degRes.Decision.CitizenConfidence, wantCitizen)
	}
}

func TestProcess_missingCoordinates(t *testing.T) {
	p := newTestPipeline(&stubExtractor{}, &stubProvider{source: satellite.SourceSynthetic}, 0.9)

	raw := degradedRaw()
	raw.Latitude, raw.Longitude = nil, nil

	_, err := p.Process(context.Background(), raw)
	var mfe *report.MissingFieldError
	if !errors.As(err, &mfe) {
		t.Fatalf("got %v, want *MissingFieldError", err)
	}
}

func TestProcess_invalidInputRejectedBeforeFetch(t *testing.T) {
	p := newTestPipeline(
		&stubExtractor{err: &photo.FetchError{URL: "u", Err: errors.New("unreachable")}},
		&stubProvider{source: satellite.SourceSynthetic},
		0.9,
	)

	raw := photoRaw()
	raw.PhotoURL = strPtr("ftp://example.com/photo.jpg")

	_, err := p.Process(context.Background(), raw)
	var ife *report.InvalidFieldError
	if !errors.As(err, &ife) {
		t.Fatalf("got %v, want *report.InvalidFieldError", err)
	}
	if len(ife.Errors) != 1 {
		t.Errorf("errors = %v, want one URL format error", ife.Errors)
	}
	var fe *photo.FetchError
	if errors.As(err, &fe) {
		t.Error("invalid input reached the photo fetcher")
	}
}

func TestProcess_normalizationErrorsPassThrough(t *testing.T) {
	p := newTestPipeline(
		&stubExtractor{err: &photo.NotGeotaggedError{URL: "u"}},
		&stubProvider{source: satellite.SourceSynthetic},
		0.9,
	)

	_, err := p.Process(context.Background(), photoRaw())
	var nge *photo.NotGeotaggedError
	if !errors.As(err, &nge) {
		t.Fatalf("got %v, want *photo.NotGeotaggedError unwrapped", err)
	}
	var pe *pipeline.Error
	if errors.As(err, &pe) {
		t.Error("normalization failure must not be wrapped in *pipeline.Error")
	}
}

func TestProcess_providerFailureWrapped(t *testing.T) {
	cause := errors.New("imagery service down")
	p := newTestPipeline(&stubExtractor{evidence: greenEvidence(16)}, &stubProvider{err: cause}, 0.9)

	_, err := p.Process(context.Background(), photoRaw())
	var pe *pipeline.Error
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want *pipeline.Error", err)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not preserved through Unwrap")
	}
	if pe.ReportID == "" || pe.ReporterID != "citizen_042" {
		t.Errorf("report context missing: %+v", pe)
	}
	if pe.Latitude != 1.29 || pe.Longitude != 103.85 {
		t.Errorf("location context = (%v, %v), want (1.29, 103.85)", pe.Latitude, pe.Longitude)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		provider satellite.Provider
		want     string
	}{
		{"healthy", &stubProvider{source: satellite.SourceSentinelHub}, "healthy"},
		{"degraded", &stubProvider{source: satellite.SourceSynthetic}, "degraded"},
		{"error", &stubProvider{err: errors.New("down")}, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(&stubExtractor{}, tt.provider, 0.9)
			st := p.Status(context.Background())
			if st.Status != tt.want {
				t.Errorf("status = %q, want %q", st.Status, tt.want)
			}
			if len(st.Components) == 0 {
				t.Error("component states missing")
			}
		})
	}
}

func TestStatistics_shape(t *testing.T) {
	p := newTestPipeline(&stubExtractor{}, &stubProvider{source: satellite.SourceSynthetic}, 0.9)
	st := p.Statistics()
	if st.Note == "" {
		t.Error("statistics note missing")
	}
	if st.TotalReportsProcessed != 0 || st.AnomaliesDetected != 0 {
		t.Error("stub statistics must report zero totals")
	}
}
