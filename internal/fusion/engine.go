package fusion

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Sunny2307/GreenShield/internal/config"
)

// Per-mask confidence weights.
const (
	coverageWeight  = 0.4
	edgeWeight      = 0.3
	coherenceWeight = 0.3
)

// Overall confidence weights.
const (
	citizenWeight   = 0.4
	referenceWeight = 0.4
	anomalyWeight   = 0.2
)

// FeatureCount is the fixed dimensionality of the anomaly feature vector.
const FeatureCount = 7

// Scorer produces a raw, unbounded anomaly score from a standardized feature
// vector. Lower raw scores indicate stronger anomalies.
type Scorer interface {
	Score(ctx context.Context, features [FeatureCount]float64) (float64, error)
}

// ValidationResult holds the fused evidence metrics for one report.
// Immutable once produced.
type ValidationResult struct {
	ConfidenceScore      float64
	CitizenConfidence    float64
	SatelliteConfidence  float64
	AnomalyScore         float64
	AnomalyDetected      bool
	CitizenSegmentation  *Mask
	ReferenceSegmentation *Mask
	InferenceTime        time.Duration
}

// Engine fuses citizen and reference segmentation masks into confidence and
// anomaly metrics.
type Engine struct {
	cfg    config.Model
	scorer Scorer
	logger *zap.Logger
}

// NewEngine creates an Engine around an anomaly scorer.
func NewEngine(cfg config.Model, scorer Scorer, logger *zap.Logger) *Engine {
	return &Engine{cfg: cfg, scorer: scorer, logger: logger}
}

// Fuse computes per-mask confidence, derives the 7-dimensional anomaly
// feature vector, scores it, and combines everything into a ValidationResult.
//
// Fusion failure is recoverable, never fatal: if any feature computation or
// the scorer fails, the result carries a neutral anomaly (score 0.5, not
// detected) and the failure is logged.
func (e *Engine) Fuse(ctx context.Context, citizen, reference *Mask, lat, lon float64) (*ValidationResult, error) {
	start := time.Now()

	citizenConf := e.maskConfidence(citizen)
	referenceConf := e.maskConfidence(reference)

	anomalyScore, anomalyDetected := e.detectAnomaly(ctx, citizen, reference, lat, lon)

	overall := clamp01(citizenWeight*citizenConf +
		referenceWeight*referenceConf +
		anomalyWeight*(1.0-anomalyScore))

	return &ValidationResult{
		ConfidenceScore:       overall,
		CitizenConfidence:     citizenConf,
		SatelliteConfidence:   referenceConf,
		AnomalyScore:          anomalyScore,
		AnomalyDetected:       anomalyDetected,
		CitizenSegmentation:   citizen,
		ReferenceSegmentation: reference,
		InferenceTime:         time.Since(start),
	}, nil
}

// maskConfidence scores a single segmentation mask:
// 0.4*coverage + 0.3*edgeDensity + 0.3*coherence, where coherence rewards
// fewer disjoint regions.
func (e *Engine) maskConfidence(m *Mask) float64 {
	coverage := m.Coverage()
	edges := m.EdgeDensity(e.cfg.SegmentationThreshold)
	coherence := 1.0 / (1.0 + float64(m.ConnectedComponents(e.cfg.SegmentationThreshold)))

	return clamp01(coverageWeight*coverage + edgeWeight*edges + coherenceWeight*coherence)
}

// detectAnomaly builds and standardizes the feature vector, runs the scorer,
// and applies the detection and normalization policy.
//
// Detection compares the RAW score against the threshold while the reported
// score is the affine-normalized value clamp(raw+0.5, 0, 1). The asymmetry is
// a long-standing observable behavior and is kept as-is.
func (e *Engine) detectAnomaly(ctx context.Context, citizen, reference *Mask, lat, lon float64) (score float64, detected bool) {
	const neutralScore = 0.5

	meanDiff, err := MeanAbsDiff(citizen, reference)
	if err != nil {
		e.logger.Error("anomaly feature computation failed", zap.Error(err))
		return neutralScore, false
	}
	iou, err := IoU(citizen, reference, e.cfg.SegmentationThreshold)
	if err != nil {
		e.logger.Error("anomaly feature computation failed", zap.Error(err))
		return neutralScore, false
	}

	citizenCov := citizen.Coverage()
	referenceCov := reference.Coverage()
	covDiff := citizenCov - referenceCov
	if covDiff < 0 {
		covDiff = -covDiff
	}

	// Order is part of the model contract.
	features := [FeatureCount]float64{
		meanDiff,
		1.0 - iou,
		covDiff,
		citizenCov,
		referenceCov,
		lat,
		lon,
	}
	standardized := e.standardize(features)

	raw, err := e.scorer.Score(ctx, standardized)
	if err != nil {
		e.logger.Error("anomaly scorer failed", zap.Error(err))
		return neutralScore, false
	}

	detected = raw < e.cfg.AnomalyThreshold
	return clamp01(raw + 0.5), detected
}

// standardize z-scores each feature against the configured reference
// distribution.
func (e *Engine) standardize(features [FeatureCount]float64) [FeatureCount]float64 {
	var out [FeatureCount]float64
	for i, v := range features {
		out[i] = (v - e.cfg.FeatureMeans[i]) / e.cfg.FeatureStds[i]
	}
	return out
}
