package model

import (
	"context"

	"github.com/Sunny2307/GreenShield/internal/fusion"
)

// ruleFunc inspects a standardized feature vector and returns a penalty in
// [0, maxRulePenalty] when its pattern matches.
type ruleFunc func(features [fusion.FeatureCount]float64) float64

const maxRulePenalty = 0.25

// RuleBasedScorer is the default anomaly scorer. It emulates the decision
// surface of an isolation-style detector: the raw score starts at the
// "fully normal" ceiling of 0.5 and each triggered rule pulls it down, so the
// output lands in [-0.5, 0.5] with lower values meaning stronger anomalies.
type RuleBasedScorer struct {
	rules []ruleFunc
}

// NewRuleBasedScorer returns a RuleBasedScorer loaded with the default rules.
func NewRuleBasedScorer() *RuleBasedScorer {
	s := &RuleBasedScorer{}
	s.rules = []ruleFunc{
		ruleMaskDivergence,
		ruleLowOverlap,
		ruleCoverageGap,
		ruleSparseDetection,
	}
	return s
}

// Score implements fusion.Scorer. Deterministic: the same feature vector
// always yields the same raw score.
func (s *RuleBasedScorer) Score(_ context.Context, features [fusion.FeatureCount]float64) (float64, error) {
	raw := 0.5
	for _, r := range s.rules {
		raw -= r(features)
	}
	if raw < -0.5 {
		raw = -0.5
	}
	return raw, nil
}

// Feature vector layout (standardized):
// [0] mean absolute mask difference
// [1] 1 - IoU
// [2] |citizen coverage - reference coverage|
// [3] citizen coverage
// [4] reference coverage
// [5] latitude
// [6] longitude

// ruleMaskDivergence penalises large per-pixel divergence between the citizen
// and reference masks.
func ruleMaskDivergence(f [fusion.FeatureCount]float64) float64 {
	return scaledPenalty(f[0], 1.0)
}

// ruleLowOverlap penalises weak spatial overlap (high 1-IoU).
func ruleLowOverlap(f [fusion.FeatureCount]float64) float64 {
	return scaledPenalty(f[1], 1.0)
}

// ruleCoverageGap penalises a large gap between the two coverage fractions.
func ruleCoverageGap(f [fusion.FeatureCount]float64) float64 {
	return scaledPenalty(f[2], 1.0)
}

// ruleSparseDetection penalises scenes where both masks detect almost nothing,
// which usually means the evidence does not show the reported habitat at all.
func ruleSparseDetection(f [fusion.FeatureCount]float64) float64 {
	// Both coverages well below the reference mean.
	if f[3] < -1.0 && f[4] < -1.0 {
		return maxRulePenalty
	}
	return 0
}

// scaledPenalty maps a standardized feature linearly onto [0, maxRulePenalty]:
// zero at or below the onset, the full penalty two standard deviations above.
func scaledPenalty(z, onset float64) float64 {
	if z <= onset {
		return 0
	}
	p := (z - onset) / 2.0 * maxRulePenalty
	if p > maxRulePenalty {
		return maxRulePenalty
	}
	return p
}
