// Package decision maps fused evidence metrics to a final, auditable
// decision: confidence level, urgency tier, summary, recommendations, and
// gamification rewards. Everything here is deterministic — the same
// ValidationResult always yields the same Decision.
package decision

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Sunny2307/GreenShield/internal/config"
	"github.com/Sunny2307/GreenShield/internal/fusion"
	"github.com/Sunny2307/GreenShield/internal/report"
)

// ConfidenceLevel buckets the overall confidence score.
type ConfidenceLevel string

const (
	ConfidenceVeryLow ConfidenceLevel = "very_low"
	ConfidenceLow     ConfidenceLevel = "low"
	ConfidenceMedium  ConfidenceLevel = "medium"
	ConfidenceHigh    ConfidenceLevel = "high"
)

// UrgencyLevel orders the recommended response speed.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// Confidence tier thresholds.
const (
	confidenceHighMin   = 0.8
	confidenceMediumMin = 0.6
	confidenceLowMin    = 0.4
)

// Urgency score composition and tier thresholds.
const (
	urgencyAnomalyBoost    = 0.4 // applied when anomaly detected with confidence > 0.7
	urgencyBoostConfidence = 0.7
	urgencyAnomalyWeight   = 0.3
	urgencyConfWeight      = 0.3

	urgencyCriticalMin = 0.9
	urgencyHighMin     = 0.7
	urgencyMediumMin   = 0.5
)

// LevelProgress describes a reporter's position in the level ladder.
type LevelProgress struct {
	CurrentLevel string  `json:"current_level"`
	NextLevel    string  `json:"next_level"`
	Progress     float64 `json:"progress"`
	PointsToNext int     `json:"points_to_next"`
}

// Decision is the final structured outcome for one report.
type Decision struct {
	ReportID   string `json:"report_id"`
	ReporterID string `json:"reporter_id"`

	ConfidenceScore float64         `json:"confidence_score"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	AnomalyDetected bool            `json:"anomaly_detected"`
	AnomalyScore    float64         `json:"anomaly_score"`
	UrgencyLevel    UrgencyLevel    `json:"urgency_level"`

	CitizenConfidence   float64 `json:"citizen_confidence"`
	SatelliteConfidence float64 `json:"satellite_confidence"`
	InferenceSeconds    float64 `json:"inference_time"`

	CitizenMask   string `json:"citizen_segmentation_mask,omitempty"`
	ReferenceMask string `json:"satellite_segmentation_mask,omitempty"`

	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`

	PointsEarned  int           `json:"points_earned"`
	Badges        []string      `json:"badges"`
	LevelProgress LevelProgress `json:"level_progress"`
}

// Synthesizer turns ValidationResults into Decisions.
type Synthesizer struct {
	cfg    config.Gamification
	logger *zap.Logger
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(cfg config.Gamification, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{cfg: cfg, logger: logger}
}

// Synthesize produces the Decision for a validated report.
func (s *Synthesizer) Synthesize(vr *fusion.ValidationResult, r *report.Report) *Decision {
	confLevel := confidenceLevel(vr.ConfidenceScore)
	urgency := urgencyLevel(vr.ConfidenceScore, vr.AnomalyScore, vr.AnomalyDetected)
	points := s.points(vr.ConfidenceScore, vr.AnomalyDetected, urgency)

	d := &Decision{
		ReportID:            r.ID,
		ReporterID:          r.ReporterID,
		ConfidenceScore:     round3(vr.ConfidenceScore),
		ConfidenceLevel:     confLevel,
		AnomalyDetected:     vr.AnomalyDetected,
		AnomalyScore:        round3(vr.AnomalyScore),
		UrgencyLevel:        urgency,
		CitizenConfidence:   round3(vr.CitizenConfidence),
		SatelliteConfidence: round3(vr.SatelliteConfidence),
		InferenceSeconds:    round3(vr.InferenceTime.Seconds()),
		Summary:             summary(vr.AnomalyDetected, confLevel, vr.ConfidenceScore, vr.AnomalyScore),
		Recommendations:     recommendations(vr.AnomalyDetected, confLevel, urgency),
		PointsEarned:        points,
		Badges:              badges(vr.ConfidenceScore, vr.AnomalyDetected),
		LevelProgress:       Progress(points),
	}
	if vr.CitizenSegmentation != nil {
		d.CitizenMask = vr.CitizenSegmentation.EncodeBase64()
	}
	if vr.ReferenceSegmentation != nil {
		d.ReferenceMask = vr.ReferenceSegmentation.EncodeBase64()
	}

	s.logger.Info("decision synthesized",
		zap.String("report_id", r.ID),
		zap.String("confidence_level", string(confLevel)),
		zap.String("urgency_level", string(urgency)),
		zap.Int("points", points),
	)
	return d
}

func confidenceLevel(score float64) ConfidenceLevel {
	switch {
	case score >= confidenceHighMin:
		return ConfidenceHigh
	case score >= confidenceMediumMin:
		return ConfidenceMedium
	case score >= confidenceLowMin:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// urgencyLevel combines anomaly state and confidence into an urgency score,
// then buckets it. The score is monotonically non-decreasing in confidence
// when an anomaly is detected.
func urgencyLevel(confidence, anomalyScore float64, anomalyDetected bool) UrgencyLevel {
	score := 0.0
	if anomalyDetected && confidence > urgencyBoostConfidence {
		score += urgencyAnomalyBoost
	}
	score += urgencyAnomalyWeight * anomalyScore
	score += urgencyConfWeight * confidence

	switch {
	case score >= urgencyCriticalMin:
		return UrgencyCritical
	case score >= urgencyHighMin:
		return UrgencyHigh
	case score >= urgencyMediumMin:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// summary picks the narrative branch keyed by (anomalyDetected, confidence
// level). Wording is presentation; the branch selection is the contract.
func summary(anomaly bool, level ConfidenceLevel, confidence, anomalyScore float64) string {
	if anomaly {
		switch level {
		case ConfidenceHigh:
			return fmt.Sprintf(
				"High confidence anomaly detected at the reported location. The analysis shows significant differences between the citizen photo and satellite imagery, suggesting potential illegal activity or environmental changes. Anomaly score: %.1f%%. Immediate investigation recommended.",
				anomalyScore*100)
		case ConfidenceMedium:
			return fmt.Sprintf(
				"Medium confidence anomaly detected. The analysis indicates potential discrepancies between the citizen report and satellite data. Anomaly score: %.1f%%. Further investigation advised.",
				anomalyScore*100)
		default:
			return fmt.Sprintf(
				"Low confidence anomaly detected. Some differences were found between the citizen photo and satellite imagery, but confidence is limited. Anomaly score: %.1f%%. Manual review recommended.",
				anomalyScore*100)
		}
	}

	switch level {
	case ConfidenceHigh:
		return fmt.Sprintf(
			"High confidence validation completed. The citizen report appears consistent with satellite imagery. No significant anomalies detected. Confidence score: %.1f%%. Report appears reliable.",
			confidence*100)
	case ConfidenceMedium:
		return fmt.Sprintf(
			"Medium confidence validation completed. The analysis shows general consistency between the citizen report and satellite data. Confidence score: %.1f%%. Report appears mostly reliable.",
			confidence*100)
	default:
		return fmt.Sprintf(
			"Low confidence validation completed. The analysis could not determine with high certainty whether the report is consistent with satellite data. Confidence score: %.1f%%. Manual review recommended.",
			confidence*100)
	}
}

// recommendations selects the action list keyed by (anomalyDetected, urgency
// or confidence level). Order is fixed.
func recommendations(anomaly bool, level ConfidenceLevel, urgency UrgencyLevel) []string {
	if anomaly {
		switch urgency {
		case UrgencyCritical:
			return []string{
				"Immediate field investigation required",
				"Notify local authorities and conservation teams",
				"Document the site with additional photos",
				"Monitor the area for further changes",
			}
		case UrgencyHigh:
			return []string{
				"Schedule field investigation within 24 hours",
				"Notify relevant authorities",
				"Request additional citizen reports from the area",
				"Compare with historical satellite data",
			}
		default:
			return []string{
				"Schedule field investigation within 48 hours",
				"Request additional photos from the reporter",
				"Monitor satellite imagery for changes",
				"Consider seasonal variations in mangrove cover",
			}
		}
	}

	if level == ConfidenceHigh {
		return []string{
			"Report appears reliable - no immediate action required",
			"Continue monitoring the area through citizen reports",
			"Thank the reporter for their contribution",
			"Consider this area for regular satellite monitoring",
		}
	}
	return []string{
		"Request additional photos from the reporter",
		"Consider seasonal variations in mangrove appearance",
		"Schedule follow-up satellite imagery analysis",
		"Encourage continued citizen monitoring",
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
