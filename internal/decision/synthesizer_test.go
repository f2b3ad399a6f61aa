package decision

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Sunny2307/GreenShield/internal/config"
	"github.com/Sunny2307/GreenShield/internal/fusion"
	"github.com/Sunny2307/GreenShield/internal/report"
)

func newTestSynthesizer() *Synthesizer {
	return NewSynthesizer(config.Default().Gamification, zap.NewNop())
}

func testReport() *report.Report {
	return &report.Report{ID: "r1", ReporterID: "citizen_042"}
}

func TestConfidenceLevels(t *testing.T) {
	tests := []struct {
		score float64
		want  ConfidenceLevel
	}{
		{0.95, ConfidenceHigh},
		{0.8, ConfidenceHigh},
		{0.79, ConfidenceMedium},
		{0.6, ConfidenceMedium},
		{0.59, ConfidenceLow},
		{0.4, ConfidenceLow},
		{0.39, ConfidenceVeryLow},
		{0, ConfidenceVeryLow},
	}
	for _, tt := range tests {
		if got := confidenceLevel(tt.score); got != tt.want {
			t.Errorf("confidenceLevel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestUrgency_anomalyScenario(t *testing.T) {
	// 0.4 boost + 0.3*0.75 + 0.3*0.85 = 0.88
	if got := urgencyLevel(0.85, 0.75, true); got != UrgencyHigh {
		t.Errorf("urgency = %q, want high", got)
	}
	// Without the anomaly flag the boost disappears: 0.225 + 0.255 = 0.48
	if got := urgencyLevel(0.85, 0.75, false); got != UrgencyLow {
		t.Errorf("urgency without anomaly = %q, want low", got)
	}
	// Near-certain anomaly with near-certain confidence escalates.
	if got := urgencyLevel(0.95, 0.95, true); got != UrgencyCritical {
		t.Errorf("urgency = %q, want critical", got)
	}
}

func TestUrgency_monotonicInConfidence(t *testing.T) {
	rank := map[UrgencyLevel]int{
		UrgencyLow:      0,
		UrgencyMedium:   1,
		UrgencyHigh:     2,
		UrgencyCritical: 3,
	}

	prev := -1
	for conf := 0.0; conf <= 1.0; conf += 0.01 {
		got := rank[urgencyLevel(conf, 0.8, true)]
		if got < prev {
			t.Fatalf("urgency dropped from rank %d to %d at confidence %v", prev, got, conf)
		}
		prev = got
	}
}

func TestSynthesize_scenario(t *testing.T) {
	s := newTestSynthesizer()

	vr := &fusion.ValidationResult{
		ConfidenceScore:     0.85,
		CitizenConfidence:   0.8,
		SatelliteConfidence: 0.9,
		AnomalyScore:        0.75,
		AnomalyDetected:     true,
		InferenceTime:       120 * time.Millisecond,
	}

	d := s.Synthesize(vr, testReport())

	if d.ConfidenceLevel != ConfidenceHigh {
		t.Errorf("confidence level = %q, want high", d.ConfidenceLevel)
	}
	if d.UrgencyLevel != UrgencyHigh {
		t.Errorf("urgency = %q, want high", d.UrgencyLevel)
	}
	if d.PointsEarned != 33 {
		t.Errorf("points = %d, want 33 (10 base + 5 confidence + 15 anomaly + 3 urgency)", d.PointsEarned)
	}
	if d.ReportID != "r1" || d.ReporterID != "citizen_042" {
		t.Errorf("report identity not carried: %q/%q", d.ReportID, d.ReporterID)
	}
	if len(d.Recommendations) == 0 || d.Summary == "" {
		t.Error("summary or recommendations missing")
	}
	if math.Abs(d.InferenceSeconds-0.12) > 1e-9 {
		t.Errorf("inference seconds = %v, want 0.12", d.InferenceSeconds)
	}
}

func TestSynthesize_masksEncoded(t *testing.T) {
	s := newTestSynthesizer()

	mask := fusion.NewMask(2, 2)
	vr := &fusion.ValidationResult{
		ConfidenceScore:       0.5,
		CitizenSegmentation:   mask,
		ReferenceSegmentation: mask,
	}
	d := s.Synthesize(vr, testReport())
	if d.CitizenMask == "" || d.ReferenceMask == "" {
		t.Error("segmentation masks not encoded")
	}

	bare := s.Synthesize(&fusion.ValidationResult{ConfidenceScore: 0.5}, testReport())
	if bare.CitizenMask != "" || bare.ReferenceMask != "" {
		t.Error("nil masks must encode as empty strings")
	}
}

func TestBadges(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		anomaly    bool
		want       []string
	}{
		{"gold clean", 0.95, false, []string{BadgeGold, BadgeCitizenScience}},
		{"silver anomaly", 0.85, true, []string{BadgeSilver, BadgeAnomalyDetector, BadgeExpertDetector, BadgeCitizenScience}},
		{"bronze", 0.72, false, []string{BadgeBronze, BadgeCitizenScience}},
		{"low anomaly", 0.5, true, []string{BadgeAnomalyDetector, BadgeCitizenScience}},
		{"baseline", 0.2, false, []string{BadgeCitizenScience}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := badges(tt.confidence, tt.anomaly)
			if len(got) != len(tt.want) {
				t.Fatalf("badges = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("badge %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPoints(t *testing.T) {
	s := newTestSynthesizer()

	tests := []struct {
		confidence float64
		anomaly    bool
		urgency    UrgencyLevel
		want       int
	}{
		{0.85, true, UrgencyHigh, 33},
		{0.85, true, UrgencyCritical, 34},
		{0.5, false, UrgencyLow, 11},
		{0.8, false, UrgencyLow, 16},
	}
	for _, tt := range tests {
		if got := s.points(tt.confidence, tt.anomaly, tt.urgency); got != tt.want {
			t.Errorf("points(%v, %v, %s) = %d, want %d",
				tt.confidence, tt.anomaly, tt.urgency, got, tt.want)
		}
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		points       int
		level        string
		next         string
		progress     float64
		pointsToNext int
	}{
		{0, "beginner", "explorer", 0, 50},
		{33, "beginner", "explorer", 0.66, 17},
		{50, "explorer", "detector", 0, 100},
		{150, "detector", "expert", 0, 150},
		{299, "detector", "expert", 149.0 / 150.0, 1},
		{500, "master", "master", 1, 0},
		{600, "master", "master", 1, 0},
	}
	for _, tt := range tests {
		got := Progress(tt.points)
		if got.CurrentLevel != tt.level || got.NextLevel != tt.next {
			t.Errorf("Progress(%d) levels = %s→%s, want %s→%s",
				tt.points, got.CurrentLevel, got.NextLevel, tt.level, tt.next)
		}
		if math.Abs(got.Progress-tt.progress) > 1e-9 {
			t.Errorf("Progress(%d).Progress = %v, want %v", tt.points, got.Progress, tt.progress)
		}
		if got.PointsToNext != tt.pointsToNext {
			t.Errorf("Progress(%d).PointsToNext = %d, want %d", tt.points, got.PointsToNext, tt.pointsToNext)
		}
	}
}
