package fusion_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/Sunny2307/GreenShield/internal/config"
	"github.com/Sunny2307/GreenShield/internal/fusion"
)

// stubScorer returns a fixed raw score or error.
type stubScorer struct {
	raw float64
	err error
}

func (s *stubScorer) Score(context.Context, [fusion.FeatureCount]float64) (float64, error) {
	return s.raw, s.err
}

func newEngine(t *testing.T, scorer fusion.Scorer) *fusion.Engine {
	t.Helper()
	return fusion.NewEngine(config.Default().Model, scorer, zap.NewNop())
}

func filledMask(w, h int, v float64) *fusion.Mask {
	m := fusion.NewMask(w, h)
	for i := range m.Pixels {
		m.Pixels[i] = v
	}
	return m
}

func TestFuse_boundedScores(t *testing.T) {
	eng := newEngine(t, &stubScorer{raw: 0.5})

	vr, err := eng.Fuse(context.Background(), filledMask(8, 8, 0.9), filledMask(8, 8, 0.2), 1.3, 103.8)
	if err != nil {
		t.Fatalf("Fuse: %v", err)
	}

	for name, v := range map[string]float64{
		"confidence": vr.ConfidenceScore,
		"citizen":    vr.CitizenConfidence,
		"satellite":  vr.SatelliteConfidence,
		"anomaly":    vr.AnomalyScore,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s score %v out of [0,1]", name, v)
		}
	}
	if vr.CitizenSegmentation == nil || vr.ReferenceSegmentation == nil {
		t.Error("masks not carried through")
	}
}

func TestFuse_detectionUsesRawScore(t *testing.T) {
	tests := []struct {
		name         string
		raw          float64
		wantDetected bool
		wantScore    float64
	}{
		{"well above threshold", 0.9, false, 1.0},
		{"below threshold", 0.5, true, 1.0},
		{"strong anomaly", -0.4, true, 0.1},
		{"floor", -0.5, true, 0.0},
	}

	citizen := filledMask(8, 8, 1)
	reference := filledMask(8, 8, 1)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newEngine(t, &stubScorer{raw: tt.raw})
			vr, err := eng.Fuse(context.Background(), citizen, reference, 0, 0)
			if err != nil {
				t.Fatalf("Fuse: %v", err)
			}
			if vr.AnomalyDetected != tt.wantDetected {
				t.Errorf("detected = %v, want %v", vr.AnomalyDetected, tt.wantDetected)
			}
			if math.Abs(vr.AnomalyScore-tt.wantScore) > 1e-9 {
				t.Errorf("anomaly score = %v, want %v", vr.AnomalyScore, tt.wantScore)
			}
		})
	}
}

func TestFuse_scorerFailureIsNeutral(t *testing.T) {
	eng := newEngine(t, &stubScorer{err: errors.New("model unavailable")})

	vr, err := eng.Fuse(context.Background(), filledMask(8, 8, 1), filledMask(8, 8, 1), 0, 0)
	if err != nil {
		t.Fatalf("Fuse: %v", err)
	}
	if vr.AnomalyDetected {
		t.Error("scorer failure must not flag an anomaly")
	}
	if vr.AnomalyScore != 0.5 {
		t.Errorf("anomaly score = %v, want neutral 0.5", vr.AnomalyScore)
	}
}

func TestFuse_mismatchedMasksAreNeutral(t *testing.T) {
	eng := newEngine(t, &stubScorer{raw: -0.5})

	vr, err := eng.Fuse(context.Background(), filledMask(8, 8, 1), filledMask(4, 4, 1), 0, 0)
	if err != nil {
		t.Fatalf("Fuse: %v", err)
	}
	if vr.AnomalyDetected || vr.AnomalyScore != 0.5 {
		t.Errorf("mismatched masks: got (%v, %v), want neutral (0.5, false)",
			vr.AnomalyScore, vr.AnomalyDetected)
	}
}

func TestFuse_identicalStrongMasksScoreHigh(t *testing.T) {
	eng := newEngine(t, &stubScorer{raw: 0.5})

	// High coverage, coherent single region on both sides.
	vr, err := eng.Fuse(context.Background(), filledMask(16, 16, 1), filledMask(16, 16, 1), 1.3, 103.8)
	if err != nil {
		t.Fatalf("Fuse: %v", err)
	}
	if vr.CitizenConfidence != vr.SatelliteConfidence {
		t.Errorf("identical masks scored differently: %v vs %v",
			vr.CitizenConfidence, vr.SatelliteConfidence)
	}
	if vr.CitizenConfidence < 0.5 {
		t.Errorf("coherent full-coverage mask confidence = %v, want >= 0.5", vr.CitizenConfidence)
	}
}
