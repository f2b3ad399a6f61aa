// Package model holds the narrow contracts to the segmentation and
// anomaly-scoring models, plus the default classical-CV implementations.
// Any learned model can be substituted behind the same interfaces without
// touching fusion or decision logic.
package model

import (
	"context"
	"image"

	"github.com/disintegration/imaging"

	"github.com/Sunny2307/GreenShield/internal/fusion"
)

// Segmenter produces a segmentation mask from an image. Implementations must
// be deterministic given identical input, and safe for concurrent use after
// construction.
type Segmenter interface {
	Segment(ctx context.Context, img image.Image) (*fusion.Mask, error)
}

// VegetationSegmenter is the default Segmenter: a green-dominance heuristic
// that flags pixels whose excess-green index clears zero. It stands in for a
// learned segmentation network behind the same contract.
type VegetationSegmenter struct {
	inputSize int
}

// NewVegetationSegmenter creates a segmenter that resizes inputs to
// inputSize x inputSize before segmentation, so all masks share dimensions.
func NewVegetationSegmenter(inputSize int) *VegetationSegmenter {
	return &VegetationSegmenter{inputSize: inputSize}
}

// Segment implements Segmenter. The per-pixel value is the normalized
// excess-green index ExG = (2G - R - B), clamped to [0,1]; binarization is
// left to the consumer's threshold.
func (s *VegetationSegmenter) Segment(_ context.Context, img image.Image) (*fusion.Mask, error) {
	resized := imaging.Resize(img, s.inputSize, s.inputSize, imaging.Lanczos)

	mask := fusion.NewMask(s.inputSize, s.inputSize)
	bounds := resized.Bounds()
	for y := 0; y < s.inputSize; y++ {
		for x := 0; x < s.inputSize; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(b >> 8)

			exg := (2*gf - rf - bf) / 255.0
			if exg < 0 {
				exg = 0
			} else if exg > 1 {
				exg = 1
			}
			mask.Set(x, y, exg)
		}
	}
	return mask, nil
}
