package photo

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func grayImage(w, h int, v uint8) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func checkerboard(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestQualityScore_uniformMidGray(t *testing.T) {
	// Zero blur variance, zero contrast, perfect brightness: only the
	// brightness term contributes.
	got := QualityScore(grayImage(32, 32, 128))
	if math.Abs(got-0.3) > 1e-9 {
		t.Errorf("quality = %v, want 0.3", got)
	}
}

func TestQualityScore_bounds(t *testing.T) {
	for _, img := range []image.Image{
		grayImage(32, 32, 0),
		grayImage(32, 32, 255),
		grayImage(1, 1, 100),
		checkerboard(32, 32),
	} {
		got := QualityScore(img)
		if got < 0 || got > 1 {
			t.Errorf("quality %v out of [0,1]", got)
		}
	}
}

func TestQualityScore_sharpBeatsFlat(t *testing.T) {
	flat := QualityScore(grayImage(32, 32, 128))
	sharp := QualityScore(checkerboard(32, 32))
	if sharp <= flat {
		t.Errorf("checkerboard scored %v, flat gray %v; want sharper image higher", sharp, flat)
	}
}

func TestQualityScore_deterministic(t *testing.T) {
	img := checkerboard(16, 16)
	if a, b := QualityScore(img), QualityScore(img); a != b {
		t.Errorf("same image scored %v then %v", a, b)
	}
}

func TestQualityScore_emptyImage(t *testing.T) {
	if got := QualityScore(image.NewNRGBA(image.Rect(0, 0, 0, 0))); got != 0 {
		t.Errorf("empty image quality = %v, want 0", got)
	}
}
