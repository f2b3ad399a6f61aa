package photo

import (
	"image"
	"math"
)

// Quality sub-score weights and normalization constants.
const (
	blurWeight       = 0.4
	brightnessWeight = 0.3
	contrastWeight   = 0.3

	blurVarianceScale = 1000.0
	contrastScale     = 50.0
	midGray           = 128.0
)

// QualityScore computes the objective quality of an image from blur,
// brightness, and contrast. It is a pure function of pixel data: the same
// image always yields the same score.
//
//	quality = 0.4*blur + 0.3*brightness + 0.3*contrast
//	blur       = min(laplacianVariance/1000, 1)
//	brightness = 1 - |meanGray - 128|/128
//	contrast   = min(stddevGray/50, 1)
func QualityScore(img image.Image) float64 {
	gray, w, h := grayPixels(img)
	if w == 0 || h == 0 {
		return 0
	}

	blur := clamp01(laplacianVariance(gray, w, h) / blurVarianceScale)

	mean, stddev := meanStddev(gray)
	brightness := clamp01(1.0 - math.Abs(mean-midGray)/midGray)
	contrast := clamp01(stddev / contrastScale)

	return clamp01(blurWeight*blur + brightnessWeight*brightness + contrastWeight*contrast)
}

// grayPixels converts an image to a row-major grayscale buffer using the
// standard luminance weights (0.299 R + 0.587 G + 0.114 B).
func grayPixels(img image.Image) ([]float64, int, int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}

	gray := make([]float64, w*h)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels; scale down to 8-bit range.
			gray[i] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			i++
		}
	}
	return gray, w, h
}

// laplacianVariance applies the 4-neighbour second-derivative kernel
// [[0,1,0],[1,-4,1],[0,1,0]] to interior pixels and returns the variance of
// the response. Sharp images have strong second derivatives at edges.
func laplacianVariance(gray []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}

	responses := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			center := gray[y*w+x]
			resp := gray[(y-1)*w+x] + gray[(y+1)*w+x] + gray[y*w+x-1] + gray[y*w+x+1] - 4*center
			responses = append(responses, resp)
		}
	}
	_, stddev := meanStddev(responses)
	return stddev * stddev
}

func meanStddev(vals []float64) (mean, stddev float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	var sumSq float64
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(len(vals)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
