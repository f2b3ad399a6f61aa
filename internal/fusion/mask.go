// Package fusion combines two independent segmentation masks (citizen photo
// and reference imagery) into confidence and anomaly metrics.
package fusion

import (
	"encoding/base64"
	"fmt"
	"math"
)

// Mask is a dense single-channel segmentation output with values in [0,1].
// Pixels above the binarization threshold count as positive detections.
type Mask struct {
	Width  int
	Height int
	Pixels []float64 // row-major, len == Width*Height
}

// NewMask allocates a zeroed mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Pixels: make([]float64, width*height)}
}

// At returns the pixel value at (x, y) without bounds checking.
func (m *Mask) At(x, y int) float64 { return m.Pixels[y*m.Width+x] }

// Set assigns the pixel value at (x, y) without bounds checking.
func (m *Mask) Set(x, y int, v float64) { m.Pixels[y*m.Width+x] = v }

// Validate checks structural consistency.
func (m *Mask) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("mask dimensions must be positive, got %dx%d", m.Width, m.Height)
	}
	if len(m.Pixels) != m.Width*m.Height {
		return fmt.Errorf("mask has %d pixels, want %d", len(m.Pixels), m.Width*m.Height)
	}
	return nil
}

// Coverage is the mean pixel value: the fraction of the scene detected as
// positive for a hard {0,1} mask.
func (m *Mask) Coverage() float64 {
	if len(m.Pixels) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m.Pixels {
		sum += v
	}
	return sum / float64(len(m.Pixels))
}

// EdgeDensity is the fraction of pixels lying on a detected boundary: a pixel
// is an edge when its binarized value differs from any 4-neighbour.
func (m *Mask) EdgeDensity(threshold float64) float64 {
	if m.Width == 0 || m.Height == 0 {
		return 0
	}
	edges := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := m.At(x, y) > threshold
			if x+1 < m.Width && (m.At(x+1, y) > threshold) != v {
				edges++
				continue
			}
			if y+1 < m.Height && (m.At(x, y+1) > threshold) != v {
				edges++
			}
		}
	}
	return float64(edges) / float64(m.Width*m.Height)
}

// ConnectedComponents counts 4-connected regions of positive pixels via
// iterative flood fill.
func (m *Mask) ConnectedComponents(threshold float64) int {
	visited := make([]bool, len(m.Pixels))
	count := 0

	var stack []int
	for start, v := range m.Pixels {
		if visited[start] || v <= threshold {
			continue
		}
		count++
		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%m.Width, idx/m.Width

			for _, n := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
				nx, ny := n[0], n[1]
				if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
					continue
				}
				ni := ny*m.Width + nx
				if !visited[ni] && m.Pixels[ni] > threshold {
					visited[ni] = true
					stack = append(stack, ni)
				}
			}
		}
	}
	return count
}

// MeanAbsDiff is the mean absolute per-pixel difference between two masks of
// identical dimensions.
func MeanAbsDiff(a, b *Mask) (float64, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("mask dimensions differ: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	if len(a.Pixels) == 0 {
		return 0, nil
	}
	var sum float64
	for i := range a.Pixels {
		sum += math.Abs(a.Pixels[i] - b.Pixels[i])
	}
	return sum / float64(len(a.Pixels)), nil
}

// IoU is the intersection-over-union of two masks binarized at threshold.
// Returns 0 when the union is empty.
func IoU(a, b *Mask, threshold float64) (float64, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("mask dimensions differ: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	intersection, union := 0, 0
	for i := range a.Pixels {
		pa := a.Pixels[i] > threshold
		pb := b.Pixels[i] > threshold
		if pa && pb {
			intersection++
		}
		if pa || pb {
			union++
		}
	}
	if union == 0 {
		return 0, nil
	}
	return float64(intersection) / float64(union), nil
}

// EncodeBase64 serialises the mask as base64 of 8-bit pixel values, the wire
// form expected by dashboard clients.
func (m *Mask) EncodeBase64() string {
	buf := make([]byte, len(m.Pixels))
	for i, v := range m.Pixels {
		buf[i] = byte(clamp01(v) * 255)
	}
	return base64.StdEncoding.EncodeToString(buf)
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
