package fusion

import (
	"encoding/base64"
	"testing"
)

func uniformMask(w, h int, v float64) *Mask {
	m := NewMask(w, h)
	for i := range m.Pixels {
		m.Pixels[i] = v
	}
	return m
}

func TestMaskValidate(t *testing.T) {
	if err := NewMask(4, 4).Validate(); err != nil {
		t.Fatalf("valid mask rejected: %v", err)
	}

	bad := &Mask{Width: 4, Height: 4, Pixels: make([]float64, 3)}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for pixel count mismatch")
	}

	zero := &Mask{Width: 0, Height: 4}
	if err := zero.Validate(); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestCoverage(t *testing.T) {
	if got := NewMask(4, 4).Coverage(); got != 0 {
		t.Errorf("empty mask coverage = %v, want 0", got)
	}
	if got := uniformMask(4, 4, 1).Coverage(); got != 1 {
		t.Errorf("full mask coverage = %v, want 1", got)
	}

	m := NewMask(2, 2)
	m.Set(0, 0, 1)
	m.Set(1, 1, 1)
	if got := m.Coverage(); got != 0.5 {
		t.Errorf("half mask coverage = %v, want 0.5", got)
	}
}

func TestEdgeDensity_verticalSplit(t *testing.T) {
	// Left half positive, right half zero: one boundary column of edges.
	m := NewMask(4, 4)
	for y := 0; y < 4; y++ {
		m.Set(0, y, 1)
		m.Set(1, y, 1)
	}

	got := m.EdgeDensity(0.5)
	want := 4.0 / 16.0
	if got != want {
		t.Errorf("edge density = %v, want %v", got, want)
	}

	if got := uniformMask(4, 4, 1).EdgeDensity(0.5); got != 0 {
		t.Errorf("uniform mask edge density = %v, want 0", got)
	}
}

func TestConnectedComponents(t *testing.T) {
	if got := NewMask(4, 4).ConnectedComponents(0.5); got != 0 {
		t.Errorf("empty mask components = %d, want 0", got)
	}
	if got := uniformMask(4, 4, 1).ConnectedComponents(0.5); got != 1 {
		t.Errorf("uniform mask components = %d, want 1", got)
	}

	// Two diagonal blobs, not 4-connected.
	m := NewMask(4, 4)
	m.Set(0, 0, 1)
	m.Set(3, 3, 1)
	if got := m.ConnectedComponents(0.5); got != 2 {
		t.Errorf("two blob components = %d, want 2", got)
	}
}

func TestMeanAbsDiff(t *testing.T) {
	a := uniformMask(4, 4, 1)
	b := NewMask(4, 4)

	got, err := MeanAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MeanAbsDiff: %v", err)
	}
	if got != 1 {
		t.Errorf("diff = %v, want 1", got)
	}

	same, _ := MeanAbsDiff(a, a)
	if same != 0 {
		t.Errorf("self diff = %v, want 0", same)
	}

	if _, err := MeanAbsDiff(a, NewMask(2, 2)); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestIoU(t *testing.T) {
	a := uniformMask(4, 4, 1)

	self, err := IoU(a, a, 0.5)
	if err != nil {
		t.Fatalf("IoU: %v", err)
	}
	if self != 1 {
		t.Errorf("self IoU = %v, want 1", self)
	}

	// Empty union is defined as zero, not NaN.
	empty, _ := IoU(NewMask(4, 4), NewMask(4, 4), 0.5)
	if empty != 0 {
		t.Errorf("empty union IoU = %v, want 0", empty)
	}

	disjoint := NewMask(4, 4)
	disjoint.Set(0, 0, 1)
	other := NewMask(4, 4)
	other.Set(3, 3, 1)
	d, _ := IoU(disjoint, other, 0.5)
	if d != 0 {
		t.Errorf("disjoint IoU = %v, want 0", d)
	}

	if _, err := IoU(a, NewMask(2, 2), 0.5); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestEncodeBase64(t *testing.T) {
	m := NewMask(2, 2)
	m.Set(0, 0, 1)
	m.Set(1, 0, 0.5)
	m.Set(0, 1, -3) // clamps to 0
	m.Set(1, 1, 7)  // clamps to 255

	raw, err := base64.StdEncoding.DecodeString(m.EncodeBase64())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 4 {
		t.Fatalf("decoded %d bytes, want 4", len(raw))
	}
	if raw[0] != 255 || raw[2] != 0 || raw[3] != 255 {
		t.Errorf("unexpected bytes %v", raw)
	}
}
