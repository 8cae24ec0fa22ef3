package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

// nearVec3 compares per component with an absolute tolerance.
func nearVec3(a, b mgl32.Vec3, eps float32) bool {
	return near(a[0], b[0], eps) && near(a[1], b[1], eps) && near(a[2], b[2], eps)
}

func TestAccumulateTexel_Scenarios(t *testing.T) {
	params := FeedbackParams{Radius: 0.375, Duration: 2.5}
	center := mgl32.Vec2{0.5, 0.5}
	// uv 0.5+0.1875 maps to x = 0.375 in the centered frame (aspect 1).
	atRadius := mgl32.Vec2{0.6875, 0.5}
	origin := mgl32.Vec2{0, 0}

	tests := []struct {
		name     string
		prev     float32
		uv       mgl32.Vec2
		expected float32
	}{
		{"pointer on texel, mid value", 0.5, center, 0.56},
		{"pointer on texel, from empty", 0, center, 0.1},
		{"pointer at radius, mid value", 0.5, atRadius, 0.46},
		{"pointer at radius, from empty", 0, atRadius, 0},
		{"pointer on texel, saturated", 1, center, 1},
	}

	for _, tc := range tests {
		got := AccumulateTexel(tc.prev, tc.uv, origin, 1, 0.1, params)
		if !near(got, tc.expected, 1e-6) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestDecay_Capped(t *testing.T) {
	tests := []struct {
		dt, duration, expected float32
	}{
		{0.1, 2.5, 0.04},
		{0, 2.5, 0},
		{10, 2.5, MaxDecayPerFrame},
		{0.25, 2.5, MaxDecayPerFrame},
		{-1, 2.5, 0},
		{0.1, 0, MaxDecayPerFrame},
	}
	for _, tc := range tests {
		if got := Decay(tc.dt, tc.duration); !near(got, tc.expected, 1e-7) {
			t.Errorf("Decay(%v, %v): expected %v, got %v", tc.dt, tc.duration, tc.expected, got)
		}
	}
}

func TestProximity_Falloff(t *testing.T) {
	r := DefaultPointerRadius
	origin := mgl32.Vec2{0, 0}

	if f := Proximity(mgl32.Vec2{0.5, 0.5}, origin, 1, r); f != 1 {
		t.Errorf("expected full strength at distance 0, got %v", f)
	}
	// Inner 10% of the radius is held at full strength.
	inner := mgl32.Vec2{0.5 + r*InnerRadiusFraction/2*0.9, 0.5}
	if f := Proximity(inner, origin, 1, r); f != 1 {
		t.Errorf("expected full strength inside inner radius, got %v", f)
	}
	if f := Proximity(mgl32.Vec2{1, 1}, origin, 1, r); f != 0 {
		t.Errorf("expected zero beyond radius, got %v", f)
	}
	// Aspect stretches the horizontal axis: the same uv offset is farther.
	uv := mgl32.Vec2{0.6, 0.5}
	if Proximity(uv, origin, 2, r) >= Proximity(uv, origin, 1, r) {
		t.Errorf("expected wider aspect to reduce horizontal falloff")
	}
}

func TestProximity_InactiveSentinel(t *testing.T) {
	for _, radius := range []float32{0.01, 0.375, 5, 50} {
		for _, uv := range []mgl32.Vec2{{0, 0}, {0.5, 0.5}, {1, 1}} {
			if f := Proximity(uv, PointerInactive, 1.7, radius); f != 0 {
				t.Errorf("radius %v uv %v: expected 0 for inactive pointer, got %v", radius, uv, f)
			}
		}
	}
}

func TestAccumulateTexel_StaysInUnitRange(t *testing.T) {
	params := DefaultFeedbackParams()
	pointers := []mgl32.Vec2{{0, 0}, {0.3, -0.2}, {1, 1}, {-5, 3}, PointerInactive}
	dts := []float32{0, 0.001, 0.016, 0.1, 1, 100}
	for p := float32(0); p <= 1; p += 0.125 {
		for _, ptr := range pointers {
			for _, dt := range dts {
				for u := float32(0); u <= 1; u += 0.25 {
					got := AccumulateTexel(p, mgl32.Vec2{u, 1 - u}, ptr, 1.5, dt, params)
					if got < 0 || got > 1 {
						t.Fatalf("prev %v ptr %v dt %v: value %v left [0,1]", p, ptr, dt, got)
					}
				}
			}
		}
	}
}

func TestSoftwareAccumulator_HeldPointerGrows(t *testing.T) {
	acc := NewSoftwareAccumulator(8, 8, FeedbackParams{Radius: 0.375, Duration: 2.5})
	pointer := mgl32.Vec2{0, 0}

	prevCenter := float32(0)
	for i := 0; i < 40; i++ {
		f := acc.Update(pointer, 1, 1.0/60)
		center := f.At(4, 4)
		corner := f.At(0, 0)
		if center < prevCenter {
			t.Fatalf("frame %d: center decreased from %v to %v", i, prevCenter, center)
		}
		if center <= corner {
			t.Fatalf("frame %d: center %v not above corner %v", i, center, corner)
		}
		prevCenter = center
	}
	if prevCenter != 1 {
		t.Errorf("expected center to saturate at 1, got %v", prevCenter)
	}
}

func TestSoftwareAccumulator_InactiveDecays(t *testing.T) {
	acc := NewSoftwareAccumulator(8, 8, DefaultFeedbackParams())
	for i := 0; i < 10; i++ {
		acc.Update(mgl32.Vec2{0.2, 0.1}, 1, 1.0/60)
	}

	dt := float32(0.05)
	step := Decay(dt, acc.Params.Duration)
	prev := append([]float32(nil), acc.Texture().Data...)
	for frame := 0; frame < 60; frame++ {
		f := acc.Update(PointerInactive, 1, dt)
		for i, v := range f.Data {
			if v > prev[i] {
				t.Fatalf("frame %d texel %d: increased from %v to %v", frame, i, prev[i], v)
			}
			if prev[i]-v > step+1e-6 {
				t.Fatalf("frame %d texel %d: dropped %v, more than %v", frame, i, prev[i]-v, step)
			}
		}
		copy(prev, f.Data)
	}
	if c := acc.Texture().Coverage(MaskThreshold); c != 0 {
		t.Errorf("expected the trail to fade out, coverage %v", c)
	}
}

func TestSoftwareAccumulator_ResizeResets(t *testing.T) {
	acc := NewSoftwareAccumulator(4, 4, DefaultFeedbackParams())
	// Pointer on the center of texel (1,1).
	acc.Update(mgl32.Vec2{-0.25, 0.25}, 1, 0.1)
	if acc.Texture().Coverage(MaskThreshold) == 0 {
		t.Fatal("expected some accumulation before resize")
	}

	if acc.Resize(0, 10) {
		t.Error("expected zero width resize to be rejected")
	}
	if acc.Texture().Width != 4 {
		t.Errorf("rejected resize must keep buffers, width %d", acc.Texture().Width)
	}

	if !acc.Resize(6, 3) {
		t.Fatal("expected valid resize to be accepted")
	}
	tex := acc.Texture()
	if tex.Width != 6 || tex.Height != 3 {
		t.Errorf("expected 6x3 after resize, got %dx%d", tex.Width, tex.Height)
	}
	for i, v := range tex.Data {
		if v != 0 {
			t.Fatalf("texel %d not reset: %v", i, v)
		}
	}
}

func TestField_SampleUVOrientation(t *testing.T) {
	f := NewField(2, 2)
	f.Data[0] = 1 // top-left
	if got := f.SampleUV(mgl32.Vec2{0.25, 0.75}); got != 1 {
		t.Errorf("expected v-up uv (0.25,0.75) to hit the top-left texel, got %v", got)
	}
	if got := f.SampleUV(mgl32.Vec2{0.25, 0.25}); got != 0 {
		t.Errorf("expected bottom-left texel to be empty, got %v", got)
	}
	if got := f.SampleUV(mgl32.Vec2{-3, 7}); got != 1 {
		t.Errorf("expected out of range uv to clamp to the edge, got %v", got)
	}
	if uv := f.TexelUV(0, 0); uv != (mgl32.Vec2{0.25, 0.75}) {
		t.Errorf("unexpected texel center %v", uv)
	}
}
