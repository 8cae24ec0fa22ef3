package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestClipToUV(t *testing.T) {
	tests := []struct {
		name     string
		clip     mgl32.Vec4
		expected mgl32.Vec2
	}{
		{"center", mgl32.Vec4{0, 0, 0.3, 1}, mgl32.Vec2{0.5, 0.5}},
		{"perspective divide", mgl32.Vec4{2, -2, 1, 2}, mgl32.Vec2{1, 0}},
		{"top left", mgl32.Vec4{-4, 4, 0, 4}, mgl32.Vec2{0, 1}},
	}
	for _, tc := range tests {
		got := ClipToUV(tc.clip)
		if !near(got[0], tc.expected[0], 1e-6) || !near(got[1], tc.expected[1], 1e-6) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestMaskDiscard_Threshold(t *testing.T) {
	f := NewField(1, 1)
	clip := mgl32.Vec4{0.1, 0.2, 0.5, 1}

	tests := []struct {
		value   float32
		discard bool
	}{
		{0, true},
		{0.0099, true},
		{MaskThreshold, false},
		{0.5, false},
		{1, false},
	}
	for _, tc := range tests {
		f.Data[0] = tc.value
		if got := MaskDiscard(f, clip); got != tc.discard {
			t.Errorf("value %v: expected discard=%v, got %v", tc.value, tc.discard, got)
		}
	}
}

func TestMaskDiscard_Deterministic(t *testing.T) {
	acc := NewSoftwareAccumulator(16, 9, DefaultFeedbackParams())
	for i := 0; i < 5; i++ {
		acc.Update(mgl32.Vec2{0.1, -0.3}, 16.0/9.0, 1.0/60)
	}
	field := acc.Texture()

	for x := float32(-1); x <= 1; x += 0.1 {
		for y := float32(-1); y <= 1; y += 0.1 {
			clip := mgl32.Vec4{x * 3, y * 3, 1, 3}
			first := MaskDiscard(field, clip)
			for k := 0; k < 3; k++ {
				if MaskDiscard(field, clip) != first {
					t.Fatalf("clip %v: discard decision changed between calls", clip)
				}
			}
		}
	}
}

func TestMaskDiscard_ZeroInitialState(t *testing.T) {
	acc := NewSoftwareAccumulator(8, 8, DefaultFeedbackParams())
	for x := float32(-1); x <= 1; x += 0.25 {
		for y := float32(-1); y <= 1; y += 0.25 {
			if !MaskDiscard(acc.Texture(), mgl32.Vec4{x, y, 0.5, 1}) {
				t.Fatalf("expected every fragment discarded before the first accumulation, kept (%v,%v)", x, y)
			}
		}
	}
	if !MaskDiscard(nil, mgl32.Vec4{0, 0, 0, 1}) {
		t.Error("expected a missing field to discard")
	}
}
