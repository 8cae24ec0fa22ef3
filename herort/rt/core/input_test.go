package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPointerTracker_Normalize(t *testing.T) {
	p := NewPointerTracker()
	if p.Active() || p.State() != PointerInactive {
		t.Fatalf("expected a new tracker to start inactive, got %v", p.State())
	}

	tests := []struct {
		x, y     float64
		expected mgl32.Vec2
	}{
		{0, 0, mgl32.Vec2{-1, 1}},
		{800, 600, mgl32.Vec2{1, -1}},
		{400, 300, mgl32.Vec2{0, 0}},
		{200, 450, mgl32.Vec2{-0.5, -0.5}},
		// out of window coordinates are kept as is
		{1600, -600, mgl32.Vec2{3, 3}},
	}
	for _, tc := range tests {
		p.Move(tc.x, tc.y, 800, 600)
		if p.State() != tc.expected {
			t.Errorf("Move(%v, %v): expected %v, got %v", tc.x, tc.y, tc.expected, p.State())
		}
	}

	p.Leave()
	if p.Active() || p.State() != PointerInactive {
		t.Errorf("expected Leave to restore the sentinel, got %v", p.State())
	}

	p.Move(10, 10, 0, 600)
	if p.State() != PointerInactive {
		t.Errorf("expected move with zero width to be ignored, got %v", p.State())
	}
}

func TestViewport_ResizeGuard(t *testing.T) {
	v := NewViewport(1920, 1080)
	if v.Aspect() != float32(1920)/float32(1080) {
		t.Fatalf("expected aspect 1920/1080, got %v", v.Aspect())
	}

	tests := []struct {
		w, h     int
		accepted bool
		aspect   float32
	}{
		{0, 500, false, float32(1920) / float32(1080)},
		{500, 0, false, float32(1920) / float32(1080)},
		{-4, 3, false, float32(1920) / float32(1080)},
		{1000, 500, true, 2},
		{0, 0, false, 2},
		{333, 777, true, float32(333) / float32(777)},
	}
	for _, tc := range tests {
		if got := v.Resize(tc.w, tc.h); got != tc.accepted {
			t.Errorf("Resize(%d, %d): expected accepted=%v, got %v", tc.w, tc.h, tc.accepted, got)
		}
		if v.Aspect() != tc.aspect {
			t.Errorf("Resize(%d, %d): expected aspect %v, got %v", tc.w, tc.h, tc.aspect, v.Aspect())
		}
	}

	empty := NewViewport(0, 0)
	if empty.Valid() || empty.Aspect() != 1 {
		t.Errorf("expected an unsized viewport to report aspect 1, got %v", empty.Aspect())
	}
}

func TestFrameClock_Monotonic(t *testing.T) {
	var c FrameClock
	c.Tick(100)
	if c.Elapsed() != 0 || c.Delta() != 0 {
		t.Fatalf("expected first tick to be the origin, got elapsed %v delta %v", c.Elapsed(), c.Delta())
	}

	c.Tick(100.5)
	if !near(c.Delta(), 0.5, 1e-6) || !near(c.Elapsed(), 0.5, 1e-6) {
		t.Errorf("expected delta 0.5, got %v (elapsed %v)", c.Delta(), c.Elapsed())
	}

	// host clock jumps backwards
	c.Tick(99)
	if c.Delta() != 0 {
		t.Errorf("expected non-negative delta, got %v", c.Delta())
	}
	if !near(c.Elapsed(), 0.5, 1e-6) {
		t.Errorf("expected elapsed to hold, got %v", c.Elapsed())
	}

	c.Tick(101)
	if !near(c.Delta(), 0.5, 1e-6) || !near(c.Elapsed(), 1, 1e-6) {
		t.Errorf("expected delta 0.5 from last accepted time, got %v (elapsed %v)", c.Delta(), c.Elapsed())
	}
	if c.Frames() != 4 {
		t.Errorf("expected 4 frames, got %d", c.Frames())
	}
}
