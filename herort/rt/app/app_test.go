package app

import "testing"

func TestAdvanceFeedsFrameInputs(t *testing.T) {
	a := NewApp(nil, DefaultOptions())
	a.Advance(1.5, 0.25)
	a.Advance(1.75, 0.25)

	in := a.frameInputs()
	if in.Elapsed != 1.75 || in.Delta != 0.25 {
		t.Errorf("expected elapsed 1.75 and delta 0.25, got %v %v", in.Elapsed, in.Delta)
	}
	if in.Aspect != 1 {
		t.Errorf("expected aspect of the unit viewport, got %v", in.Aspect)
	}
	if len(a.HUD) != 0 {
		t.Errorf("expected no HUD lines outside debug mode, got %d", len(a.HUD))
	}
}
