package core

import "github.com/go-gl/mathgl/mgl32"

// PointerInactive is the sentinel written when no pointer hovers the view.
// It lies far enough outside the unit square that the proximity falloff is
// zero for any radius the accumulator uses.
var PointerInactive = mgl32.Vec2{10, 10}

// PointerTracker converts window-space pointer events into normalized
// device coordinates. Last write wins.
type PointerTracker struct {
	pos mgl32.Vec2
}

func NewPointerTracker() *PointerTracker {
	return &PointerTracker{pos: PointerInactive}
}

// Move stores (2*x/width - 1, 1 - 2*y/height). Events with a degenerate
// window size are dropped since the position cannot be normalized.
func (p *PointerTracker) Move(x, y float64, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.pos = mgl32.Vec2{
		float32(2*x/float64(width) - 1),
		float32(1 - 2*y/float64(height)),
	}
}

// Leave resets the pointer to the inactive sentinel.
func (p *PointerTracker) Leave() {
	p.pos = PointerInactive
}

func (p *PointerTracker) State() mgl32.Vec2 {
	return p.pos
}

func (p *PointerTracker) Active() bool {
	return p.pos != PointerInactive
}
