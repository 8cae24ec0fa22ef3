package core

// Viewport tracks the drawable size. Aspect is always > 0: resizes with a
// zero or negative dimension are ignored and the previous aspect is kept.
type Viewport struct {
	Width  int
	Height int
	aspect float32
}

func NewViewport(width, height int) *Viewport {
	v := &Viewport{aspect: 1}
	v.Resize(width, height)
	return v
}

// Resize applies a new size and reports whether it was accepted.
func (v *Viewport) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	v.Width = width
	v.Height = height
	v.aspect = float32(width) / float32(height)
	return true
}

func (v *Viewport) Aspect() float32 {
	if v.aspect <= 0 {
		return 1
	}
	return v.aspect
}

// Valid reports whether a size has ever been accepted.
func (v *Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}
