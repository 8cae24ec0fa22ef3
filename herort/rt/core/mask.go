package core

import "github.com/go-gl/mathgl/mgl32"

// MaskThreshold is the accumulation value below which a masked fragment is
// discarded.
const MaskThreshold float32 = 0.01

// Sampler reads a scalar at v-up uv. *Field implements it.
type Sampler interface {
	SampleUV(uv mgl32.Vec2) float32
}

// ClipToUV projects a clip-space position to the [0,1] uv space of the
// accumulation field: perspective divide, then remap from [-1,1].
func ClipToUV(clip mgl32.Vec4) mgl32.Vec2 {
	w := clip[3]
	if w == 0 {
		w = 1e-6
	}
	return mgl32.Vec2{
		(clip[0]/w + 1) * 0.5,
		(clip[1]/w + 1) * 0.5,
	}
}

// MaskDiscard reports whether a fragment at clip position is dropped. The
// edge is hard: there is no blending across the threshold.
func MaskDiscard(field Sampler, clip mgl32.Vec4) bool {
	if field == nil {
		return true
	}
	return field.SampleUV(ClipToUV(clip)) < MaskThreshold
}
