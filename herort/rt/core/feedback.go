package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultPointerRadius   float32 = 0.375
	DefaultPointerDuration float32 = 2.5

	// MaxDecayPerFrame caps decay so a long frame cannot wipe the trail at once.
	MaxDecayPerFrame float32 = 0.1
	// ContributionGain scales the proximity falloff added each frame.
	ContributionGain float32 = 0.1
	// InnerRadiusFraction is the share of the radius held at full strength.
	InnerRadiusFraction float32 = 0.1
)

// FeedbackParams are the tunables of the accumulation pass.
type FeedbackParams struct {
	Radius   float32
	Duration float32
}

func DefaultFeedbackParams() FeedbackParams {
	return FeedbackParams{
		Radius:   DefaultPointerRadius,
		Duration: DefaultPointerDuration,
	}
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Smoothstep(edge0, edge1, x float32) float32 {
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Decay returns the amount removed from a texel in one frame.
func Decay(dt, duration float32) float32 {
	if duration <= 0 {
		return MaxDecayPerFrame
	}
	return clamp(dt/duration, 0, MaxDecayPerFrame)
}

// Proximity is the falloff f of the pointer at a texel. uv is in [0,1] with v
// pointing up, pointer is in normalized device space. Both are mapped to an
// aspect-scaled centered frame before measuring distance.
func Proximity(uv, pointer mgl32.Vec2, aspect, radius float32) float32 {
	if pointer == PointerInactive {
		return 0
	}
	p := mgl32.Vec2{(uv[0] - 0.5) * 2 * aspect, (uv[1] - 0.5) * 2}
	m := mgl32.Vec2{pointer[0] * aspect, pointer[1]}
	d := p.Sub(m).Len()
	return 1 - Smoothstep(radius*InnerRadiusFraction, radius, d)
}

// AccumulateTexel is the per-texel update of the feedback pass. The feedback
// material in package shaders evaluates the same expression on the GPU.
func AccumulateTexel(prev float32, uv, pointer mgl32.Vec2, aspect, dt float32, params FeedbackParams) float32 {
	r := clamp(prev-Decay(dt, params.Duration), 0, 1)
	f := Proximity(uv, pointer, aspect, params.Radius)
	return clamp(r+f*ContributionGain, 0, 1)
}

// Field is a single channel scalar grid. Row 0 is the top of the view, as in
// a framebuffer.
type Field struct {
	Width  int
	Height int
	Data   []float32
}

func NewField(width, height int) *Field {
	return &Field{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height),
	}
}

func (f *Field) At(x, y int) float32 {
	return f.Data[y*f.Width+x]
}

// TexelUV returns the center of texel (x,y) in v-up UV space.
func (f *Field) TexelUV(x, y int) mgl32.Vec2 {
	return mgl32.Vec2{
		(float32(x) + 0.5) / float32(f.Width),
		1 - (float32(y)+0.5)/float32(f.Height),
	}
}

// SampleUV does a nearest lookup at v-up uv, clamping to the edge.
func (f *Field) SampleUV(uv mgl32.Vec2) float32 {
	if f == nil || f.Width == 0 || f.Height == 0 {
		return 0
	}
	x := int(math.Floor(float64(uv[0] * float32(f.Width))))
	y := int(math.Floor(float64((1 - uv[1]) * float32(f.Height))))
	if x < 0 {
		x = 0
	} else if x >= f.Width {
		x = f.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.Height {
		y = f.Height - 1
	}
	return f.At(x, y)
}

// Coverage is the fraction of texels at or above threshold.
func (f *Field) Coverage(threshold float32) float32 {
	if f == nil || len(f.Data) == 0 {
		return 0
	}
	n := 0
	for _, v := range f.Data {
		if v >= threshold {
			n++
		}
	}
	return float32(n) / float32(len(f.Data))
}

func (f *Field) clear() {
	for i := range f.Data {
		f.Data[i] = 0
	}
}

// SoftwareAccumulator runs the feedback pass on the CPU. It keeps the same
// double buffering as the GPU path: the frame reads the previous snapshot and
// writes a target, which then becomes the snapshot for the next frame.
type SoftwareAccumulator struct {
	Params FeedbackParams

	target   *Field
	snapshot *Field
}

func NewSoftwareAccumulator(width, height int, params FeedbackParams) *SoftwareAccumulator {
	a := &SoftwareAccumulator{Params: params}
	a.Resize(width, height)
	return a
}

// Resize reallocates both buffers and resets accumulation to zero. Old
// content is not resampled. Degenerate sizes are ignored.
func (a *SoftwareAccumulator) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	a.target = NewField(width, height)
	a.snapshot = NewField(width, height)
	return true
}

// Reset zeroes the accumulation without reallocating.
func (a *SoftwareAccumulator) Reset() {
	if a.target == nil {
		return
	}
	a.target.clear()
	a.snapshot.clear()
}

// Update runs one frame and returns the freshly written field.
func (a *SoftwareAccumulator) Update(pointer mgl32.Vec2, aspect, dt float32) *Field {
	if a.target == nil {
		return nil
	}
	if dt < 0 {
		dt = 0
	}
	for y := 0; y < a.target.Height; y++ {
		for x := 0; x < a.target.Width; x++ {
			i := y*a.target.Width + x
			uv := a.target.TexelUV(x, y)
			a.target.Data[i] = AccumulateTexel(a.snapshot.Data[i], uv, pointer, aspect, dt, a.Params)
		}
	}
	a.target, a.snapshot = a.snapshot, a.target
	return a.snapshot
}

// Texture is the most recently written field.
func (a *SoftwareAccumulator) Texture() *Field {
	return a.snapshot
}
