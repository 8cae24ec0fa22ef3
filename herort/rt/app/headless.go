package app

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/gekko3d/glowmask/herort/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// HeadlessOptions drive the accumulation without a window or a GPU.
type HeadlessOptions struct {
	Width    int
	Height   int
	Delta    float32
	Feedback core.FeedbackParams
	// Path holds one pointer position per frame, in normalized device
	// coordinates. core.PointerInactive marks frames with no pointer.
	Path []mgl32.Vec2
}

func DefaultHeadlessOptions() HeadlessOptions {
	return HeadlessOptions{
		Width:    320,
		Height:   180,
		Delta:    1.0 / 60.0,
		Feedback: core.DefaultFeedbackParams(),
	}
}

// CirclePath is a pointer orbiting the view center once over frames, followed
// by idle frames with the pointer outside the view.
func CirclePath(frames, idle int, radius float32) []mgl32.Vec2 {
	path := make([]mgl32.Vec2, 0, frames+idle)
	for i := 0; i < frames; i++ {
		s, c := math.Sincos(2 * math.Pi * float64(i) / float64(frames))
		path = append(path, mgl32.Vec2{radius * float32(c), radius * float32(s)})
	}
	for i := 0; i < idle; i++ {
		path = append(path, core.PointerInactive)
	}
	return path
}

// RenderHeadless replays opts.Path through a software accumulator and returns
// the final field.
func RenderHeadless(opts HeadlessOptions) (*core.Field, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid headless size %dx%d", opts.Width, opts.Height)
	}
	acc := core.NewSoftwareAccumulator(opts.Width, opts.Height, opts.Feedback)
	aspect := float32(opts.Width) / float32(opts.Height)
	for _, p := range opts.Path {
		acc.Update(p, aspect, opts.Delta)
	}
	return acc.Texture(), nil
}

// FieldImage maps accumulation values to 16 bit gray, row 0 at the top.
func FieldImage(f *core.Field) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := f.At(x, y)
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(float64(v) * 0xffff))})
		}
	}
	return img
}

// MaskImage is white where a masked surface would be drawn.
func MaskImage(f *core.Field) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if f.At(x, y) >= core.MaskThreshold {
				img.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return img
}

func WriteFieldPNG(w io.Writer, f *core.Field) error {
	return png.Encode(w, FieldImage(f))
}

func WriteMaskPNG(w io.Writer, f *core.Field) error {
	return png.Encode(w, MaskImage(f))
}
