package core

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// HUDLine is one line of overlay text anchored at a pixel position, top-left
// origin.
type HUDLine struct {
	Text  string
	X, Y  float32
	Scale float32
	Color [4]float32
}

type glyph struct {
	uvMin [2]float32
	uvMax [2]float32
	size  [2]float32
	off   [2]float32
	adv   float32
}

// GlyphAtlas is a single channel texture with the printable ASCII range
// rasterized from one face.
type GlyphAtlas struct {
	Image  *image.Alpha
	glyphs map[rune]glyph
	ascent float32
	line   float32
}

const atlasSize = 512

// NewMonoAtlas rasterizes the embedded Go Mono face.
func NewMonoAtlas(size float64) (*GlyphAtlas, error) {
	return NewGlyphAtlas(gomono.TTF, size)
}

func NewGlyphAtlas(ttf []byte, size float64) (*GlyphAtlas, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	defer face.Close()

	a := &GlyphAtlas{
		Image:  image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize)),
		glyphs: make(map[rune]glyph),
	}
	m := face.Metrics()
	a.ascent = float32(m.Ascent.Ceil())
	a.line = float32(m.Height.Ceil())

	x, y, rowH := 2, 2, 0
	for r := rune(32); r < 127; r++ {
		bounds, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w, h := bounds.Dx(), bounds.Dy()
		if x+w >= atlasSize {
			x = 2
			y += rowH + 4
			rowH = 0
		}
		if y+h >= atlasSize {
			return nil, fmt.Errorf("glyph atlas overflow at %q", r)
		}
		draw.Draw(a.Image, image.Rect(x, y, x+w, y+h), mask, maskp, draw.Src)
		a.glyphs[r] = glyph{
			uvMin: [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			uvMax: [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			size:  [2]float32{float32(w), float32(h)},
			off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			adv:   float32(adv) / 64,
		}
		x += w + 4
		if h > rowH {
			rowH = h
		}
	}
	return a, nil
}

func (a *GlyphAtlas) LineHeight(scale float32) float32 {
	return a.line * scale
}

// Build appends two triangles per glyph, in clip space, to dst.
func (a *GlyphAtlas) Build(dst []TextVertex, lines []HUDLine, screenW, screenH int) []TextVertex {
	if screenW <= 0 || screenH <= 0 {
		return dst
	}
	sw, sh := float32(screenW), float32(screenH)
	for _, l := range lines {
		scale := l.Scale
		if scale == 0 {
			scale = 1
		}
		penX := l.X
		penY := l.Y + a.ascent*scale
		for _, r := range l.Text {
			g, ok := a.glyphs[r]
			if !ok {
				continue
			}
			x0 := (penX+g.off[0]*scale)/sw*2 - 1
			y0 := 1 - (penY+g.off[1]*scale)/sh*2
			x1 := (penX+(g.off[0]+g.size[0])*scale)/sw*2 - 1
			y1 := 1 - (penY+(g.off[1]+g.size[1])*scale)/sh*2

			dst = append(dst,
				TextVertex{Pos: [2]float32{x0, y0}, UV: g.uvMin, Color: l.Color},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: l.Color},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: l.Color},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: l.Color},
				TextVertex{Pos: [2]float32{x1, y1}, UV: g.uvMax, Color: l.Color},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: l.Color},
			)
			penX += g.adv * scale
		}
	}
	return dst
}
