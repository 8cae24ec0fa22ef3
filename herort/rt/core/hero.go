package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// HeroParams places the two models of the hero scene.
type HeroParams struct {
	HeadTwist        float32 // about Y, radians
	HelmetScale      float32
	HelmetPosition   mgl32.Vec3
	WireframeOpacity float32
	AmbientColor     [3]float32
	AmbientIntensity float32
}

func DefaultHeroParams() HeroParams {
	return HeroParams{
		HeadTwist:        math.Pi * 0.01,
		HelmetScale:      3.5,
		HelmetPosition:   mgl32.Vec3{0, 1.5, 0.75},
		WireframeOpacity: DefaultWireframeOpacity,
		AmbientColor:     [3]float32{1, 1, 1},
		AmbientIntensity: math.Pi,
	}
}

// AssembleHero builds the scene from the loaded head and helmet trees. Either
// may be nil when loading failed; the rest of the scene is still built. The
// inputs are not modified.
//
// The wireframe takes the raw helmet geometry without the node hierarchy, so
// it is turned a quarter about X to line up with the helmet as loaded.
func AssembleHero(head, helmet *Node, p HeroParams) *Node {
	root := NewGroup("hero")
	root.Add(NewLightNode("ambient", Light{Color: p.AmbientColor, Intensity: p.AmbientIntensity}))

	if head != nil {
		h := head.Clone()
		h.Name = "head"
		for _, m := range h.MeshNodes() {
			m.Geometry = m.Geometry.Clone().RotateY(p.HeadTwist)
			m.Surface = Surface{Kind: SurfaceMatcap, BaseColor: [4]float32{1, 1, 1, 1}}
		}
		root.Add(h)
	}

	if helmet == nil {
		return root
	}

	place := Transform{
		Position: p.HelmetPosition,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{p.HelmetScale, p.HelmetScale, p.HelmetScale},
	}

	masked := NewGroup("helmet")
	masked.Transform = place
	body := helmet.Clone()
	for _, m := range body.MeshNodes() {
		if m.Surface.Kind == SurfaceStandard {
			m.Surface.Masked = true
		}
	}
	masked.Add(body)
	root.Add(masked)

	wire := NewGroup("helmet-wireframe")
	wire.Transform = place
	for _, m := range helmet.MeshNodes() {
		if m.Geometry == nil {
			continue
		}
		geo := m.Geometry.Clone().RotateX(math.Pi / 2)
		wire.Add(NewMeshNode(m.Name+"-wireframe", geo, Surface{
			Kind:      SurfaceWireframe,
			BaseColor: [4]float32{0, 0, 0, p.WireframeOpacity},
		}))
	}
	root.Add(wire)
	return root
}
