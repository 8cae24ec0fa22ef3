package shaders

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gekko3d/glowmask/herort/rt/core"
)

// lit formats v as a WGSL float literal.
func lit(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Feedback uniform and texture names, shared with the pass that fills them.
const (
	FeedbackDeltaTime = "d_time"
	FeedbackAspect    = "aspect"
	FeedbackPointer   = "pointer"
	FeedbackActive    = "pointer_down"
	FeedbackRadius    = "pointer_radius"
	FeedbackDuration  = "pointer_duration"
	FeedbackTexture   = "fb_texture"

	MaskTexture = "tex_blob"

	WireframeElapsed = "elapsed"
)

// FeedbackMaterial reads last frame's accumulation at the same texel, decays
// it and adds the pointer falloff.
func FeedbackMaterial() MaterialDescriptor {
	body := fmt.Sprintf(`var r = textureLoad(%[1]s, vec2<i32>(in.clip.xy), 0).r;
r = clamp(r - clamp(material.d_time / material.pointer_duration, 0.0, %[2]s), 0.0, 1.0);
var f = 0.0;
if (material.pointer_down > 0.5) {
    let p = (in.uv - vec2<f32>(0.5)) * 2.0 * vec2<f32>(material.aspect, 1.0);
    let m = material.pointer * vec2<f32>(material.aspect, 1.0);
    f = 1.0 - smoothstep(material.pointer_radius * %[3]s, material.pointer_radius, distance(p, m));
}
r = clamp(r + f * %[4]s, 0.0, 1.0);
diffuse = vec4<f32>(r, r, r, 1.0);`,
		FeedbackTexture, lit(core.MaxDecayPerFrame), lit(core.InnerRadiusFraction), lit(core.ContributionGain))

	return NewMaterial("feedback", FullscreenTemplate).Extend(Extension{
		Uniforms: []Uniform{
			{Name: FeedbackDeltaTime, Type: F32},
			{Name: FeedbackAspect, Type: F32},
			{Name: FeedbackPointer, Type: Vec2},
			{Name: FeedbackActive, Type: F32},
			{Name: FeedbackRadius, Type: F32},
			{Name: FeedbackDuration, Type: F32},
		},
		Textures:   []TextureBinding{{Name: FeedbackTexture}},
		Injections: []Injection{{Stage: FragmentStage, Hook: HookColorFragment, Code: body}},
	})
}

func StandardMaterial() MaterialDescriptor {
	return NewMaterial("standard", StandardTemplate)
}

func BasicMaterial() MaterialDescriptor {
	return NewMaterial("basic", BasicTemplate)
}

// MatcapMaterial shades by the angle between normal and view direction.
func MatcapMaterial() MaterialDescriptor {
	return BasicMaterial().Extend(Extension{
		Name: "matcap",
		Injections: []Injection{{
			Stage: FragmentStage,
			Hook:  HookColorFragment,
			Code: `let matcap_n = normalize(in.world_normal);
let matcap_v = normalize(frame.camera_pos.xyz - in.world_pos);
let matcap_shade = mix(0.35, 1.0, clamp(dot(matcap_n, matcap_v), 0.0, 1.0));
diffuse = vec4<f32>(diffuse.rgb * matcap_shade, diffuse.a);`,
		}},
	})
}

// MaskedSurface layers the accumulation mask on top of base. Everything base
// already injects is kept; the discard runs before any shading.
func MaskedSurface(base MaterialDescriptor) MaterialDescriptor {
	discard := fmt.Sprintf(`let blob_ndc = in.v_pos_proj.xy / in.v_pos_proj.w;
let blob_uv = (blob_ndc + vec2<f32>(1.0)) * 0.5;
let blob = textureSample(%[1]s, %[1]s_sampler, vec2<f32>(blob_uv.x, 1.0 - blob_uv.y)).r;
if (blob < %[2]s) {
    discard;
}`, MaskTexture, lit(core.MaskThreshold))

	return base.Extend(Extension{
		Name:     "mask",
		Textures: []TextureBinding{{Name: MaskTexture, Sampled: true}},
		Varyings: []Varying{{Name: "v_pos_proj", Type: Vec4}},
		Injections: []Injection{
			{Stage: VertexStage, Hook: HookProjectVertex, Code: "out.v_pos_proj = out.clip;"},
			{Stage: FragmentStage, Hook: HookClippingPlanesFragment, Code: discard},
		},
	})
}

// WireframeMaterial fades base opacity with a band that travels up the
// model over time.
func WireframeMaterial() MaterialDescriptor {
	band := fmt.Sprintf(`let band_y = fract(in.v_y_val * %s + material.elapsed * %s);
let band = smoothstep(0.0, 0.01, band_y) - smoothstep(0.02, 0.1, band_y);
diffuse.a = diffuse.a * (band * 0.9 + 0.1);`, lit(core.ScanlineFrequency), lit(core.ScanlineSpeed))

	return BasicMaterial().Extend(Extension{
		Name:     "scanline",
		Uniforms: []Uniform{{Name: WireframeElapsed, Type: F32}},
		Varyings: []Varying{{Name: "v_y_val", Type: F32}},
		Injections: []Injection{
			{Stage: VertexStage, Hook: HookBeginVertex, Code: "out.v_y_val = transformed.y;"},
			{Stage: FragmentStage, Hook: HookColorFragment, Code: band},
		},
	})
}

// ForSurface picks the material a mesh with surface s is drawn with.
func ForSurface(s core.Surface) MaterialDescriptor {
	var d MaterialDescriptor
	switch s.Kind {
	case core.SurfaceBasic:
		d = BasicMaterial()
	case core.SurfaceMatcap:
		d = MatcapMaterial()
	case core.SurfaceWireframe:
		d = WireframeMaterial()
	default:
		d = StandardMaterial()
	}
	if s.Masked {
		d = MaskedSurface(d)
	}
	return d
}

func TextMaterial() MaterialDescriptor {
	return NewMaterial("text", TextTemplate)
}

// Catalog lists every program the renderer builds, feedback first and the
// HUD text last.
func Catalog() []MaterialDescriptor {
	return []MaterialDescriptor{
		FeedbackMaterial(),
		StandardMaterial(),
		MaskedSurface(StandardMaterial()),
		BasicMaterial(),
		MatcapMaterial(),
		WireframeMaterial(),
		TextMaterial(),
	}
}
