package gpu

import (
	"github.com/gekko3d/glowmask/herort/rt/shaders"
)

// handleResolver resolves a run of uniforms and keeps the first error.
type handleResolver struct {
	layout shaders.UniformLayout
	err    error
}

func (r *handleResolver) get(name string, typ shaders.UniformType) shaders.UniformHandle {
	if r.err != nil {
		return shaders.UniformHandle{}
	}
	h, err := r.layout.Handle(name, typ)
	r.err = err
	return h
}

type feedbackHandles struct {
	deltaTime, aspect, pointer, active, radius, duration shaders.UniformHandle
}

func resolveFeedbackHandles(l shaders.UniformLayout) (feedbackHandles, error) {
	r := handleResolver{layout: l}
	h := feedbackHandles{
		deltaTime: r.get(shaders.FeedbackDeltaTime, shaders.F32),
		aspect:    r.get(shaders.FeedbackAspect, shaders.F32),
		pointer:   r.get(shaders.FeedbackPointer, shaders.Vec2),
		active:    r.get(shaders.FeedbackActive, shaders.F32),
		radius:    r.get(shaders.FeedbackRadius, shaders.F32),
		duration:  r.get(shaders.FeedbackDuration, shaders.F32),
	}
	return h, r.err
}

type frameHandles struct {
	viewProj, cameraPos, ambient shaders.UniformHandle
}

func resolveFrameHandles(l shaders.UniformLayout) (frameHandles, error) {
	r := handleResolver{layout: l}
	h := frameHandles{
		viewProj:  r.get("view_proj", shaders.Mat4),
		cameraPos: r.get("camera_pos", shaders.Vec4),
		ambient:   r.get("ambient", shaders.Vec4),
	}
	return h, r.err
}

type objectHandles struct {
	model, normalMat, baseColor, emissive, pbr shaders.UniformHandle
}

func resolveObjectHandles(l shaders.UniformLayout) (objectHandles, error) {
	r := handleResolver{layout: l}
	h := objectHandles{
		model:     r.get("model", shaders.Mat4),
		normalMat: r.get("normal_mat", shaders.Mat4),
		baseColor: r.get("base_color", shaders.Vec4),
		emissive:  r.get("emissive", shaders.Vec4),
		pbr:       r.get("pbr", shaders.Vec4),
	}
	return h, r.err
}
