package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/glowmask/herort/rt/core"
	"github.com/gekko3d/glowmask/herort/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// AccumulationFormat stores one float channel per texel.
const AccumulationFormat = wgpu.TextureFormatR16Float

// FeedbackAccumulator owns the accumulation target and its snapshot. Each
// frame renders target from snapshot, then copies target into snapshot so
// the next frame can read it.
type FeedbackAccumulator struct {
	Device   *wgpu.Device
	Program  *shaders.Program
	Pipeline *wgpu.RenderPipeline
	Params   core.FeedbackParams

	Uniforms   *shaders.UniformSet
	UniformBuf *wgpu.Buffer
	handles    feedbackHandles

	Target       *wgpu.Texture
	TargetView   *wgpu.TextureView
	Snapshot     *wgpu.Texture
	SnapshotView *wgpu.TextureView
	BindGroup    *wgpu.BindGroup

	Width  int
	Height int
}

func NewFeedbackAccumulator(device *wgpu.Device, width, height int, params core.FeedbackParams) (*FeedbackAccumulator, error) {
	prog, err := shaders.Compose(shaders.FeedbackMaterial())
	if err != nil {
		return nil, err
	}
	handles, err := resolveFeedbackHandles(prog.Uniforms)
	if err != nil {
		return nil, err
	}
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Feedback Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: prog.Source},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Feedback Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    AccumulationFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	f := &FeedbackAccumulator{
		Device:   device,
		Program:  prog,
		Pipeline: pipeline,
		Params:   params,
		Uniforms: shaders.NewUniformSet(prog.Uniforms),
		handles:  handles,
	}
	f.UniformBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Feedback UB",
		Size:  uint64(prog.Uniforms.Size),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		pipeline.Release()
		return nil, err
	}
	if !f.Resize(width, height) {
		f.Resize(1, 1)
	}
	return f, nil
}

func (f *FeedbackAccumulator) createTarget(label string, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView) {
	tex, err := f.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: uint32(f.Width), Height: uint32(f.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        AccumulationFormat,
		Usage:         usage,
	})
	if err != nil {
		panic(err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		panic(err)
	}
	return tex, view
}

// Resize recreates both textures at the new size. New textures start zeroed,
// so the trail is lost. Degenerate sizes are ignored.
func (f *FeedbackAccumulator) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	f.releaseTargets()
	f.Width, f.Height = width, height

	f.Target, f.TargetView = f.createTarget("Feedback Target",
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopySrc)
	f.Snapshot, f.SnapshotView = f.createTarget("Feedback Snapshot",
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)

	views := map[string]*wgpu.TextureView{shaders.FeedbackTexture: f.SnapshotView}
	entries, err := materialEntries(f.Program, f.UniformBuf, views, nil)
	if err != nil {
		panic(err)
	}
	f.BindGroup, err = f.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Feedback BG",
		Layout:  f.Pipeline.GetBindGroupLayout(f.Program.Group),
		Entries: entries,
	})
	if err != nil {
		panic(err)
	}
	return true
}

// Update stages this frame's uniforms.
func (f *FeedbackAccumulator) Update(queue *wgpu.Queue, pointer mgl32.Vec2, aspect, dt float32) {
	writeFeedbackUniforms(f.Uniforms, f.handles, f.Params, pointer, aspect, dt)
	queue.WriteBuffer(f.UniformBuf, 0, f.Uniforms.Bytes())
}

func writeFeedbackUniforms(set *shaders.UniformSet, h feedbackHandles, params core.FeedbackParams, pointer mgl32.Vec2, aspect, dt float32) {
	if dt < 0 {
		dt = 0
	}
	active := float32(0)
	if pointer != core.PointerInactive {
		active = 1
	}
	set.PutF32(h.deltaTime, dt)
	set.PutF32(h.aspect, aspect)
	set.PutVec2(h.pointer, pointer)
	set.PutF32(h.active, active)
	set.PutF32(h.radius, params.Radius)
	set.PutF32(h.duration, params.Duration)
}

// Encode records the accumulation pass followed by the snapshot copy.
func (f *FeedbackAccumulator) Encode(encoder *wgpu.CommandEncoder) error {
	err := WithRenderPass(encoder, &wgpu.RenderPassDescriptor{
		Label: "Feedback",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       f.TargetView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	}, func(pass *wgpu.RenderPassEncoder) {
		pass.SetPipeline(f.Pipeline)
		pass.SetBindGroup(f.Program.Group, f.BindGroup, nil)
		pass.Draw(3, 1, 0, 0)
	})
	if err != nil {
		return err
	}

	f.copyToSnapshot(encoder)
	return nil
}

// Clear records a pass that zeroes the target and copies it over the
// snapshot, dropping the whole trail.
func (f *FeedbackAccumulator) Clear(encoder *wgpu.CommandEncoder) error {
	err := WithRenderPass(encoder, &wgpu.RenderPassDescriptor{
		Label: "Feedback Clear",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       f.TargetView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{},
		}},
	}, func(*wgpu.RenderPassEncoder) {})
	if err != nil {
		return err
	}
	f.copyToSnapshot(encoder)
	return nil
}

func (f *FeedbackAccumulator) copyToSnapshot(encoder *wgpu.CommandEncoder) {
	encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{Texture: f.Target, MipLevel: 0, Origin: wgpu.Origin3D{}},
		&wgpu.ImageCopyTexture{Texture: f.Snapshot, MipLevel: 0, Origin: wgpu.Origin3D{}},
		&wgpu.Extent3D{Width: uint32(f.Width), Height: uint32(f.Height), DepthOrArrayLayers: 1},
	)
}

// View is the texture written this frame. Masked materials sample it.
func (f *FeedbackAccumulator) View() *wgpu.TextureView {
	return f.TargetView
}

func (f *FeedbackAccumulator) releaseTargets() {
	if f.BindGroup != nil {
		f.BindGroup.Release()
		f.BindGroup = nil
	}
	if f.TargetView != nil {
		f.TargetView.Release()
		f.TargetView = nil
	}
	if f.Target != nil {
		f.Target.Release()
		f.Target = nil
	}
	if f.SnapshotView != nil {
		f.SnapshotView.Release()
		f.SnapshotView = nil
	}
	if f.Snapshot != nil {
		f.Snapshot.Release()
		f.Snapshot = nil
	}
}

func (f *FeedbackAccumulator) Release() {
	f.releaseTargets()
	if f.UniformBuf != nil {
		f.UniformBuf.Release()
		f.UniformBuf = nil
	}
	if f.Pipeline != nil {
		f.Pipeline.Release()
		f.Pipeline = nil
	}
}
