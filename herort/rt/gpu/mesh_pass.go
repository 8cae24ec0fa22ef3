package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/glowmask/herort/rt/core"
	"github.com/gekko3d/glowmask/herort/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

const DepthFormat = wgpu.TextureFormatDepth24Plus

type MeshPassOptions struct {
	Format wgpu.TextureFormat
	Lines  bool
	Blend  bool
	// DepthWrite is off for transparent overlays so they never occlude.
	DepthWrite bool
}

type meshDraw struct {
	mesh    *MeshBuffers
	object  *shaders.UniformSet
	buf     *wgpu.Buffer
	bg      *wgpu.BindGroup
	visible bool
}

// MeshPass draws every mesh that shares one composed material.
type MeshPass struct {
	Device   *wgpu.Device
	Program  *shaders.Program
	Pipeline *wgpu.RenderPipeline
	Options  MeshPassOptions

	Material    *shaders.UniformSet
	MaterialBuf *wgpu.Buffer
	FrameBG     *wgpu.BindGroup
	MaterialBG  *wgpu.BindGroup

	objectLayout  shaders.UniformLayout
	objectHandles objectHandles
	// elapsed is set when the material animates with time.
	elapsed *shaders.UniformHandle
	draws   map[*core.Node]*meshDraw
	order   []*core.Node
}

func NewMeshPass(device *wgpu.Device, desc shaders.MaterialDescriptor, opts MeshPassOptions) (*MeshPass, error) {
	prog, err := shaders.Compose(desc)
	if err != nil {
		return nil, err
	}
	objectLayout, err := shaders.NewUniformLayout(shaders.ObjectUniforms)
	if err != nil {
		return nil, err
	}
	objectHandles, err := resolveObjectHandles(objectLayout)
	if err != nil {
		return nil, err
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          prog.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: prog.Source},
	})
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", prog.Name, err)
	}
	defer module.Release()

	target := wgpu.ColorTargetState{
		Format:    opts.Format,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if opts.Blend {
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
		}
	}
	topology := wgpu.PrimitiveTopologyTriangleList
	compare := wgpu.CompareFunctionLess
	if opts.Lines {
		topology = wgpu.PrimitiveTopologyLineList
		compare = wgpu.CompareFunctionLessEqual
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: prog.Name + " Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{meshVertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: opts.DepthWrite,
			DepthCompare:      compare,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", prog.Name, err)
	}

	p := &MeshPass{
		Device:        device,
		Program:       prog,
		Pipeline:      pipeline,
		Options:       opts,
		objectLayout:  objectLayout,
		objectHandles: objectHandles,
		draws:         make(map[*core.Node]*meshDraw),
	}
	if _, ok := prog.Uniforms.Lookup(shaders.WireframeElapsed); ok {
		h, err := prog.Uniforms.Handle(shaders.WireframeElapsed, shaders.F32)
		if err != nil {
			pipeline.Release()
			return nil, err
		}
		p.elapsed = &h
	}
	if prog.Uniforms.Size > 0 {
		p.Material = shaders.NewUniformSet(prog.Uniforms)
		p.MaterialBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: prog.Name + " Material UB",
			Size:  uint64(prog.Uniforms.Size),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			p.Release()
			return nil, err
		}
	}
	return p, nil
}

func (p *MeshPass) BindFrame(frameBuf *wgpu.Buffer) error {
	if p.FrameBG != nil {
		p.FrameBG.Release()
	}
	var err error
	p.FrameBG, err = p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  p.Program.Name + " Frame BG",
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: frameBuf, Size: frameBuf.GetSize()},
		},
	})
	return err
}

// BindTextures rebuilds the material bind group. It has to be called again
// whenever one of the views is recreated.
func (p *MeshPass) BindTextures(views map[string]*wgpu.TextureView, sampler *wgpu.Sampler) error {
	entries, err := materialEntries(p.Program, p.MaterialBuf, views, sampler)
	if err != nil {
		return err
	}
	if p.MaterialBG != nil {
		p.MaterialBG.Release()
		p.MaterialBG = nil
	}
	if len(entries) == 0 {
		return nil
	}
	p.MaterialBG, err = p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.Program.Name + " Material BG",
		Layout:  p.Pipeline.GetBindGroupLayout(p.Program.Group),
		Entries: entries,
	})
	return err
}

func materialEntries(prog *shaders.Program, buf *wgpu.Buffer, views map[string]*wgpu.TextureView, sampler *wgpu.Sampler) ([]wgpu.BindGroupEntry, error) {
	entries := make([]wgpu.BindGroupEntry, 0, len(prog.Bindings))
	for _, b := range prog.Bindings {
		switch b.Kind {
		case shaders.UniformBinding:
			if buf == nil {
				return nil, fmt.Errorf("%s: no buffer for %s", prog.Name, b.Name)
			}
			entries = append(entries, wgpu.BindGroupEntry{Binding: b.Binding, Buffer: buf, Size: uint64(prog.Uniforms.Size)})
		case shaders.TextureBindingKind:
			v, ok := views[b.Name]
			if !ok || v == nil {
				return nil, fmt.Errorf("%s: no view bound to %s", prog.Name, b.Name)
			}
			entries = append(entries, wgpu.BindGroupEntry{Binding: b.Binding, TextureView: v})
		case shaders.SamplerBinding:
			if sampler == nil {
				return nil, fmt.Errorf("%s: no sampler for %s", prog.Name, b.Name)
			}
			entries = append(entries, wgpu.BindGroupEntry{Binding: b.Binding, Sampler: sampler})
		}
	}
	return entries, nil
}

// Begin hides every draw; Sync makes the ones still in the scene visible.
func (p *MeshPass) Begin() {
	for _, d := range p.draws {
		d.visible = false
	}
}

func (p *MeshPass) Sync(queue *wgpu.Queue, n *core.Node, world mgl32.Mat4, mesh *MeshBuffers) error {
	d, ok := p.draws[n]
	if !ok {
		buf, err := p.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: n.Name + " Object UB",
			Size:  uint64(p.objectLayout.Size),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		bg, err := p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  n.Name + " Object BG",
			Layout: p.Pipeline.GetBindGroupLayout(1),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: buf, Size: uint64(p.objectLayout.Size)},
			},
		})
		if err != nil {
			buf.Release()
			return err
		}
		d = &meshDraw{
			object: shaders.NewUniformSet(p.objectLayout),
			buf:    buf,
			bg:     bg,
		}
		p.draws[n] = d
		p.order = append(p.order, n)
	}
	d.mesh = mesh
	d.visible = true
	writeObjectUniforms(d.object, p.objectHandles, world, n.Surface)
	queue.WriteBuffer(d.buf, 0, d.object.Bytes())
	return nil
}

func writeObjectUniforms(set *shaders.UniformSet, h objectHandles, world mgl32.Mat4, s core.Surface) {
	set.PutMat4(h.model, world)
	set.PutMat4(h.normalMat, core.NormalMatrix(world))
	set.PutVec4(h.baseColor, mgl32.Vec4(s.BaseColor))
	set.PutVec4(h.emissive, mgl32.Vec4{s.Emissive[0], s.Emissive[1], s.Emissive[2], 0})
	set.PutVec4(h.pbr, mgl32.Vec4{s.Metallic, s.Roughness, 0, 0})
}

// UploadMaterial writes the material uniforms, if the program has any.
func (p *MeshPass) UploadMaterial(queue *wgpu.Queue) {
	if p.Material == nil {
		return
	}
	queue.WriteBuffer(p.MaterialBuf, 0, p.Material.Bytes())
}

func (p *MeshPass) Draw(pass *wgpu.RenderPassEncoder) {
	if p.FrameBG == nil {
		return
	}
	if len(p.Program.Bindings) > 0 && p.MaterialBG == nil {
		return
	}
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.FrameBG, nil)
	if p.MaterialBG != nil {
		pass.SetBindGroup(p.Program.Group, p.MaterialBG, nil)
	}
	for _, n := range p.order {
		d := p.draws[n]
		if !d.visible || d.mesh == nil {
			continue
		}
		pass.SetBindGroup(1, d.bg, nil)
		d.mesh.draw(pass)
	}
}

func (p *MeshPass) Visible() int {
	n := 0
	for _, d := range p.draws {
		if d.visible {
			n++
		}
	}
	return n
}

func (p *MeshPass) Release() {
	for _, d := range p.draws {
		d.bg.Release()
		d.buf.Release()
	}
	p.draws = map[*core.Node]*meshDraw{}
	p.order = nil
	if p.MaterialBG != nil {
		p.MaterialBG.Release()
		p.MaterialBG = nil
	}
	if p.FrameBG != nil {
		p.FrameBG.Release()
		p.FrameBG = nil
	}
	if p.MaterialBuf != nil {
		p.MaterialBuf.Release()
		p.MaterialBuf = nil
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
		p.Pipeline = nil
	}
}
