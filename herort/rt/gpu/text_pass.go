package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/glowmask/herort/rt/core"
	"github.com/gekko3d/glowmask/herort/rt/shaders"
)

// TextPass draws HUD lines over the composed frame.
type TextPass struct {
	Device    *wgpu.Device
	Atlas     *core.GlyphAtlas
	Pipeline  *wgpu.RenderPipeline
	AtlasTex  *wgpu.Texture
	AtlasView *wgpu.TextureView
	Sampler   *wgpu.Sampler
	BindGroup *wgpu.BindGroup

	VertexBuf   *wgpu.Buffer
	VertexCount uint32
	vertices    []core.TextVertex
}

func NewTextPass(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat, atlas *core.GlyphAtlas) (*TextPass, error) {
	p := &TextPass{Device: device, Atlas: atlas}

	w, h := atlas.Image.Bounds().Dx(), atlas.Image.Bounds().Dy()
	var err error
	p.AtlasTex, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	queue.WriteTexture(p.AtlasTex.AsImageCopy(), atlas.Image.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(atlas.Image.Stride),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

	p.AtlasView, err = p.AtlasTex.CreateView(nil)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.Sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		p.Release()
		return nil, err
	}

	prog, err := shaders.Compose(shaders.TextMaterial())
	if err != nil {
		p.Release()
		return nil, err
	}
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: prog.Source},
	})
	if err != nil {
		p.Release()
		return nil, err
	}
	defer module.Release()

	p.Pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.TextVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
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
		p.Release()
		return nil, err
	}

	p.BindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Text BG",
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: p.AtlasView},
			{Binding: 1, Sampler: p.Sampler},
		},
	})
	if err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// Update rebuilds the vertex buffer from lines. An empty list hides the HUD.
func (p *TextPass) Update(queue *wgpu.Queue, lines []core.HUDLine, screenW, screenH int) {
	p.vertices = p.Atlas.Build(p.vertices[:0], lines, screenW, screenH)
	p.VertexCount = uint32(len(p.vertices))
	if p.VertexCount == 0 {
		return
	}
	vSize := uint64(len(p.vertices) * int(unsafe.Sizeof(core.TextVertex{})))
	if p.VertexBuf == nil || p.VertexBuf.GetSize() < vSize {
		if p.VertexBuf != nil {
			p.VertexBuf.Release()
		}
		var err error
		p.VertexBuf, err = p.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Text VB",
			Size:  vSize,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
	}
	queue.WriteBuffer(p.VertexBuf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&p.vertices[0])), vSize))
}

// Encode draws on top of target without clearing it.
func (p *TextPass) Encode(encoder *wgpu.CommandEncoder, target *wgpu.TextureView) error {
	if p.VertexCount == 0 || p.VertexBuf == nil {
		return nil
	}
	return WithRenderPass(encoder, &wgpu.RenderPassDescriptor{
		Label: "HUD",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    target,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
	}, func(pass *wgpu.RenderPassEncoder) {
		pass.SetPipeline(p.Pipeline)
		pass.SetBindGroup(0, p.BindGroup, nil)
		pass.SetVertexBuffer(0, p.VertexBuf, 0, wgpu.WholeSize)
		pass.Draw(p.VertexCount, 1, 0, 0)
	})
}

func (p *TextPass) Release() {
	if p.BindGroup != nil {
		p.BindGroup.Release()
		p.BindGroup = nil
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
		p.Pipeline = nil
	}
	if p.VertexBuf != nil {
		p.VertexBuf.Release()
		p.VertexBuf = nil
	}
	if p.Sampler != nil {
		p.Sampler.Release()
		p.Sampler = nil
	}
	if p.AtlasView != nil {
		p.AtlasView.Release()
		p.AtlasView = nil
	}
	if p.AtlasTex != nil {
		p.AtlasTex.Release()
		p.AtlasTex = nil
	}
}
