package gpu

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/glowmask/herort/rt/core"
	"github.com/gekko3d/glowmask/herort/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameInputs is everything one composed frame depends on besides the scene.
type FrameInputs struct {
	ViewProj  mgl32.Mat4
	CameraPos mgl32.Vec3
	Pointer   mgl32.Vec2
	Aspect    float32
	Delta     float32
	Elapsed   float32
	Clear     wgpu.Color
}

type passKey struct {
	kind   core.SurfaceKind
	masked bool
}

func passKeyFor(s core.Surface) passKey {
	return passKey{kind: s.Kind, masked: s.Masked}
}

// passRank orders opaque passes before blended ones.
func passRank(k passKey) int {
	if k.kind == core.SurfaceWireframe {
		return 2
	}
	if k.masked {
		return 1
	}
	return 0
}

func passOptions(k passKey, format wgpu.TextureFormat) MeshPassOptions {
	if k.kind == core.SurfaceWireframe {
		return MeshPassOptions{Format: format, Lines: true, Blend: true}
	}
	return MeshPassOptions{Format: format, DepthWrite: true}
}

type meshKey struct {
	geo   *core.Geometry
	lines bool
}

// SceneComposer records a whole frame: the feedback pass first, then the
// scene with masked surfaces sampling the accumulation written just before.
type SceneComposer struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
	Format wgpu.TextureFormat

	Feedback *FeedbackAccumulator
	Sampler  *wgpu.Sampler

	Depth     *wgpu.Texture
	DepthView *wgpu.TextureView
	Width     int
	Height    int

	FrameUniforms *shaders.UniformSet
	FrameBuf      *wgpu.Buffer
	frameHandles  frameHandles

	Scene *core.Node

	passes map[passKey]*MeshPass
	order  []passKey
	meshes map[meshKey]*MeshBuffers
}

func NewSceneComposer(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat, width, height int, params core.FeedbackParams) (*SceneComposer, error) {
	layout, err := shaders.NewUniformLayout(shaders.FrameUniforms)
	if err != nil {
		return nil, err
	}
	handles, err := resolveFrameHandles(layout)
	if err != nil {
		return nil, err
	}
	c := &SceneComposer{
		Device:        device,
		Queue:         queue,
		Format:        format,
		FrameUniforms: shaders.NewUniformSet(layout),
		frameHandles:  handles,
		passes:        make(map[passKey]*MeshPass),
		meshes:        make(map[meshKey]*MeshBuffers),
	}

	c.Feedback, err = NewFeedbackAccumulator(device, width, height, params)
	if err != nil {
		return nil, fmt.Errorf("feedback: %w", err)
	}

	// Nearest filtering keeps the mask edge identical to a texel lookup.
	c.Sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		c.Release()
		return nil, err
	}

	c.FrameBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Frame UB",
		Size:  uint64(layout.Size),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		c.Release()
		return nil, err
	}

	c.setupDepth(c.Feedback.Width, c.Feedback.Height)
	return c, nil
}

func (c *SceneComposer) setupDepth(w, h int) {
	if c.DepthView != nil {
		c.DepthView.Release()
	}
	if c.Depth != nil {
		c.Depth.Release()
	}
	var err error
	c.Depth, err = c.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Scene Depth",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	c.DepthView, err = c.Depth.CreateView(nil)
	if err != nil {
		panic(err)
	}
	c.Width, c.Height = w, h
}

// SetScene replaces the drawn tree. GPU resources of the previous tree are
// released.
func (c *SceneComposer) SetScene(root *core.Node) {
	c.releasePasses()
	c.Scene = root
}

// Resize reallocates the accumulation and depth targets. Degenerate sizes
// are ignored.
func (c *SceneComposer) Resize(w, h int) bool {
	if !c.Feedback.Resize(w, h) {
		return false
	}
	c.setupDepth(w, h)
	for _, p := range c.passes {
		if err := c.bindPassTextures(p); err != nil {
			panic(err)
		}
	}
	return true
}

func (c *SceneComposer) bindPassTextures(p *MeshPass) error {
	return p.BindTextures(map[string]*wgpu.TextureView{
		shaders.MaskTexture: c.Feedback.View(),
	}, c.Sampler)
}

func (c *SceneComposer) pass(k passKey, s core.Surface) (*MeshPass, error) {
	if p, ok := c.passes[k]; ok {
		return p, nil
	}
	p, err := NewMeshPass(c.Device, shaders.ForSurface(s), passOptions(k, c.Format))
	if err != nil {
		return nil, err
	}
	if err := p.BindFrame(c.FrameBuf); err != nil {
		p.Release()
		return nil, err
	}
	if err := c.bindPassTextures(p); err != nil {
		p.Release()
		return nil, err
	}
	c.passes[k] = p
	c.order = append(c.order, k)
	sort.SliceStable(c.order, func(i, j int) bool {
		return passRank(c.order[i]) < passRank(c.order[j])
	})
	return p, nil
}

func (c *SceneComposer) mesh(geo *core.Geometry, lines bool) (*MeshBuffers, error) {
	k := meshKey{geo: geo, lines: lines}
	if m, ok := c.meshes[k]; ok {
		return m, nil
	}
	m, err := NewMeshBuffers(c.Device, geo, lines)
	if err != nil {
		return nil, err
	}
	c.meshes[k] = m
	return m, nil
}

func drawable(n *core.Node) bool {
	return n.Geometry != nil && len(n.Geometry.Vertices) > 0 && len(n.Geometry.Indices) >= 3
}

// sync walks the scene, creates what is missing and uploads per-object data.
// It returns the accumulated ambient light.
func (c *SceneComposer) sync() (mgl32.Vec3, error) {
	for _, p := range c.passes {
		p.Begin()
	}
	var ambient mgl32.Vec3
	var firstErr error
	c.Scene.Walk(mgl32.Ident4(), core.NodeVisitor{
		Light: func(n *core.Node, _ mgl32.Mat4) {
			ambient = ambient.Add(mgl32.Vec3(n.Light.Color).Mul(n.Light.Intensity))
		},
		Mesh: func(n *core.Node, world mgl32.Mat4) {
			if firstErr != nil || !drawable(n) {
				return
			}
			k := passKeyFor(n.Surface)
			p, err := c.pass(k, n.Surface)
			if err != nil {
				firstErr = err
				return
			}
			m, err := c.mesh(n.Geometry, k.kind == core.SurfaceWireframe)
			if err != nil {
				firstErr = err
				return
			}
			firstErr = p.Sync(c.Queue, n, world, m)
		},
	})
	return ambient, firstErr
}

func writeFrameUniforms(set *shaders.UniformSet, h frameHandles, in FrameInputs, ambient mgl32.Vec3) {
	set.PutMat4(h.viewProj, in.ViewProj)
	set.PutVec4(h.cameraPos, in.CameraPos.Vec4(1))
	set.PutVec4(h.ambient, ambient.Vec4(1))
}

// Frame records the feedback pass and the scene pass into encoder, drawing
// into target.
func (c *SceneComposer) Frame(encoder *wgpu.CommandEncoder, target *wgpu.TextureView, in FrameInputs) error {
	c.Feedback.Update(c.Queue, in.Pointer, in.Aspect, in.Delta)
	if err := c.Feedback.Encode(encoder); err != nil {
		return err
	}

	var ambient mgl32.Vec3
	if c.Scene != nil {
		var err error
		if ambient, err = c.sync(); err != nil {
			return err
		}
	}
	writeFrameUniforms(c.FrameUniforms, c.frameHandles, in, ambient)
	c.Queue.WriteBuffer(c.FrameBuf, 0, c.FrameUniforms.Bytes())

	for _, p := range c.passes {
		if p.elapsed != nil {
			p.Material.PutF32(*p.elapsed, in.Elapsed)
		}
		p.UploadMaterial(c.Queue)
	}

	return WithRenderPass(encoder, &wgpu.RenderPassDescriptor{
		Label: "Scene",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: in.Clear,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            c.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	}, func(pass *wgpu.RenderPassEncoder) {
		for _, k := range c.order {
			c.passes[k].Draw(pass)
		}
	})
}

// Stats reports the number of drawn meshes per pass, for the debug overlay.
func (c *SceneComposer) Stats() map[string]int {
	out := make(map[string]int, len(c.passes))
	for _, p := range c.passes {
		out[p.Program.Name] = p.Visible()
	}
	return out
}

func (c *SceneComposer) releasePasses() {
	for _, p := range c.passes {
		p.Release()
	}
	for _, m := range c.meshes {
		m.Release()
	}
	c.passes = make(map[passKey]*MeshPass)
	c.meshes = make(map[meshKey]*MeshBuffers)
	c.order = nil
}

func (c *SceneComposer) Release() {
	c.releasePasses()
	if c.Feedback != nil {
		c.Feedback.Release()
		c.Feedback = nil
	}
	if c.DepthView != nil {
		c.DepthView.Release()
		c.DepthView = nil
	}
	if c.Depth != nil {
		c.Depth.Release()
		c.Depth = nil
	}
	if c.FrameBuf != nil {
		c.FrameBuf.Release()
		c.FrameBuf = nil
	}
	if c.Sampler != nil {
		c.Sampler.Release()
		c.Sampler = nil
	}
}
