package gpu

import (
	"sort"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/glowmask/herort/rt/core"
	"github.com/gekko3d/glowmask/herort/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

func TestPassOrderingDrawsWireframeLast(t *testing.T) {
	keys := []passKey{
		{kind: core.SurfaceWireframe},
		{kind: core.SurfaceStandard, masked: true},
		{kind: core.SurfaceMatcap},
	}
	sort.SliceStable(keys, func(i, j int) bool { return passRank(keys[i]) < passRank(keys[j]) })

	if keys[0].kind != core.SurfaceMatcap {
		t.Errorf("expected opaque pass first, got %+v", keys[0])
	}
	if keys[2].kind != core.SurfaceWireframe {
		t.Errorf("expected wireframe pass last, got %+v", keys[2])
	}
}

func TestPassOptions(t *testing.T) {
	wire := passOptions(passKey{kind: core.SurfaceWireframe}, wgpu.TextureFormatBGRA8Unorm)
	if !wire.Lines || !wire.Blend || wire.DepthWrite {
		t.Errorf("unexpected wireframe options %+v", wire)
	}
	solid := passOptions(passKey{kind: core.SurfaceStandard, masked: true}, wgpu.TextureFormatBGRA8Unorm)
	if solid.Lines || solid.Blend || !solid.DepthWrite {
		t.Errorf("unexpected surface options %+v", solid)
	}
}

func TestWriteFeedbackUniforms(t *testing.T) {
	prog, err := shaders.Compose(shaders.FeedbackMaterial())
	if err != nil {
		t.Fatal(err)
	}
	h, err := resolveFeedbackHandles(prog.Uniforms)
	if err != nil {
		t.Fatal(err)
	}
	set := shaders.NewUniformSet(prog.Uniforms)
	params := core.DefaultFeedbackParams()

	writeFeedbackUniforms(set, h, params, mgl32.Vec2{0.5, -0.5}, 1.5, 0.016)
	if got := set.F32(shaders.FeedbackActive); got != 1 {
		t.Errorf("expected active pointer, got %f", got)
	}
	if got := set.F32(shaders.FeedbackRadius); got != params.Radius {
		t.Errorf("expected radius %f, got %f", params.Radius, got)
	}
	if got := set.F32(shaders.FeedbackAspect); got != 1.5 {
		t.Errorf("expected aspect 1.5, got %f", got)
	}

	writeFeedbackUniforms(set, h, params, core.PointerInactive, 1.5, -1)
	if got := set.F32(shaders.FeedbackActive); got != 0 {
		t.Errorf("expected inactive pointer, got %f", got)
	}
	if got := set.F32(shaders.FeedbackDeltaTime); got != 0 {
		t.Errorf("expected negative dt clamped to 0, got %f", got)
	}
}

func TestWriteObjectUniforms(t *testing.T) {
	layout, err := shaders.NewUniformLayout(shaders.ObjectUniforms)
	if err != nil {
		t.Fatal(err)
	}
	h, err := resolveObjectHandles(layout)
	if err != nil {
		t.Fatal(err)
	}
	set := shaders.NewUniformSet(layout)
	s := core.Surface{BaseColor: [4]float32{0, 0, 0, 0.25}, Metallic: 0.5, Roughness: 0.75}
	writeObjectUniforms(set, h, mgl32.Translate3D(0, 1.5, 0.75), s)

	readAt := func(offset int) float32 {
		l, _ := shaders.NewUniformLayout([]shaders.Uniform{{Name: "x", Type: shaders.F32}})
		p := shaders.NewUniformSet(l)
		copy(p.Bytes(), set.Bytes()[offset:offset+4])
		return p.F32("x")
	}
	if got := readAt(layout.Offset("model") + 13*4); got != 1.5 {
		t.Errorf("expected model translation y 1.5, got %f", got)
	}
	if got := readAt(layout.Offset("base_color") + 3*4); got != 0.25 {
		t.Errorf("expected opacity 0.25, got %f", got)
	}
	if got := readAt(layout.Offset("pbr") + 4); got != 0.75 {
		t.Errorf("expected roughness 0.75, got %f", got)
	}
}

func TestWriteFrameUniforms(t *testing.T) {
	layout, err := shaders.NewUniformLayout(shaders.FrameUniforms)
	if err != nil {
		t.Fatal(err)
	}
	h, err := resolveFrameHandles(layout)
	if err != nil {
		t.Fatal(err)
	}
	set := shaders.NewUniformSet(layout)
	writeFrameUniforms(set, h, FrameInputs{ViewProj: mgl32.Ident4()}, mgl32.Vec3{0.5, 0.5, 0.5})

	want := shaders.NewUniformSet(layout)
	if err := want.SetMat4("view_proj", mgl32.Ident4()); err != nil {
		t.Fatal(err)
	}
	if err := want.SetVec4("camera_pos", mgl32.Vec4{0, 0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	if err := want.SetVec4("ambient", mgl32.Vec4{0.5, 0.5, 0.5, 1}); err != nil {
		t.Fatal(err)
	}
	if string(set.Bytes()) != string(want.Bytes()) {
		t.Errorf("frame uniforms differ from named writes")
	}
}

func TestResolveHandlesRejectsForeignLayout(t *testing.T) {
	layout, err := shaders.NewUniformLayout(shaders.FrameUniforms)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := resolveFeedbackHandles(layout); err == nil {
		t.Error("expected feedback handles to fail on the frame layout")
	}
	if _, err := resolveObjectHandles(layout); err == nil {
		t.Error("expected object handles to fail on the frame layout")
	}
}

func TestMaterialEntriesRequireViews(t *testing.T) {
	prog, err := shaders.Compose(shaders.MaskedSurface(shaders.StandardMaterial()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := materialEntries(prog, nil, map[string]*wgpu.TextureView{}, nil); err == nil {
		t.Error("expected error for missing mask view")
	}

	plain, err := shaders.Compose(shaders.StandardMaterial())
	if err != nil {
		t.Fatal(err)
	}
	entries, err := materialEntries(plain, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no material entries, got %d", len(entries))
	}
}

func TestDrawable(t *testing.T) {
	tri := &core.Geometry{
		Vertices: make([]core.Vertex, 3),
		Indices:  []uint32{0, 1, 2},
	}
	if !drawable(core.NewMeshNode("tri", tri, core.DefaultSurface())) {
		t.Error("expected triangle to be drawable")
	}
	if drawable(core.NewMeshNode("empty", &core.Geometry{}, core.DefaultSurface())) {
		t.Error("expected empty geometry to be skipped")
	}
	if drawable(core.NewMeshNode("nil", nil, core.DefaultSurface())) {
		t.Error("expected nil geometry to be skipped")
	}
}
