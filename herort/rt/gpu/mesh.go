package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/glowmask/herort/rt/core"
)

var meshVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: uint64(unsafe.Sizeof(core.Vertex{})),
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
	},
}

// MeshBuffers holds one geometry on the GPU. Triangle and line index lists
// share the vertex buffer.
type MeshBuffers struct {
	VertexBuf  *wgpu.Buffer
	IndexBuf   *wgpu.Buffer
	IndexCount uint32
	LineBuf    *wgpu.Buffer
	LineCount  uint32
}

func NewMeshBuffers(device *wgpu.Device, geo *core.Geometry, lines bool) (*MeshBuffers, error) {
	m := &MeshBuffers{}
	var err error
	m.VertexBuf, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Mesh VB",
		Contents: wgpu.ToBytes(geo.Vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, err
	}

	if lines {
		idx := geo.WireframeIndices()
		m.LineBuf, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    "Mesh Line IB",
			Contents: wgpu.ToBytes(idx),
			Usage:    wgpu.BufferUsageIndex,
		})
		if err != nil {
			m.Release()
			return nil, err
		}
		m.LineCount = uint32(len(idx))
		return m, nil
	}

	m.IndexBuf, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Mesh IB",
		Contents: wgpu.ToBytes(geo.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		m.Release()
		return nil, err
	}
	m.IndexCount = uint32(len(geo.Indices))
	return m, nil
}

func (m *MeshBuffers) draw(pass *wgpu.RenderPassEncoder) {
	pass.SetVertexBuffer(0, m.VertexBuf, 0, wgpu.WholeSize)
	if m.LineBuf != nil {
		pass.SetIndexBuffer(m.LineBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(m.LineCount, 1, 0, 0, 0)
		return
	}
	pass.SetIndexBuffer(m.IndexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(m.IndexCount, 1, 0, 0, 0)
}

func (m *MeshBuffers) Release() {
	for _, b := range []*wgpu.Buffer{m.VertexBuf, m.IndexBuf, m.LineBuf} {
		if b != nil {
			b.Release()
		}
	}
	m.VertexBuf, m.IndexBuf, m.LineBuf = nil, nil, nil
}
