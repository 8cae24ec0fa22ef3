package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex matches the vertex layout of every mesh pipeline: position at
// location 0, normal at 1, uv at 2.
type Vertex struct {
	Pos    [3]float32
	Normal [3]float32
	UV     [2]float32
}

// Geometry is an indexed triangle list.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

func (g *Geometry) Clone() *Geometry {
	if g == nil {
		return nil
	}
	return &Geometry{
		Vertices: append([]Vertex(nil), g.Vertices...),
		Indices:  append([]uint32(nil), g.Indices...),
	}
}

// ApplyMatrix transforms positions by m and normals by its normal matrix,
// in place.
func (g *Geometry) ApplyMatrix(m mgl32.Mat4) *Geometry {
	n := NormalMatrix(m).Mat3()
	for i := range g.Vertices {
		v := &g.Vertices[i]
		p := m.Mul4x1(mgl32.Vec3(v.Pos).Vec4(1)).Vec3()
		v.Pos = [3]float32(p)
		nrm := n.Mul3x1(mgl32.Vec3(v.Normal))
		if nrm.Len() > 0 {
			nrm = nrm.Normalize()
		}
		v.Normal = [3]float32(nrm)
	}
	return g
}

func (g *Geometry) RotateX(rad float32) *Geometry {
	return g.ApplyMatrix(mgl32.HomogRotate3DX(rad))
}

func (g *Geometry) RotateY(rad float32) *Geometry {
	return g.ApplyMatrix(mgl32.HomogRotate3DY(rad))
}

// Bounds returns the axis aligned box of the positions.
func (g *Geometry) Bounds() (min, max mgl32.Vec3) {
	if len(g.Vertices) == 0 {
		return
	}
	min = mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max = min.Mul(-1)
	for _, v := range g.Vertices {
		for k := 0; k < 3; k++ {
			if v.Pos[k] < min[k] {
				min[k] = v.Pos[k]
			}
			if v.Pos[k] > max[k] {
				max[k] = v.Pos[k]
			}
		}
	}
	return min, max
}

// WireframeIndices converts the triangle list into a line list with every
// shared edge emitted once.
func (g *Geometry) WireframeIndices() []uint32 {
	type edge struct{ a, b uint32 }
	seen := make(map[edge]struct{}, len(g.Indices))
	lines := make([]uint32, 0, len(g.Indices)*2)
	for t := 0; t+2 < len(g.Indices); t += 3 {
		tri := [3]uint32{g.Indices[t], g.Indices[t+1], g.Indices[t+2]}
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			e := edge{a, b}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			lines = append(lines, a, b)
		}
	}
	return lines
}
