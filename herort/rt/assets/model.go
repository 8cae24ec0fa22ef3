package assets

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gekko3d/glowmask/herort/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Load resolves src and builds its default scene.
func (l *Loader) Load(ctx context.Context, src string) (*core.Node, error) {
	local, err := l.Resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	doc, err := gltf.Open(local)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	return BuildTree(doc, src)
}

// LoadOrAbsent is Load for callers that carry on without the model. The
// error is passed to report, if set, and a nil tree is returned.
func (l *Loader) LoadOrAbsent(ctx context.Context, src string, report func(src string, err error)) *core.Node {
	n, err := l.Load(ctx, src)
	if err != nil {
		if report != nil {
			report(src, err)
		}
		return nil
	}
	return n
}

// BuildTree converts the document's default scene, or its first scene, into
// a node tree. Documents without scenes use every root node. Image textures
// are ignored; materials keep their factors.
func BuildTree(doc *gltf.Document, name string) (*core.Node, error) {
	root := core.NewGroup(name)
	for _, i := range sceneRoots(doc) {
		n, err := buildNode(doc, i, 0)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	if len(root.MeshNodes()) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoMeshes)
	}
	return root, nil
}

func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// maxDepth bounds recursion on malformed documents with cyclic children.
const maxDepth = 64

func buildNode(doc *gltf.Document, index, depth int) (*core.Node, error) {
	if index < 0 || index >= len(doc.Nodes) {
		return nil, fmt.Errorf("node %d out of range", index)
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("node %d: hierarchy deeper than %d", index, maxDepth)
	}
	src := doc.Nodes[index]
	name := src.Name
	if name == "" {
		name = "node" + strconv.Itoa(index)
	}
	n := core.NewGroup(name)
	n.Transform = nodeTransform(src)

	if src.Mesh != nil {
		if *src.Mesh >= len(doc.Meshes) {
			return nil, fmt.Errorf("node %s: mesh %d out of range", name, *src.Mesh)
		}
		mesh := doc.Meshes[*src.Mesh]
		for pi, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			geo, err := readGeometry(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("node %s primitive %d: %w", name, pi, err)
			}
			n.Add(core.NewMeshNode(name+"/"+strconv.Itoa(pi), geo, readSurface(doc, prim)))
		}
	}

	for _, c := range src.Children {
		child, err := buildNode(doc, c, depth+1)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

func nodeTransform(n *gltf.Node) core.Transform {
	if n.Matrix != [16]float64{} && n.Matrix != identityMatrix {
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return transformFromMatrix(m)
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return core.Transform{
		Position: mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
		Rotation: mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}},
		Scale:    mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])},
	}
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// transformFromMatrix splits a column-major TRS matrix. Shear is dropped.
func transformFromMatrix(m mgl32.Mat4) core.Transform {
	pos := m.Col(3).Vec3()
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	rot := mgl32.QuatIdent()
	if sx > 0 && sy > 0 && sz > 0 {
		r := mgl32.Mat3FromCols(m.Col(0).Vec3().Mul(1/sx), m.Col(1).Vec3().Mul(1/sy), m.Col(2).Vec3().Mul(1/sz))
		rot = mgl32.Mat4ToQuat(r.Mat4()).Normalize()
	}
	return core.Transform{Position: pos, Rotation: rot, Scale: mgl32.Vec3{sx, sy, sz}}
}

func readGeometry(doc *gltf.Document, prim *gltf.Primitive) (*core.Geometry, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	pos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if i, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[i], nil); err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}
	var uvs [][2]float32
	if i, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[i], nil); err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	geo := &core.Geometry{Vertices: make([]core.Vertex, len(pos))}
	for i, p := range pos {
		v := core.Vertex{Pos: p}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.UV = uvs[i]
		}
		geo.Vertices[i] = v
	}

	if prim.Indices != nil {
		if geo.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		geo.Indices = make([]uint32, len(pos))
		for i := range geo.Indices {
			geo.Indices[i] = uint32(i)
		}
	}
	for _, idx := range geo.Indices {
		if int(idx) >= len(pos) {
			return nil, fmt.Errorf("index %d out of range of %d vertices", idx, len(pos))
		}
	}
	return geo, nil
}

func readSurface(doc *gltf.Document, prim *gltf.Primitive) core.Surface {
	s := core.DefaultSurface()
	if prim.Material == nil || *prim.Material >= len(doc.Materials) {
		return s
	}
	m := doc.Materials[*prim.Material]
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		s.BaseColor = [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
		s.Metallic = float32(pbr.MetallicFactorOrDefault())
		s.Roughness = float32(pbr.RoughnessFactorOrDefault())
	}
	// Textures are not sampled; a factor that scales an emissive map would
	// light the whole surface.
	if m.EmissiveTexture == nil {
		s.Emissive = [3]float32{float32(m.EmissiveFactor[0]), float32(m.EmissiveFactor[1]), float32(m.EmissiveFactor[2])}
	}
	return s
}
