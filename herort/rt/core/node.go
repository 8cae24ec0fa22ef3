package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NodeKind is set when a node is built and never inferred afterwards.
type NodeKind uint8

const (
	NodeGroup NodeKind = iota
	NodeMesh
	NodeLight
)

func (k NodeKind) String() string {
	switch k {
	case NodeGroup:
		return "group"
	case NodeMesh:
		return "mesh"
	case NodeLight:
		return "light"
	}
	return "unknown"
}

// SurfaceKind selects the base shading of a mesh.
type SurfaceKind uint8

const (
	SurfaceStandard SurfaceKind = iota
	SurfaceBasic
	SurfaceMatcap
	// SurfaceWireframe draws the mesh edges as lines with a traveling
	// scanline fade.
	SurfaceWireframe
)

// Surface holds the shading factors of a mesh. Only factors are kept; image
// textures of loaded models are ignored.
type Surface struct {
	Kind SurfaceKind
	// Masked discards fragments where the pointer accumulation is empty.
	Masked    bool
	BaseColor [4]float32
	Emissive  [3]float32
	Metallic  float32
	Roughness float32
}

func DefaultSurface() Surface {
	return Surface{
		Kind:      SurfaceStandard,
		BaseColor: [4]float32{1, 1, 1, 1},
		Metallic:  1,
		Roughness: 1,
	}
}

type Light struct {
	Color     [3]float32
	Intensity float32
}

type Node struct {
	Name      string
	Kind      NodeKind
	Transform Transform
	Geometry  *Geometry // NodeMesh only
	Surface   Surface   // NodeMesh only
	Light     *Light    // NodeLight only
	Children  []*Node
}

func NewGroup(name string) *Node {
	return &Node{Name: name, Kind: NodeGroup, Transform: IdentityTransform()}
}

func NewMeshNode(name string, geo *Geometry, surface Surface) *Node {
	return &Node{Name: name, Kind: NodeMesh, Transform: IdentityTransform(), Geometry: geo, Surface: surface}
}

func NewLightNode(name string, light Light) *Node {
	return &Node{Name: name, Kind: NodeLight, Transform: IdentityTransform(), Light: &light}
}

func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// NodeVisitor has one callback per kind. Nil callbacks are skipped; the
// walk still descends into the node's children.
type NodeVisitor struct {
	Group func(n *Node, world mgl32.Mat4)
	Mesh  func(n *Node, world mgl32.Mat4)
	Light func(n *Node, world mgl32.Mat4)
}

// Walk visits n and its descendants depth first, dispatching on Kind, with
// world matrices accumulated from parent.
func (n *Node) Walk(parent mgl32.Mat4, v NodeVisitor) {
	if n == nil {
		return
	}
	world := parent.Mul4(n.Transform.ObjectToWorld())
	switch n.Kind {
	case NodeGroup:
		if v.Group != nil {
			v.Group(n, world)
		}
	case NodeMesh:
		if v.Mesh != nil {
			v.Mesh(n, world)
		}
	case NodeLight:
		if v.Light != nil {
			v.Light(n, world)
		}
	}
	for _, c := range n.Children {
		c.Walk(world, v)
	}
}

// Clone copies the tree. Geometry is shared, as it is treated as read-only
// once loaded; surfaces and transforms are copied.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Light != nil {
		l := *n.Light
		c.Light = &l
	}
	c.Children = make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		c.Children = append(c.Children, child.Clone())
	}
	return &c
}

// MeshNodes returns every mesh node in the tree in walk order.
func (n *Node) MeshNodes() []*Node {
	var out []*Node
	n.Walk(mgl32.Ident4(), NodeVisitor{
		Mesh: func(m *Node, _ mgl32.Mat4) { out = append(out, m) },
	})
	return out
}
