package shaders

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type UniformType uint8

const (
	F32 UniformType = iota
	Vec2
	Vec4
	Mat4
)

func (t UniformType) wgsl() string {
	switch t {
	case F32:
		return "f32"
	case Vec2:
		return "vec2<f32>"
	case Vec4:
		return "vec4<f32>"
	case Mat4:
		return "mat4x4<f32>"
	}
	return "f32"
}

// size and align follow the WGSL host-shareable layout rules.
func (t UniformType) size() int {
	switch t {
	case Vec2:
		return 8
	case Vec4:
		return 16
	case Mat4:
		return 64
	}
	return 4
}

func (t UniformType) align() int {
	switch t {
	case Vec2:
		return 8
	case Vec4, Mat4:
		return 16
	}
	return 4
}

type Uniform struct {
	Name string
	Type UniformType
}

// FrameUniforms and ObjectUniforms mirror the Frame and Object structs the
// mesh templates declare in groups 0 and 1.
var (
	FrameUniforms = []Uniform{
		{Name: "view_proj", Type: Mat4},
		{Name: "camera_pos", Type: Vec4},
		{Name: "ambient", Type: Vec4},
	}
	ObjectUniforms = []Uniform{
		{Name: "model", Type: Mat4},
		{Name: "normal_mat", Type: Mat4},
		{Name: "base_color", Type: Vec4},
		{Name: "emissive", Type: Vec4},
		{Name: "pbr", Type: Vec4},
	}
)

type UniformHandle struct {
	offset int
	typ    UniformType
}

// UniformLayout places each field at its WGSL offset. Size is padded to 16
// bytes, the minimum uniform binding granularity.
type UniformLayout struct {
	Fields []Uniform
	Size   int

	handles map[string]UniformHandle
}

func roundUp(align, n int) int {
	return (n + align - 1) / align * align
}

func NewUniformLayout(fields []Uniform) (UniformLayout, error) {
	l := UniformLayout{
		Fields:  fields,
		handles: make(map[string]UniformHandle, len(fields)),
	}
	off := 0
	for _, f := range fields {
		if f.Name == "" {
			return UniformLayout{}, fmt.Errorf("uniform with empty name")
		}
		if _, dup := l.handles[f.Name]; dup {
			return UniformLayout{}, fmt.Errorf("duplicate uniform %q", f.Name)
		}
		off = roundUp(f.Type.align(), off)
		l.handles[f.Name] = UniformHandle{offset: off, typ: f.Type}
		off += f.Type.size()
	}
	l.Size = roundUp(16, off)
	return l, nil
}

func (l UniformLayout) Lookup(name string) (UniformHandle, bool) {
	h, ok := l.handles[name]
	return h, ok
}

// Handle resolves name and checks that it has type want.
func (l UniformLayout) Handle(name string, want UniformType) (UniformHandle, error) {
	h, ok := l.handles[name]
	if !ok {
		return UniformHandle{}, fmt.Errorf("unknown uniform %q", name)
	}
	if h.typ != want {
		return UniformHandle{}, fmt.Errorf("uniform %q is %s, not %s", name, h.typ.wgsl(), want.wgsl())
	}
	return h, nil
}

func (l UniformLayout) Offset(name string) int {
	h, ok := l.handles[name]
	if !ok {
		return -1
	}
	return h.offset
}

// StructWGSL renders the layout as a WGSL struct declaration.
func (l UniformLayout) StructWGSL(name string) string {
	s := "struct " + name + " {\n"
	for _, f := range l.Fields {
		s += "    " + f.Name + ": " + f.Type.wgsl() + ",\n"
	}
	return s + "};\n"
}

// UniformSet is CPU-side backing storage for one uniform buffer. Setters
// write in place; Bytes is what gets uploaded.
type UniformSet struct {
	Layout UniformLayout
	data   []byte
}

func NewUniformSet(layout UniformLayout) *UniformSet {
	return &UniformSet{Layout: layout, data: make([]byte, layout.Size)}
}

func (s *UniformSet) Bytes() []byte {
	return s.data
}

func (s *UniformSet) put(off int, v float32) {
	binary.LittleEndian.PutUint32(s.data[off:], math.Float32bits(v))
}

func (s *UniformSet) SetF32(name string, v float32) error {
	h, err := s.Layout.Handle(name, F32)
	if err != nil {
		return err
	}
	s.PutF32(h, v)
	return nil
}

func (s *UniformSet) SetVec2(name string, v mgl32.Vec2) error {
	h, err := s.Layout.Handle(name, Vec2)
	if err != nil {
		return err
	}
	s.PutVec2(h, v)
	return nil
}

func (s *UniformSet) SetVec4(name string, v mgl32.Vec4) error {
	h, err := s.Layout.Handle(name, Vec4)
	if err != nil {
		return err
	}
	s.PutVec4(h, v)
	return nil
}

func (s *UniformSet) SetMat4(name string, m mgl32.Mat4) error {
	h, err := s.Layout.Handle(name, Mat4)
	if err != nil {
		return err
	}
	s.PutMat4(h, m)
	return nil
}

// The Put writers take handles resolved against s.Layout and skip the name
// lookup. Per-frame uploads use them.

func (s *UniformSet) PutF32(h UniformHandle, v float32) {
	s.put(h.offset, v)
}

func (s *UniformSet) PutVec2(h UniformHandle, v mgl32.Vec2) {
	s.put(h.offset, v[0])
	s.put(h.offset+4, v[1])
}

func (s *UniformSet) PutVec4(h UniformHandle, v mgl32.Vec4) {
	for i := 0; i < 4; i++ {
		s.put(h.offset+4*i, v[i])
	}
}

// PutMat4 writes m column-major, which is both mgl32's and WGSL's order.
func (s *UniformSet) PutMat4(h UniformHandle, m mgl32.Mat4) {
	for i := 0; i < 16; i++ {
		s.put(h.offset+4*i, m[i])
	}
}

// F32 reads back a scalar; used by tests and the debug overlay.
func (s *UniformSet) F32(name string) float32 {
	h, ok := s.Layout.handles[name]
	if !ok {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(s.data[h.offset:]))
}
