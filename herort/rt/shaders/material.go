package shaders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
)

var ErrUnknownHook = errors.New("hook not present in template")

type Stage uint8

const (
	VertexStage Stage = iota
	FragmentStage
)

// Injection is a WGSL snippet inserted right after a hook marker. Several
// injections on one hook keep their order.
type Injection struct {
	Stage Stage
	Hook  string
	Code  string
}

type TextureBinding struct {
	Name string
	// Sampled adds a "<name>_sampler" binding after the texture.
	Sampled bool
}

type Varying struct {
	Name string
	Type UniformType
}

// MaterialDescriptor is a base template plus everything materials layered on
// top of it declare. Descriptors are values; Extend never mutates its
// receiver.
type MaterialDescriptor struct {
	Name       string
	Template   Template
	Uniforms   []Uniform
	Textures   []TextureBinding
	Varyings   []Varying
	Injections []Injection
}

type Extension struct {
	Name       string
	Uniforms   []Uniform
	Textures   []TextureBinding
	Varyings   []Varying
	Injections []Injection
}

func NewMaterial(name string, t Template) MaterialDescriptor {
	return MaterialDescriptor{Name: name, Template: t}
}

func (d MaterialDescriptor) Extend(ext Extension) MaterialDescriptor {
	out := MaterialDescriptor{
		Name:       d.Name,
		Template:   d.Template,
		Uniforms:   append(append([]Uniform(nil), d.Uniforms...), ext.Uniforms...),
		Textures:   append(append([]TextureBinding(nil), d.Textures...), ext.Textures...),
		Varyings:   append(append([]Varying(nil), d.Varyings...), ext.Varyings...),
		Injections: append(append([]Injection(nil), d.Injections...), ext.Injections...),
	}
	if ext.Name != "" {
		out.Name = d.Name + "+" + ext.Name
	}
	return out
}

type BindingKind uint8

const (
	UniformBinding BindingKind = iota
	TextureBindingKind
	SamplerBinding
)

type Binding struct {
	Kind    BindingKind
	Binding uint32
	Name    string
}

// Program is a composed shader ready for pipeline creation.
type Program struct {
	Name     string
	Source   string
	Group    uint32
	Uniforms UniformLayout
	Bindings []Binding
}

// Compose injects d into its template. It is a pure function of d.
func Compose(d MaterialDescriptor) (*Program, error) {
	layout, err := NewUniformLayout(d.Uniforms)
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", d.Name, err)
	}
	p := &Program{
		Name:     d.Name,
		Group:    d.Template.MaterialGroup,
		Uniforms: layout,
	}

	seen := make(map[string]bool)
	for _, t := range d.Textures {
		if seen[t.Name] {
			return nil, fmt.Errorf("material %s: duplicate texture %q", d.Name, t.Name)
		}
		seen[t.Name] = true
	}
	for _, v := range d.Varyings {
		if v.Type == Mat4 {
			return nil, fmt.Errorf("material %s: varying %q cannot be a matrix", d.Name, v.Name)
		}
		if seen[v.Name] {
			return nil, fmt.Errorf("material %s: duplicate varying %q", d.Name, v.Name)
		}
		seen[v.Name] = true
	}

	code := make(map[string][]string)
	var order []string
	add := func(hook, snippet string) {
		if _, ok := code[hook]; !ok {
			order = append(order, hook)
		}
		code[hook] = append(code[hook], snippet)
	}

	var decl strings.Builder
	var binding uint32
	if len(d.Uniforms) > 0 {
		decl.WriteString(layout.StructWGSL("MaterialUniforms"))
		fmt.Fprintf(&decl, "@group(%d) @binding(%d) var<uniform> material: MaterialUniforms;\n", p.Group, binding)
		p.Bindings = append(p.Bindings, Binding{Kind: UniformBinding, Binding: binding, Name: "material"})
		binding++
	}
	for _, t := range d.Textures {
		fmt.Fprintf(&decl, "@group(%d) @binding(%d) var %s: texture_2d<f32>;\n", p.Group, binding, t.Name)
		p.Bindings = append(p.Bindings, Binding{Kind: TextureBindingKind, Binding: binding, Name: t.Name})
		binding++
		if t.Sampled {
			fmt.Fprintf(&decl, "@group(%d) @binding(%d) var %s_sampler: sampler;\n", p.Group, binding, t.Name)
			p.Bindings = append(p.Bindings, Binding{Kind: SamplerBinding, Binding: binding, Name: t.Name + "_sampler"})
			binding++
		}
	}
	if decl.Len() > 0 {
		add(HookBindings, decl.String())
	}

	if len(d.Varyings) > 0 {
		var vs strings.Builder
		for i, v := range d.Varyings {
			fmt.Fprintf(&vs, "@location(%d) %s: %s,\n", d.Template.FirstVarying+uint32(i), v.Name, v.Type.wgsl())
		}
		add(HookVaryings, vs.String())
	}

	for _, inj := range d.Injections {
		add(inj.Hook, inj.Code)
	}

	src := d.Template.Source
	for _, hook := range order {
		if n := strings.Count(src, hookMarker(hook)); n != 1 {
			return nil, fmt.Errorf("material %s: %q in template %s: %w", d.Name, hook, d.Template.Name, ErrUnknownHook)
		}
	}
	p.Source = inject(src, code)
	return p, nil
}

// inject inserts code after each marker line, matching its indentation.
func inject(src string, code map[string][]string) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, line)
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "//#hook:") {
			continue
		}
		snippets := code[strings.TrimPrefix(trimmed, "//#hook:")]
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		for _, s := range snippets {
			for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
				if l == "" {
					out = append(out, "")
					continue
				}
				out = append(out, indent+l)
			}
		}
	}
	return strings.Join(out, "\n")
}

// Compile translates the program to SPIR-V. The GPU path consumes WGSL
// directly; this is used to validate composed programs offline.
func (p *Program) Compile() ([]byte, error) {
	spirv, err := naga.Compile(p.Source)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", p.Name, err)
	}
	return spirv, nil
}

func (p *Program) Validate() error {
	_, err := p.Compile()
	return err
}
