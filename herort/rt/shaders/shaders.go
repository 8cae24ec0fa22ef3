package shaders

import (
	_ "embed"
)

//go:embed standard.wgsl
var StandardWGSL string

//go:embed basic.wgsl
var BasicWGSL string

//go:embed fullscreen.wgsl
var FullscreenWGSL string

//go:embed text.wgsl
var TextWGSL string

// Template is a base shader with hook markers that materials inject into.
// Material bindings go in MaterialGroup; generated varyings are numbered
// from FirstVarying.
type Template struct {
	Name          string
	Source        string
	MaterialGroup uint32
	FirstVarying  uint32
}

var (
	StandardTemplate = Template{
		Name:          "standard",
		Source:        StandardWGSL,
		MaterialGroup: 2,
		FirstVarying:  3,
	}
	BasicTemplate = Template{
		Name:          "basic",
		Source:        BasicWGSL,
		MaterialGroup: 2,
		FirstVarying:  3,
	}
	FullscreenTemplate = Template{
		Name:          "fullscreen",
		Source:        FullscreenWGSL,
		MaterialGroup: 0,
		FirstVarying:  1,
	}
	// TextTemplate has no hooks; the HUD pass binds its own atlas.
	TextTemplate = Template{
		Name:   "text",
		Source: TextWGSL,
	}
)

// Hook names understood by the mesh templates. The fullscreen template only
// has HookBindings, HookVaryings and HookColorFragment.
const (
	HookBindings               = "material_bindings"
	HookVaryings               = "varyings"
	HookBeginVertex            = "begin_vertex"
	HookProjectVertex          = "project_vertex"
	HookClippingPlanesFragment = "clipping_planes_fragment"
	HookColorFragment          = "color_fragment"
	HookOutputFragment         = "output_fragment"
)

func hookMarker(name string) string {
	return "//#hook:" + name
}
