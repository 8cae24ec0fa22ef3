package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// WithRenderPass begins a pass on encoder, runs draw and always ends the
// pass, including when draw panics.
func WithRenderPass(encoder *wgpu.CommandEncoder, desc *wgpu.RenderPassDescriptor, draw func(pass *wgpu.RenderPassEncoder)) (err error) {
	pass := encoder.BeginRenderPass(desc)
	defer func() {
		if endErr := pass.End(); endErr != nil && err == nil {
			err = fmt.Errorf("%s pass end: %w", desc.Label, endErr)
		}
	}()
	draw(pass)
	return nil
}
