package glowmask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSingleRenderer(t *testing.T) {
	app := NewAppBuilder().Build()

	ensureSingleRenderer(app, rendererHero)
	tag, ok := resourceOf[RendererTag](app)
	require.True(t, ok)
	assert.Equal(t, rendererHero, tag.Name)

	assert.NotPanics(t, func() { ensureSingleRenderer(app, rendererHero) })
	assert.PanicsWithValue(t, "Multiple renderers installed: herort and other", func() {
		ensureSingleRenderer(app, "other")
	})
	assert.Panics(t, func() { ensureSingleRenderer(nil, rendererHero) })
}
