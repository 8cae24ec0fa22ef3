package glowmask

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/gekko3d/glowmask/herort/rt/assets"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTriangle(t *testing.T, dir string) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos},
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "tri", Mesh: gltf.Index(0)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	file := filepath.Join(dir, "tri.glb")
	require.NoError(t, gltf.SaveBinary(doc, file))
	return file
}

func TestAssetServerLoadModel(t *testing.T) {
	dir := t.TempDir()
	file := writeTriangle(t, dir)
	server := NewAssetServer(assets.NewLoader(t.TempDir()), nil)

	id := server.LoadModel(context.Background(), file)
	assert.Equal(t, makeAssetId(file), id)
	require.NotNil(t, server.Model(id))
	assert.Len(t, server.Model(id).MeshNodes(), 1)
	assert.Equal(t, file, server.Source(id))

	// Same source resolves to the same shared tree.
	again := server.LoadModel(context.Background(), file)
	assert.Equal(t, id, again)
	assert.Same(t, server.Model(id), server.Model(again))
}

func TestAssetServerMissingModelIsAbsent(t *testing.T) {
	var warn bytes.Buffer
	logger := NewLogger("", false, &bytes.Buffer{}, &warn, 0)
	server := NewAssetServer(assets.NewLoader(t.TempDir()), logger)

	missing := filepath.Join(t.TempDir(), "nope.glb")
	id := server.LoadModel(context.Background(), missing)
	assert.Nil(t, server.Model(id))
	assert.Contains(t, warn.String(), "unavailable")

	// Reported once.
	warn.Reset()
	server.LoadModel(context.Background(), missing)
	assert.Empty(t, warn.String())

	assert.Nil(t, server.Model(AssetId("unknown")))
}

func TestAssetIdStable(t *testing.T) {
	assert.Equal(t, makeAssetId(DefaultHelmetModel), makeAssetId(DefaultHelmetModel))
	assert.NotEqual(t, makeAssetId(DefaultHelmetModel), makeAssetId(DefaultHeadModel))
}

func TestAssetServerModuleInstall(t *testing.T) {
	app := NewAppBuilder().UseModule(AssetServerModule{CacheDir: t.TempDir()}).Build()
	_, ok := resourceOf[AssetServer](app)
	assert.True(t, ok)
}
