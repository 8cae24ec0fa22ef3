package glowmask

import (
	"context"

	"github.com/gekko3d/glowmask/herort/rt/assets"
	"github.com/gekko3d/glowmask/herort/rt/core"
	"github.com/google/uuid"
)

// AssetId names a model by its source. The same source always maps to the
// same id.
type AssetId string

func makeAssetId(src string) AssetId {
	return AssetId(uuid.NewSHA1(uuid.NameSpaceURL, []byte(src)).String())
}

// AssetServer loads models once and hands out shared trees by id. Failed
// loads are remembered as absent so a missing model is reported once.
type AssetServer struct {
	loader  *assets.Loader
	logger  Logger
	models  map[AssetId]*core.Node
	sources map[AssetId]string
}

type AssetServerModule struct {
	CacheDir string
}

func NewAssetServer(loader *assets.Loader, logger Logger) *AssetServer {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &AssetServer{
		loader:  loader,
		logger:  logger,
		models:  make(map[AssetId]*core.Node),
		sources: make(map[AssetId]string),
	}
}

func (mod AssetServerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewAssetServer(assets.NewLoader(mod.CacheDir), namedLogger(app.Logger(), "assets")))
}

// Prefetch downloads remote sources ahead of LoadModel.
func (server *AssetServer) Prefetch(ctx context.Context, srcs ...string) error {
	return server.loader.PrefetchAll(ctx, srcs...)
}

// LoadModel returns the id of src, loading it on first use. A model that
// fails to load is logged and stays absent.
func (server *AssetServer) LoadModel(ctx context.Context, src string) AssetId {
	id := makeAssetId(src)
	if _, seen := server.sources[id]; seen {
		return id
	}
	server.sources[id] = src
	server.models[id] = server.loader.LoadOrAbsent(ctx, src, func(src string, err error) {
		server.logger.Warnf("model %s unavailable: %v", src, err)
	})
	if server.models[id] != nil {
		server.logger.Infof("loaded model %s (%d meshes)", src, len(server.models[id].MeshNodes()))
	}
	return id
}

// Model is nil for unknown ids and for models that failed to load.
func (server *AssetServer) Model(id AssetId) *core.Node {
	return server.models[id]
}

func (server *AssetServer) Source(id AssetId) string {
	return server.sources[id]
}
