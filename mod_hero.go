package glowmask

import (
	"context"
	"time"

	app_rt "github.com/gekko3d/glowmask/herort/rt/app"
	"github.com/gekko3d/glowmask/herort/rt/core"
)

// States of an app running the hero scene. Install HeroModule into a builder
// configured with UseStates(StateLoading, StateClosed).
const (
	StateLoading State = iota
	StateRunning
	StateClosed
)

const rendererHero = "herort"

// HeroModule opens the window and renders the pointer-revealed helmet over
// the head. It needs InputModule, TimeModule and AssetServerModule.
type HeroModule struct {
	Config HeroConfig
	// LoadTimeout bounds model downloads. Zero means no limit.
	LoadTimeout time.Duration
}

type HeroState struct {
	RtApp  *app_rt.App
	Config HeroConfig

	HeadId   AssetId
	HelmetId AssetId
	Scene    *core.Node
}

func (mod HeroModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, rendererHero)
	cfg := mod.Config
	windowState := ensureWindowResource(app, cfg.Width, cfg.Height, cfg.Title)

	RtApp := app_rt.NewApp(windowState.windowGlfw, cfg.rtOptions())
	if err := RtApp.Init(); err != nil {
		panic(err)
	}
	cmd.AddResources(&HeroState{RtApp: RtApp, Config: cfg})

	app.UseSystem(
		System(mod.heroLoadSystem).
			InStage(Update).
			InState(OnEnter(StateLoading)),
	)
	app.UseSystem(
		System(heroInputSystem).
			InStage(Update).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(heroUpdateSystem).
			InStage(PostUpdate).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(heroRenderSystem).
			InStage(Render).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(heroReleaseSystem).
			InStage(Finale).
			InState(OnExit(StateRunning)),
	)
}

// heroLoadSystem fetches both models and builds the scene. A model that
// cannot be loaded is left out and the rest of the scene still renders.
func (mod HeroModule) heroLoadSystem(state *HeroState, server *AssetServer, cmd *Commands) {
	ctx := context.Background()
	if mod.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mod.LoadTimeout)
		defer cancel()
	}

	state.loadScene(ctx, server, cmd.Logger())
	state.RtApp.SetScene(state.Scene)
	cmd.ChangeState(StateRunning)
}

func (state *HeroState) loadScene(ctx context.Context, server *AssetServer, logger Logger) {
	if err := server.Prefetch(ctx, state.Config.HeadModel, state.Config.HelmetModel); err != nil {
		logger.Warnf("prefetch: %v", err)
	}
	state.HeadId = server.LoadModel(ctx, state.Config.HeadModel)
	state.HelmetId = server.LoadModel(ctx, state.Config.HelmetModel)
	state.Scene = core.AssembleHero(server.Model(state.HeadId), server.Model(state.HelmetId), state.Config.Hero)
}

// heroInputSystem maps the frame's input onto the renderer: pointer position,
// left drag orbit and the debug keys.
func heroInputSystem(input *Input, state *HeroState, cmd *Commands) {
	rt := state.RtApp
	if input.CloseRequested || input.JustPressed[KeyEscape] {
		cmd.Exit()
		return
	}

	if input.CursorInside {
		rt.Pointer.Move(input.MouseX, input.MouseY, input.WindowWidth, input.WindowHeight)
	} else {
		rt.Pointer.Leave()
	}
	if input.Dragging(MouseButtonLeft) {
		rt.Camera.Rotate(float32(input.MouseDeltaX), float32(input.MouseDeltaY), input.WindowHeight)
	}

	if input.JustPressed[KeyR] {
		rt.ResetAccumulation()
	}
	if input.JustPressed[KeyF3] {
		rt.ToggleDebug()
	}
}

func heroUpdateSystem(input *Input, t *Time, state *HeroState) {
	rt := state.RtApp
	if input.FramebufferWidth != rt.Viewport.Width || input.FramebufferHeight != rt.Viewport.Height {
		rt.Resize(input.FramebufferWidth, input.FramebufferHeight)
	}
	rt.Advance(t.ElapsedSeconds(), t.DeltaSeconds())
}

func heroRenderSystem(state *HeroState) {
	state.RtApp.Render()
}

func heroReleaseSystem(state *HeroState, windowState *WindowState) {
	state.RtApp.Release()
	windowState.Destroy()
}
