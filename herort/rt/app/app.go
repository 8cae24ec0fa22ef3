package app

import (
	"fmt"
	"sort"

	"github.com/gekko3d/glowmask/herort/rt/core"
	"github.com/gekko3d/glowmask/herort/rt/gpu"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type Options struct {
	Feedback core.FeedbackParams
	Camera   core.CameraParams
	Clear    wgpu.Color
	Debug    bool
}

func DefaultOptions() Options {
	return Options{
		Feedback: core.DefaultFeedbackParams(),
		Camera:   core.DefaultCameraParams(),
		Clear:    wgpu.Color{R: 1, G: 1, B: 1, A: 1},
	}
}

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Composer *gpu.SceneComposer
	Text     *gpu.TextPass
	Atlas    *core.GlyphAtlas

	Options  Options
	Camera   *core.OrbitCamera
	Pointer  *core.PointerTracker
	Viewport *core.Viewport
	Profiler *Profiler

	// Elapsed and Delta are the frame times in seconds set by Advance.
	Elapsed float32
	Delta   float32

	HUD       []core.HUDLine
	DebugMode bool

	resetPending bool

	LastRenderTime float64
	FrameCount     int
	FPS            float64
	FPSTime        float64
}

func NewApp(window *glfw.Window, opts Options) *App {
	return &App{
		Window:    window,
		Options:   opts,
		Camera:    core.NewOrbitCamera(opts.Camera),
		Pointer:   core.NewPointerTracker(),
		Viewport:  core.NewViewport(1, 1),
		Profiler:  NewProfiler(),
		DebugMode: opts.Debug,
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return err
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return err
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	if !a.Viewport.Resize(width, height) {
		width, height = 1, 1
	}
	caps := a.Surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		return fmt.Errorf("surface reports no formats")
	}
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	a.Composer, err = gpu.NewSceneComposer(a.Device, a.Queue, a.Config.Format, width, height, a.Options.Feedback)
	if err != nil {
		return fmt.Errorf("scene composer: %w", err)
	}

	a.Atlas, err = core.NewMonoAtlas(18)
	if err != nil {
		fmt.Printf("WARNING: Failed to initialize text renderer: %v\n", err)
	} else if a.Text, err = gpu.NewTextPass(a.Device, a.Queue, a.Config.Format, a.Atlas); err != nil {
		fmt.Printf("WARNING: Failed to create text pass: %v\n", err)
		a.Text = nil
	}

	return nil
}

func GetSurfaceDescriptor(w *glfw.Window) *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w)
}

// SetScene swaps the drawn tree. A nil root draws only the clear color.
func (a *App) SetScene(root *core.Node) {
	a.Composer.SetScene(root)
}

// Resize reconfigures the surface and the size dependent targets. The
// accumulated trail starts over at the new size. Minimized windows report
// a zero size and are ignored.
func (a *App) Resize(w, h int) {
	if !a.Viewport.Resize(w, h) {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	a.Composer.Resize(w, h)
}

// ResetAccumulation clears the trail on the next rendered frame.
func (a *App) ResetAccumulation() {
	a.resetPending = true
}

func (a *App) ToggleDebug() {
	a.DebugMode = !a.DebugMode
}

// Advance takes the frame times, in seconds, from the host clock and
// prepares the HUD.
func (a *App) Advance(elapsed, delta float32) {
	a.Profiler.BeginScope("Update")
	defer a.Profiler.EndScope("Update")

	a.Elapsed, a.Delta = elapsed, delta
	a.Camera.Update()

	a.HUD = a.HUD[:0]
	if !a.DebugMode {
		return
	}
	a.DrawText(fmt.Sprintf("FPS: %.1f", a.FPS), 10, 10, 1, [4]float32{0.8, 0.1, 0.1, 1})
	p := a.Pointer.State()
	if a.Pointer.Active() {
		a.DrawText(fmt.Sprintf("Pointer: %+.2f %+.2f", p[0], p[1]), 10, 0, 1, [4]float32{0, 0, 0, 1})
	} else {
		a.DrawText("Pointer: outside", 10, 0, 1, [4]float32{0, 0, 0, 1})
	}
	stats := a.Composer.Stats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a.Profiler.SetCount(name, stats[name])
	}
	for _, line := range a.Profiler.Lines() {
		a.DrawText(line, 10, 0, 0.8, [4]float32{0.2, 0.2, 0.2, 1})
	}
}

// DrawText queues a HUD line for this frame. A zero y stacks the line below
// the previous one.
func (a *App) DrawText(text string, x, y, scale float32, color [4]float32) {
	if y == 0 && len(a.HUD) > 0 && a.Atlas != nil {
		prev := a.HUD[len(a.HUD)-1]
		y = prev.Y + a.Atlas.LineHeight(prev.Scale)
	}
	a.HUD = append(a.HUD, core.HUDLine{Text: text, X: x, Y: y, Scale: scale, Color: color})
}

func (a *App) frameInputs() gpu.FrameInputs {
	aspect := a.Viewport.Aspect()
	return gpu.FrameInputs{
		ViewProj:  a.Camera.ViewProjection(aspect),
		CameraPos: a.Camera.Position(),
		Pointer:   a.Pointer.State(),
		Aspect:    aspect,
		Delta:     a.Delta,
		Elapsed:   a.Elapsed,
		Clear:     a.Options.Clear,
	}
}

// Render records and presents one frame. Failures are reported and the frame
// is dropped; the next frame starts from the same state.
func (a *App) Render() {
	a.Profiler.BeginScope("Render")
	defer a.Profiler.EndScope("Render")

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		fmt.Printf("ERROR: GetCurrentTexture failed: %v\n", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		fmt.Printf("ERROR: CreateView failed: %v\n", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		fmt.Printf("ERROR: CreateCommandEncoder failed: %v\n", err)
		return
	}
	defer encoder.Release()

	if a.resetPending {
		if err := a.Composer.Feedback.Clear(encoder); err != nil {
			fmt.Printf("ERROR: Feedback clear failed: %v\n", err)
			return
		}
		a.resetPending = false
	}

	if err := a.Composer.Frame(encoder, view, a.frameInputs()); err != nil {
		fmt.Printf("ERROR: Scene pass failed: %v\n", err)
		return
	}

	if a.Text != nil {
		a.Text.Update(a.Queue, a.HUD, int(a.Config.Width), int(a.Config.Height))
		if err := a.Text.Encode(encoder, view); err != nil {
			fmt.Printf("ERROR: HUD pass failed: %v\n", err)
		}
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		fmt.Printf("ERROR: Encoder Finish failed: %v\n", err)
		return
	}
	defer cmd.Release()
	a.Queue.Submit(cmd)
	a.Surface.Present()

	a.updateFPS(glfw.GetTime())
}

func (a *App) updateFPS(now float64) {
	if a.LastRenderTime > 0 {
		a.FrameCount++
		a.FPSTime += now - a.LastRenderTime
		if a.FPSTime >= 1.0 {
			a.FPS = float64(a.FrameCount) / a.FPSTime
			a.FrameCount = 0
			a.FPSTime = 0
		}
	}
	a.LastRenderTime = now
}

// Release frees GPU resources in reverse creation order.
func (a *App) Release() {
	if a.Text != nil {
		a.Text.Release()
		a.Text = nil
	}
	if a.Composer != nil {
		a.Composer.Release()
		a.Composer = nil
	}
	if a.Queue != nil {
		a.Queue.Release()
		a.Queue = nil
	}
	if a.Device != nil {
		a.Device.Release()
		a.Device = nil
	}
	if a.Adapter != nil {
		a.Adapter.Release()
		a.Adapter = nil
	}
	if a.Surface != nil {
		a.Surface.Release()
		a.Surface = nil
	}
	if a.Instance != nil {
		a.Instance.Release()
		a.Instance = nil
	}
}
