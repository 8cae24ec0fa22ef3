package glowmask

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/gekko3d/glowmask/herort/rt/app"
	"github.com/gekko3d/glowmask/herort/rt/core"
)

const (
	DefaultHeadModel   = "https://threejs.org/examples/models/gltf/LeePerrySmith/LeePerrySmith.glb"
	DefaultHelmetModel = "https://threejs.org/examples/models/gltf/DamagedHelmet/glTF/DamagedHelmet.gltf"
)

// HeroConfig collects the tunables of the hero scene.
type HeroConfig struct {
	Width  int
	Height int
	Title  string
	Debug  bool

	HeadModel   string
	HelmetModel string
	CacheDir    string

	Feedback core.FeedbackParams
	Camera   core.CameraParams
	Hero     core.HeroParams
}

func DefaultHeroConfig() HeroConfig {
	return HeroConfig{
		Width:       defaultWindowWidth,
		Height:      defaultWindowHeight,
		Title:       defaultWindowTitle,
		HeadModel:   DefaultHeadModel,
		HelmetModel: DefaultHelmetModel,
		CacheDir:    ".cache/models",
		Feedback:    core.DefaultFeedbackParams(),
		Camera:      core.DefaultCameraParams(),
		Hero:        core.DefaultHeroParams(),
	}
}

// BindFlags registers the command line overrides of c on fs. Values parsed
// later are written straight into c.
func (c *HeroConfig) BindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "width", c.Width, "window width")
	fs.IntVar(&c.Height, "height", c.Height, "window height")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "show the debug overlay")
	fs.StringVar(&c.HeadModel, "head", c.HeadModel, "head model path or URL")
	fs.StringVar(&c.HelmetModel, "helmet", c.HelmetModel, "helmet model path or URL")
	fs.StringVar(&c.CacheDir, "cache", c.CacheDir, "download cache directory")
	float32Var(fs, &c.Feedback.Radius, "radius", "pointer radius in normalized device units")
	float32Var(fs, &c.Feedback.Duration, "duration", "seconds for a full trail to fade")
	float32Var(fs, &c.Hero.WireframeOpacity, "wire-opacity", "base opacity of the helmet wireframe")
}

var errNotPositive = errors.New("must be positive")

func (c HeroConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size %dx%d: %w", c.Width, c.Height, errNotPositive)
	}
	if c.Feedback.Radius <= 0 {
		return fmt.Errorf("radius %v: %w", c.Feedback.Radius, errNotPositive)
	}
	if c.Feedback.Duration <= 0 {
		return fmt.Errorf("duration %v: %w", c.Feedback.Duration, errNotPositive)
	}
	if c.Hero.WireframeOpacity < 0 || c.Hero.WireframeOpacity > 1 {
		return fmt.Errorf("wireframe opacity %v outside [0,1]", c.Hero.WireframeOpacity)
	}
	return nil
}

func (c HeroConfig) rtOptions() app.Options {
	opts := app.DefaultOptions()
	opts.Feedback = c.Feedback
	opts.Camera = c.Camera
	opts.Debug = c.Debug
	return opts
}

type float32Value struct{ p *float32 }

func float32Var(fs *flag.FlagSet, p *float32, name, usage string) {
	fs.Var(float32Value{p}, name, usage)
}

func (v float32Value) String() string {
	if v.p == nil {
		return "0"
	}
	return fmt.Sprint(*v.p)
}

func (v float32Value) Set(s string) error {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return err
	}
	*v.p = float32(f)
	return nil
}
