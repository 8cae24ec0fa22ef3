package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gekko3d/glowmask"
	"github.com/gekko3d/glowmask/herort/rt/app"
	"github.com/gekko3d/glowmask/herort/rt/core"
	"github.com/gekko3d/glowmask/herort/rt/shaders"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg := glowmask.DefaultHeroConfig()
	cfg.BindFlags(flag.CommandLine)
	headless := flag.String("headless", "", "write the accumulation of a scripted pointer path as PNGs into this directory and exit")
	frames := flag.Int("frames", 240, "pointer frames in headless mode")
	validate := flag.Bool("validate", false, "compile every material to SPIR-V and exit")
	loadTimeout := flag.Duration("load-timeout", 30*time.Second, "model download timeout")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	switch {
	case *validate:
		os.Exit(validateMaterials())
	case *headless != "":
		if err := renderHeadless(*headless, cfg, *frames); err != nil {
			fmt.Fprintf(os.Stderr, "headless: %v\n", err)
			os.Exit(1)
		}
		return
	}

	glowmask.NewAppBuilder().
		UseStates(glowmask.StateLoading, glowmask.StateClosed).
		UseModule(
			glowmask.LoggingModule{Prefix: "herort", Debug: cfg.Debug},
			glowmask.TimeModule{},
			glowmask.NewPlatformWindow(cfg.Width, cfg.Height, cfg.Title),
			glowmask.InputModule{},
			glowmask.AssetServerModule{CacheDir: cfg.CacheDir},
			glowmask.HeroModule{Config: cfg, LoadTimeout: *loadTimeout},
		).
		Build().
		Run()
}

func validateMaterials() int {
	failed := 0
	for _, m := range shaders.Catalog() {
		p, err := shaders.Compose(m)
		if err == nil {
			err = p.Validate()
		}
		if err != nil {
			fmt.Printf("FAIL %-16s %v\n", m.Name, err)
			failed++
			continue
		}
		fmt.Printf("ok   %s\n", m.Name)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func renderHeadless(dir string, cfg glowmask.HeroConfig, frames int) error {
	opts := app.DefaultHeadlessOptions()
	opts.Feedback = cfg.Feedback
	opts.Path = app.CirclePath(frames, frames/4, 0.5)

	field, err := app.RenderHeadless(opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writePNG(filepath.Join(dir, "accumulation.png"), func(f *os.File) error { return app.WriteFieldPNG(f, field) }); err != nil {
		return err
	}
	if err := writePNG(filepath.Join(dir, "mask.png"), func(f *os.File) error { return app.WriteMaskPNG(f, field) }); err != nil {
		return err
	}
	fmt.Printf("coverage %.1f%%\n", field.Coverage(core.MaskThreshold)*100)
	return nil
}

func writePNG(name string, encode func(f *os.File) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
