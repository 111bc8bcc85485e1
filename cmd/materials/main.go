package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	gekko "github.com/gekko3d/gekko-pbr"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	writeConfig := flag.Bool("write-config", false, "Print the default config as TOML and exit")
	headless := flag.Bool("headless", false, "Run without a window or GPU")
	frames := flag.Int("frames", 0, "Stop after this many frames (0 runs until the window closes)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg := gekko.DefaultConfig()
	if *writeConfig {
		data, err := cfg.Encode()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}
	if *configPath != "" {
		var err error
		if cfg, err = gekko.LoadConfig(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *headless {
		cfg.Render.Headless = true
	}
	if *debug {
		cfg.Debug.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *frames); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg gekko.Config, frames int) error {
	builder := gekko.NewAppBuilder().
		UseModule(gekko.LoggingModule{Prefix: "materials", Debug: cfg.Debug.Enabled})

	if cfg.Render.Headless {
		builder.UseModule(gekko.TimeModule{Clock: gekko.NewStepClock(time.Now(), time.Second/60)})
	} else {
		builder.UseModule(
			gekko.TimeModule{},
			gekko.NewPlatformWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title),
		)
	}

	builder.UseModule(
		gekko.InputModule{},
		gekko.ViewportModule{Width: cfg.Window.Width, Height: cfg.Window.Height, DevicePixelRatio: 1},
		gekko.AssetServerModule{Root: cfg.Assets.Root, Workers: cfg.Assets.Workers, Watch: cfg.Assets.Watch},
	)

	if cfg.Render.Headless {
		builder.UseModule(gekko.HeadlessRendererModule{ClearColor: cfg.Render.ClearColor})
	} else {
		builder.UseModule(gekko.PbrRendererModule{VSync: cfg.Render.VSync, ClearColor: cfg.Render.ClearColor})
	}

	builder.UseModule(
		gekko.DebugPanelModule{Hidden: !cfg.Debug.Panel},
		gekko.OrbitControlsModule{DisableDamping: !cfg.Controls.Damping, DampingFactor: cfg.Controls.DampingFactor},
		gekko.MaterialsSceneModule{},
	)

	app := builder.Build()
	defer app.Shutdown()

	if frames > 0 {
		return app.RunFrames(frames)
	}
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
