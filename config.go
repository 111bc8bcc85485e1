package gekko

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every tunable of the showcase. Zero sections are filled from DefaultConfig.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Assets   AssetsConfig   `toml:"assets"`
	Render   RenderConfig   `toml:"render"`
	Controls ControlsConfig `toml:"controls"`
	Debug    DebugConfig    `toml:"debug"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type AssetsConfig struct {
	Root    string `toml:"root"`
	Watch   bool   `toml:"watch"`
	Workers int    `toml:"workers"`
}

type RenderConfig struct {
	VSync      bool       `toml:"vsync"`
	ClearColor [4]float64 `toml:"clear_color"`
	Headless   bool       `toml:"headless"`
}

type ControlsConfig struct {
	Damping       bool    `toml:"damping"`
	DampingFactor float32 `toml:"damping_factor"`
}

type DebugConfig struct {
	Enabled bool `toml:"enabled"`
	Panel   bool `toml:"panel"`
}

var ErrInvalidConfig = errors.New("invalid config")

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "Materials",
		},
		Assets: AssetsConfig{
			Root:    "static",
			Workers: 4,
		},
		Render: RenderConfig{
			VSync:      true,
			ClearColor: [4]float64{0, 0, 0, 1},
		},
		Controls: ControlsConfig{
			Damping:       true,
			DampingFactor: 0.05,
		},
		Debug: DebugConfig{
			Panel: true,
		},
	}
}

// LoadConfig reads a TOML file over the defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Assets.Workers <= 0:
		return fmt.Errorf("%w: assets.workers must be positive, got %d", ErrInvalidConfig, c.Assets.Workers)
	case c.Controls.DampingFactor < 0 || c.Controls.DampingFactor > 1:
		return fmt.Errorf("%w: controls.damping_factor %v outside [0,1]", ErrInvalidConfig, c.Controls.DampingFactor)
	}
	return nil
}

// Encode renders the config as TOML, used to write a starter file.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
