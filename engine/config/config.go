// Package config loads the viewer settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Window struct {
	Title  string `toml:"title"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	X      int32  `toml:"x"`
	Y      int32  `toml:"y"`
}

// Position is the window origin in screen coordinates. Monitors left of or
// above the primary one have negative coordinates.
func (w Window) Position() (int, int) {
	return int(w.X), int(w.Y)
}

type Renderer struct {
	VSync          bool `toml:"vsync"`
	FramesInFlight int  `toml:"frames_in_flight"`
	// Debug turns on validation layers and the idle checks around setting
	// changes.
	Debug bool `toml:"debug"`
	// FenceTimeoutMs bounds a wait on a frame slot; 0 waits forever.
	FenceTimeoutMs int64 `toml:"fence_timeout_ms"`
}

// FenceTimeout is FenceTimeoutMs as a duration.
func (r Renderer) FenceTimeout() time.Duration {
	if r.FenceTimeoutMs <= 0 {
		return driver.Forever
	}
	return time.Duration(r.FenceTimeoutMs) * time.Millisecond
}

type Log struct {
	Level string `toml:"level"`
}

type Assets struct {
	// Path is a model loaded at startup, if set.
	Path    string `toml:"path"`
	Watch   bool   `toml:"watch"`
	Workers int    `toml:"workers"`
}

type Overlay struct {
	// Font is a BMFont descriptor; empty uses the built-in 7x13 font.
	Font    string `toml:"font"`
	Scale   int    `toml:"scale"`
	Visible bool   `toml:"visible"`
}

type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Log      Log      `toml:"log"`
	Assets   Assets   `toml:"assets"`
	Overlay  Overlay  `toml:"overlay"`
}

func Default() Config {
	return Config{
		Window: Window{
			Title:  "Prism",
			Width:  1280,
			Height: 720,
			X:      100,
			Y:      100,
		},
		Renderer: Renderer{
			VSync:          true,
			FramesInFlight: 2,
		},
		Log: Log{Level: "info"},
		Assets: Assets{
			Watch:   true,
			Workers: 1,
		},
		Overlay: Overlay{
			Scale:   1,
			Visible: true,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("%s: %w: %s", path, ErrInvalidConfig, strict.String())
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Renderer.FramesInFlight < 1 {
		return fmt.Errorf("%w: frames_in_flight must be at least 1, got %d", ErrInvalidConfig, c.Renderer.FramesInFlight)
	}
	if c.Renderer.FenceTimeoutMs < 0 {
		return fmt.Errorf("%w: negative fence_timeout_ms", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Log.Level)
	}
	if c.Assets.Workers < 1 {
		return fmt.Errorf("%w: assets.workers must be at least 1, got %d", ErrInvalidConfig, c.Assets.Workers)
	}
	if c.Overlay.Scale < 1 {
		return fmt.Errorf("%w: overlay.scale must be at least 1, got %d", ErrInvalidConfig, c.Overlay.Scale)
	}
	return nil
}
