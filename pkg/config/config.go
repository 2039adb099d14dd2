// Package config loads anchorboard settings from a TOML file.
//
// Only tuning parameters live here. Diagram contents are never stored.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/ha1tch/anchorboard/pkg/diagram"
	"github.com/ha1tch/anchorboard/pkg/interact"
	"github.com/ha1tch/anchorboard/pkg/render"
)

// Config holds all settings.
type Config struct {
	Geometry    GeometryConfig    `toml:"geometry"`
	Snap        SnapConfig        `toml:"snap"`
	Interaction InteractionConfig `toml:"interaction"`
	Render      RenderConfig      `toml:"render"`
	Editor      EditorConfig      `toml:"editor"`
	Log         LogConfig         `toml:"log"`
}

// GeometryConfig controls anchor placement.
type GeometryConfig struct {
	AnchorCount int `toml:"anchor_count" validate:"min=2,max=1000"`
}

// SnapConfig controls endpoint snapping.
type SnapConfig struct {
	Threshold float64 `toml:"threshold" validate:"gt=0"`
	Buffer    float64 `toml:"buffer" validate:"gte=0"`
}

// InteractionConfig controls the pointer state machine.
type InteractionConfig struct {
	LongPressMS int     `toml:"long_press_ms" validate:"gt=0"`
	OriginX     float64 `toml:"origin_x"`
	OriginY     float64 `toml:"origin_y"`
}

// RenderConfig controls image output.
type RenderConfig struct {
	Width    int    `toml:"width" validate:"gte=0"` // 0 = fit to diagram
	Height   int    `toml:"height" validate:"gte=0"`
	Padding  int    `toml:"padding" validate:"gte=0"`
	FontSize int    `toml:"font_size" validate:"gt=0"`
	Format   string `toml:"format" validate:"oneof=png svg"`
	Handles  bool   `toml:"handles"`
}

// EditorConfig controls the terminal editor. A terminal cell covers
// CellWidth x CellHeight units of diagram space.
type EditorConfig struct {
	CellWidth     float64 `toml:"cell_width" validate:"gt=0"`
	CellHeight    float64 `toml:"cell_height" validate:"gt=0"`
	DoubleClickMS int     `toml:"double_click_ms" validate:"gt=0"`
	ShowAnchors   bool    `toml:"show_anchors"`
}

// LogConfig controls zap output.
type LogConfig struct {
	Mode  string `toml:"mode" validate:"oneof=off development production"`
	Level string `toml:"level" validate:"oneof=debug info warn error"`
	File  string `toml:"file"` // empty = stderr
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Geometry:    GeometryConfig{AnchorCount: diagram.DefaultAnchorCount},
		Snap:        SnapConfig{Threshold: diagram.DefaultSnapThreshold, Buffer: diagram.DefaultSnapBuffer},
		Interaction: InteractionConfig{LongPressMS: int(interact.DefaultLongPress / time.Millisecond)},
		Render:      RenderConfig{Padding: 40, FontSize: 14, Format: "png", Handles: true},
		Editor:      EditorConfig{CellWidth: 10, CellHeight: 20, DoubleClickMS: 400},
		Log:         LogConfig{Mode: "off", Level: "info"},
	}
}

// Dir returns the anchorboard config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "anchorboard")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldMessage(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	field = strings.TrimPrefix(field, "config.")
	switch e.Tag() {
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

// DiagramGeometry returns the anchor geometry.
func (c *Config) DiagramGeometry() diagram.Geometry {
	return diagram.Geometry{AnchorCount: c.Geometry.AnchorCount}
}

// Locator returns the anchor locator.
func (c *Config) Locator() diagram.Locator {
	return diagram.Locator{
		Geometry:  c.DiagramGeometry(),
		Threshold: c.Snap.Threshold,
		Buffer:    c.Snap.Buffer,
	}
}

// MachineOptions returns interaction options; the caller supplies the
// scheduler, logger and hooks.
func (c *Config) MachineOptions() interact.Options {
	opts := interact.DefaultOptions()
	opts.Locator = c.Locator()
	opts.LongPress = time.Duration(c.Interaction.LongPressMS) * time.Millisecond
	opts.ContainerOrigin = diagram.Point{X: c.Interaction.OriginX, Y: c.Interaction.OriginY}
	return opts
}

// RenderOptions returns image output options.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		Width:    c.Render.Width,
		Height:   c.Render.Height,
		Padding:  c.Render.Padding,
		FontSize: c.Render.FontSize,
		Handles:  c.Render.Handles,
	}
}
