// Package config loads the sketchpad's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full configuration. Zero sections are filled from DefaultConfig.
type Config struct {
	Canvas  CanvasConfig  `toml:"canvas"`
	Tools   ToolsConfig   `toml:"tools"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
}

type CanvasConfig struct {
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	ExportScale int     `toml:"export_scale"`
	Background  string  `toml:"background"`
	StickerSize float64 `toml:"sticker_size"`
	// FontPath points at a TTF/OTF used for sticker glyphs. Empty uses the
	// bundled Go font.
	FontPath string `toml:"font_path"`
}

type ToolsConfig struct {
	Thin     float64  `toml:"thin"`
	Thick    float64  `toml:"thick"`
	Colors   []string `toml:"colors"`
	Stickers []string `toml:"stickers"`
}

type ServerConfig struct {
	Addr         string `toml:"addr"`
	MDNS         bool   `toml:"mdns"`
	InstanceName string `toml:"instance_name"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:       256,
			Height:      256,
			ExportScale: 4,
			Background:  "#ffffff",
			StickerSize: 32,
		},
		Tools: ToolsConfig{
			Thin:     3,
			Thick:    8,
			Colors:   []string{"#000000", "#e63946", "#2a9d8f", "#2646ad", "#f4a261"},
			Stickers: []string{"🎉", "⭐", "🐸"},
		},
		Server: ServerConfig{
			Addr: ":8888",
			MDNS: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ConfigPath is the default location, $XDG_CONFIG_HOME/splonchpad/config.toml.
func ConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "splonchpad", "config.toml")
}

// Load reads path (or ConfigPath when empty). A missing file yields the
// defaults. Environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies SPLONCHPAD_* variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SPLONCHPAD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SPLONCHPAD_MDNS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Server.MDNS = b
		}
	}
	if v := os.Getenv("SPLONCHPAD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SPLONCHPAD_FONT"); v != "" {
		c.Canvas.FontPath = v
	}
}

// Validate reports the first problem found.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("%w: canvas size %dx%d", ErrInvalidConfig, c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.ExportScale < 1 {
		return fmt.Errorf("%w: export_scale must be >= 1, got %d", ErrInvalidConfig, c.Canvas.ExportScale)
	}
	if c.Canvas.StickerSize <= 0 {
		return fmt.Errorf("%w: sticker_size must be positive", ErrInvalidConfig)
	}
	if _, err := ParseColor(c.Canvas.Background); err != nil {
		return fmt.Errorf("%w: background: %v", ErrInvalidConfig, err)
	}
	if c.Tools.Thin <= 0 || c.Tools.Thick <= 0 {
		return fmt.Errorf("%w: marker widths must be positive", ErrInvalidConfig)
	}
	for _, s := range c.Tools.Colors {
		if _, err := ParseColor(s); err != nil {
			return fmt.Errorf("%w: tools.colors: %v", ErrInvalidConfig, err)
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// ParseColor accepts #rgb and #rrggbb. The result is always opaque.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("bad colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// FormatColor is the inverse of ParseColor.
func FormatColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
