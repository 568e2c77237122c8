package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 256, cfg.Canvas.Width)
	assert.Equal(t, 4, cfg.Canvas.ExportScale)
	assert.Equal(t, ":8888", cfg.Server.Addr)
	assert.Len(t, cfg.Tools.Stickers, 3)
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()
	assert.True(t, strings.HasSuffix(path, filepath.Join("splonchpad", "config.toml")), path)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Canvas, cfg.Canvas)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[canvas]
width = 512
height = 384
export_scale = 2
background = "#fafafa"

[tools]
thick = 12
colors = ["#000", "#ff0000"]
stickers = ["🦆"]

[server]
addr = "127.0.0.1:9000"
mdns = false

[logging]
level = "debug"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Canvas.Width)
	assert.Equal(t, 384, cfg.Canvas.Height)
	assert.Equal(t, 2, cfg.Canvas.ExportScale)
	assert.Equal(t, 32.0, cfg.Canvas.StickerSize, "unset keys keep defaults")
	assert.Equal(t, 3.0, cfg.Tools.Thin)
	assert.Equal(t, 12.0, cfg.Tools.Thick)
	assert.False(t, cfg.Server.MDNS)
	assert.Equal(t, "json", cfg.Logging.Format)

	p := cfg.Palette()
	assert.Equal(t, []color.NRGBA{{A: 255}, {R: 255, A: 255}}, p.Colors)
	assert.Equal(t, []string{"🦆"}, p.Stickers)
	assert.Equal(t, color.NRGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 255}, cfg.Canvas.BackgroundColor())
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"size":   "[canvas]\nwidth = 0\n",
		"scale":  "[canvas]\nexport_scale = 0\n",
		"colour": "[tools]\ncolors = [\"#12\"]\n",
		"format": "[logging]\nformat = \"xml\"\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
			_, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[canvas\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode TOML")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPLONCHPAD_ADDR", ":7000")
	t.Setenv("SPLONCHPAD_MDNS", "false")
	t.Setenv("SPLONCHPAD_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.False(t, cfg.Server.MDNS)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#2a9d8f")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x2a, G: 0x9d, B: 0x8f, A: 255}, c)
	assert.Equal(t, "#2a9d8f", FormatColor(c))

	c, err = ParseColor("fff")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, c)

	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}
