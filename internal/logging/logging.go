// Package logging configures log/slog for the sketchpad and routes the gg
// rasterizer's diagnostics through the same handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gg"

	"Splonchpad/internal/config"
)

// ParseLevel maps a config level name to a slog level. Unknown names give info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// level is shared by the loggers Setup installs so a config reload can
// change verbosity without rebuilding handlers.
var level slog.LevelVar

// New builds a logger writing to w.
func New(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	return newLogger(w, cfg.Format, ParseLevel(cfg.Level))
}

func newLogger(w io.Writer, format string, lvl slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Setup installs a stderr logger as the slog default and hands it to gg.
func Setup(cfg config.LoggingConfig) *slog.Logger {
	level.Set(ParseLevel(cfg.Level))
	l := newLogger(os.Stderr, cfg.Format, &level)
	slog.SetDefault(l)
	gg.SetLogger(l.With("component", "gg"))
	return l
}

// SetLevel changes the level of loggers built by Setup.
func SetLevel(name string) {
	level.Set(ParseLevel(name))
}

// Component returns the default logger tagged with a component name.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
