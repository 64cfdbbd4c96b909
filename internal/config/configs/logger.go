package configs

import (
	"log/slog"
	"strings"
)

// Logger configures the slog logger every component writes through.
// Level is the minimum level emitted ("debug", "info", "warn",
// "error"); Format selects the handler, "text" for local runs and
// "json" for log collectors.
type Logger struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// SlogLevel maps the textual level onto a slog.Level. Unknown values
// mean info.
func (c Logger) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SlogFormat normalises the requested format. Anything but "json"
// means "text".
func (c Logger) SlogFormat() string {
	if strings.ToLower(c.Format) == "json" {
		return "json"
	}
	return "text"
}
