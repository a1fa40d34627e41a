// Package logging builds the slog.Logger used by the certext command.
package logging

import (
	"io"
	"log/slog"
)

// DefaultLevel is used when no level is configured: warnings and errors only.
const DefaultLevel = 4

// Config controls diagnostic output. The level meanings follow syslog:
//
//	-1: suppress all output
//	0: default, which is 6
//	3: log errors
//	4: log warnings and above
//	6: log info and above
//	7: log debug and above
//
// Levels 1, 2 and 5 are accepted and round down to the nearest meaningful
// level.
type Config struct {
	Level int `yaml:"level"`
	// TextFormat selects slog's TextHandler instead of the default
	// JSONHandler.
	TextFormat bool `yaml:"textFormat"`
}

func configToSlogLevel(l int) slog.Level {
	switch l {
	case 1, 2, 3:
		return slog.LevelError
	case 4, 5:
		return slog.LevelWarn
	case 6:
		return slog.LevelInfo
	case 7:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to w as configured.
func New(conf Config, w io.Writer) *slog.Logger {
	if conf.Level < 0 {
		return slog.New(slog.DiscardHandler)
	}

	opts := &slog.HandlerOptions{Level: configToSlogLevel(conf.Level)}
	if conf.TextFormat {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
