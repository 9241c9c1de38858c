// Package log configures the process wide zerolog logger.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds the logging options exposed on the command line.
type Logger struct {
	Level  string
	Format string
	Output io.Writer
}

// Setup installs the global logger. Unknown levels fall back to info.
func (l Logger) Setup() error {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := l.Output
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(l.Format) {
	case "", "console", "text":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	case "json":
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return err
}
