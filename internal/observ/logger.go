package observ

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogLevels lists the values accepted by NewLogger, most quiet first.
var LogLevels = []string{"disabled", "error", "warn", "info", "debug"}

// ParseLevel maps a --log-level value to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "disabled", "off", "none":
		return zerolog.Disabled, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	}
	return zerolog.Disabled, fmt.Errorf("unknown log level %q (want one of %s)", level, strings.Join(LogLevels, ", "))
}

// NewLogger builds the CLI logger: a console writer on w filtered at level.
// A disabled level yields zerolog.Nop so no formatting work is done.
func NewLogger(level string, w io.Writer, noColor bool) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if lvl == zerolog.Disabled {
		return zerolog.Nop(), nil
	}
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger(), nil
}
