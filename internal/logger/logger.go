package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/dvcrn/steepshot-go/internal/env"
)

var (
	once   sync.Once
	logger *zerolog.Logger
)

// Get returns the process logger, initializing it on first call.
func Get() *zerolog.Logger {
	once.Do(func() {
		logger = newLogger(os.Stderr)
	})
	return logger
}

// Component returns a child of the process logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Nop returns a disabled logger, used when callers opt out of logging.
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// newLogger picks console or JSON output from ENV and the level from LOG_LEVEL.
func newLogger(out *os.File) *zerolog.Logger {
	level := zerolog.InfoLevel
	if raw, ok := env.Get("LOG_LEVEL"); ok {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid LOG_LEVEL %q; defaulting to 'info'\n", raw)
		} else {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	switch env.GetOrDefault("ENV", "development") {
	case "development", "dev":
		return newConsole(out, !isatty.IsTerminal(out.Fd()))
	default:
		return newJSON(out)
	}
}

func newConsole(out io.Writer, noColor bool) *zerolog.Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: "2006-01-02 15:04:05",
	}).With().Timestamp().Logger()
	return &zl
}

func newJSON(out io.Writer) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zl := zerolog.New(out).With().Timestamp().Logger()
	return &zl
}
