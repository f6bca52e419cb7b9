package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"filmtrack/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
	// Writer overrides OutputPaths when set.
	Writer io.Writer
}

// New constructs a slog logger using the provided options. An empty level
// means info and an empty format means console.
func New(opts Options) (*slog.Logger, error) {
	level := slog.LevelInfo
	if strings.TrimSpace(opts.Level) != "" {
		parsed, err := ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		var err error
		if writer, err = openSinks(opts.OutputPaths); err != nil {
			return nil, err
		}
	}

	addSource := opts.Development || level <= slog.LevelDebug
	switch resolveFormat(opts.Format, writer) {
	case "json":
		return slog.New(newJSONHandler(writer, levelVar, addSource)), nil
	case "console":
		return slog.New(newPrettyHandler(writer, levelVar, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates a logger from the [logging] section.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.OutputPaths,
	})
}

// ParseLevel accepts debug, info, warn (or warning) and error in any case.
func ParseLevel(value string) (slog.Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "warning" {
		normalized = "warn"
	}
	var level slog.Level
	switch normalized {
	case "debug", "info", "warn", "error":
		if err := level.UnmarshalText([]byte(normalized)); err != nil {
			return 0, err
		}
		return level, nil
	default:
		return 0, fmt.Errorf("log level: unsupported value %q", value)
	}
}

// resolveFormat maps "auto" to console on terminals and json elsewhere.
func resolveFormat(format string, w io.Writer) string {
	switch normalized := strings.ToLower(strings.TrimSpace(format)); normalized {
	case "":
		return "console"
	case "auto":
		if isTerminal(w) {
			return "console"
		}
		return "json"
	default:
		return normalized
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
