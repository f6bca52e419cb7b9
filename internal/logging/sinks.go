package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filmtrack/internal/config"
)

// openSinks resolves output paths into a single writer. "stdout" and
// "stderr" name the process streams; anything else is a file opened for
// append. Paths are compared after expansion so "~/x.log" and its absolute
// form share one handle. No usable path means stderr.
func openSinks(paths []string) (io.Writer, error) {
	var (
		writers []io.Writer
		files   []*os.File
		seen    = make(map[string]bool, len(paths))
	)
	fail := func(err error) (io.Writer, error) {
		for _, f := range files {
			_ = f.Close()
		}
		return nil, err
	}

	for _, raw := range paths {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		switch name {
		case "stdout", "stderr":
		default:
			expanded, err := config.ExpandPath(name)
			if err != nil {
				return fail(err)
			}
			name = expanded
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			file, err := openLogFile(name)
			if err != nil {
				return fail(err)
			}
			files = append(files, file)
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("log output %s is a directory", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat log output %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
