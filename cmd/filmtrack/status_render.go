package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"filmtrack/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// statusWriter prints aligned "label: [KIND] detail" lines, colorized when
// the destination is a terminal.
type statusWriter struct {
	out      io.Writer
	colorize bool
}

func newStatusWriter(out io.Writer) statusWriter {
	return statusWriter{out: out, colorize: shouldColorize(out)}
}

func (w statusWriter) section(title string) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	fmt.Fprintln(w.out, w.paint(ansiBlue, line))
	fmt.Fprintln(w.out, w.paint(ansiBlue, strings.Repeat("-", len(line))))
}

func (w statusWriter) line(label string, kind statusKind, detail string) {
	fmt.Fprintln(w.out, w.format(label, kind, detail))
}

// check prints one preflight result; failures render as errors.
func (w statusWriter) check(r preflight.Result) {
	kind := statusOK
	if !r.Passed {
		kind = statusError
	}
	w.line(r.Name, kind, r.Detail)
}

func (w statusWriter) format(label string, kind statusKind, detail string) string {
	style := statusStyles[kind]
	status := "[" + style.label + "]"
	if detail != "" {
		status += " " + detail
	}
	return w.paint(style.color, fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status))
}

func (w statusWriter) paint(color, text string) string {
	if !w.colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
