package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"filmtrack/internal/preflight"
)

func TestStatusLineNoColor(t *testing.T) {
	w := statusWriter{out: io.Discard}
	got := w.format("TMDB API", statusError, "auth failed")
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "TMDB API:", "[ERROR] auth failed")
	if got != want {
		t.Fatalf("format mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestStatusLineWithColor(t *testing.T) {
	w := statusWriter{out: io.Discard, colorize: true}
	got := w.format("Cache store", statusOK, "ok")
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestStatusWriterChecks(t *testing.T) {
	var buf bytes.Buffer
	w := newStatusWriter(&buf)
	w.section("Readiness")
	w.check(preflight.Result{Name: "TMDB credentials", Passed: true, Detail: "api key configured"})
	w.check(preflight.Result{Name: "TMDB API", Detail: "auth failed"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), buf.String())
	}
	requireContains(t, lines[0], "== Readiness ==")
	requireContains(t, lines[2], "[OK] api key configured")
	requireContains(t, lines[3], "[ERROR] auth failed")
}

func TestDoctorPasses(t *testing.T) {
	env := setupCLITestEnv(t)
	env.tmdb.JSON("/genre/movie/list", `{"genres":[{"id":28,"name":"Action"}]}`)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "== Readiness ==")
	requireContains(t, out, "[OK] Reachable (1 movie genres)")
}

func TestDoctorReportsMissingCredentials(t *testing.T) {
	env := setupCLITestEnv(t)
	writeTestConfig(t, env.configPath, "", env.tmdb.URL(), env.cacheDir, filepath.Join(env.baseDir, "filmtrack.log"))

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if !errors.Is(err, errChecksFailed) {
		t.Fatalf("expected failed checks, got %v", err)
	}
	requireContains(t, out, "missing (set tmdb.api_key")
	if strings.Contains(out, "TMDB API:") {
		t.Fatalf("TMDB check should be skipped without credentials: %s", out)
	}
}

func TestDoctorJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.tmdb.JSON("/genre/movie/list", `{"genres":[]}`)

	out, _, err := runCLI(t, []string{"doctor", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor --json: %v", err)
	}
	requireContains(t, out, `"name": "TMDB API"`)
	requireContains(t, out, `"passed": true`)
}
