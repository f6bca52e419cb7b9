package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filmtrack/internal/testsupport"
)

type cliTestEnv struct {
	tmdb       *testsupport.TMDBServer
	configPath string
	cacheDir   string
	baseDir    string
}

// setupCLITestEnv writes a config pointing at a stub TMDB server with a
// file-backed cache under the test's temp dir.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("TMDB_ACCESS_TOKEN", "")

	env := &cliTestEnv{
		tmdb:       testsupport.NewTMDBServer(t),
		configPath: filepath.Join(base, "config.toml"),
		cacheDir:   filepath.Join(base, "cache"),
		baseDir:    base,
	}
	writeTestConfig(t, env.configPath, "test-key", env.tmdb.URL(), env.cacheDir, filepath.Join(base, "filmtrack.log"))
	return env
}

func writeTestConfig(t *testing.T, path, apiKey, baseURL, cacheDir, logPath string) {
	t.Helper()
	content := fmt.Sprintf(`[tmdb]
api_key = %q
base_url = %q

[queue]
request_interval_ms = 0

[cache]
backend = "file"
path = %q

[logging]
format = "json"
level = "debug"
output_paths = [%q]
`, apiKey, baseURL, cacheDir, logPath)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

const threeBodySearch = `{"page":1,"total_pages":1,"total_results":1,"results":[
	{"id":108545,"name":"三体","original_name":"三体","media_type":"tv","first_air_date":"2023-01-15","vote_average":7.9,"popularity":40}
]}`
