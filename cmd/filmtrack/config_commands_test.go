package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", target}, ""); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "test-key") {
		t.Fatalf("api key leaked in output: %s", out)
	}
	requireContains(t, out, "[cache]")
	requireContains(t, out, env.tmdb.URL())
}

func TestValidateWarnsWithoutCredentials(t *testing.T) {
	env := setupCLITestEnv(t)
	writeTestConfig(t, env.configPath, "", env.tmdb.URL(), env.cacheDir, filepath.Join(env.baseDir, "filmtrack.log"))

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Warning: tmdb.api_key")
	requireContains(t, out, "Configuration valid")
}

func TestConfigInitStdout(t *testing.T) {
	out, _, err := runCLI(t, []string{"config", "init", "--stdout"}, "")
	if err != nil {
		t.Fatalf("config init --stdout: %v", err)
	}
	requireContains(t, out, "[tmdb]")
	requireContains(t, out, "[cache]")
}

func TestConfigValidateSummarizesCache(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Cache:       file ("+env.cacheDir+")")
	requireContains(t, out, "accept > 0.80, fallback > 0.30")
}
