package main

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestCacheKeysAndCleanup(t *testing.T) {
	env := setupCLITestEnv(t)
	env.tmdb.JSON("/search/multi?三体", threeBodySearch)

	if _, _, err := runCLI(t, []string{"resolve", "三体"}, env.configPath); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	out, _, err := runCLI(t, []string{"cache", "keys", "search-multi"}, env.configPath)
	if err != nil {
		t.Fatalf("cache keys: %v", err)
	}
	requireContains(t, out, "search_multi_三体_1")

	out, _, err = runCLI(t, []string{"cache", "cleanup", "--bucket", "search-multi"}, env.configPath)
	if err != nil {
		t.Fatalf("cache cleanup: %v", err)
	}
	requireContains(t, out, "Cleared bucket search-multi")

	out, _, err = runCLI(t, []string{"cache", "keys", "search-multi"}, env.configPath)
	if err != nil {
		t.Fatalf("cache keys: %v", err)
	}
	requireContains(t, out, "Bucket search-multi is empty")
}

func TestCacheCleanupRequiresBucket(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"cache", "cleanup"}, env.configPath); err == nil {
		t.Fatal("expected missing --bucket error")
	}
	if _, _, err := runCLI(t, []string{"cache", "cleanup", "--bucket", "nope"}, env.configPath); err == nil {
		t.Fatal("expected unknown bucket error")
	}
}

func TestCacheStatsJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.tmdb.JSON("/search/multi?三体", threeBodySearch)
	if _, _, err := runCLI(t, []string{"resolve", "三体"}, env.configPath); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	out, _, err := runCLI(t, []string{"cache", "stats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	var view cacheStatsView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, out)
	}
	if view.Backend != "file" {
		t.Fatalf("backend = %q", view.Backend)
	}
	var found bool
	for _, b := range view.Buckets {
		if b.Bucket == "search-multi" {
			found = true
			if b.Items != 1 {
				t.Fatalf("search-multi items = %d, want 1", b.Items)
			}
		}
	}
	if !found {
		t.Fatalf("search-multi bucket missing from %+v", view.Buckets)
	}
}

func TestCacheClearAndSweepWithoutCredentials(t *testing.T) {
	env := setupCLITestEnv(t)
	writeTestConfig(t, env.configPath, "", env.tmdb.URL(), env.cacheDir, filepath.Join(env.baseDir, "filmtrack.log"))

	out, _, err := runCLI(t, []string{"cache", "sweep"}, env.configPath)
	if err != nil {
		t.Fatalf("cache sweep: %v", err)
	}
	requireContains(t, out, "Removed 0 expired entries")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared all cache buckets")
}
