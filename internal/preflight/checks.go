package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"filmtrack/internal/blobstore"
	"filmtrack/internal/config"
	"filmtrack/internal/tmdb"
)

const tmdbCheckTimeout = 10 * time.Second

// CheckCredentials verifies that an API key or access token is configured.
func CheckCredentials(cfg *config.Config) Result {
	const name = "TMDB credentials"
	switch {
	case cfg.TMDB.AccessToken != "":
		return Result{Name: name, Passed: true, Detail: "access token configured"}
	case cfg.TMDB.APIKey != "":
		return Result{Name: name, Passed: true, Detail: "api key configured"}
	default:
		return Result{Name: name, Detail: "missing (set tmdb.api_key or TMDB_API_KEY)"}
	}
}

// CheckTMDB verifies that TMDB answers an authenticated request. It fetches
// the movie genre list, the smallest authenticated endpoint, once with no
// retries.
func CheckTMDB(ctx context.Context, client tmdb.API) Result {
	const name = "TMDB API"

	checkCtx, cancel := context.WithTimeout(ctx, tmdbCheckTimeout)
	defer cancel()

	list, err := client.Genres(checkCtx, tmdb.KindMovie)
	if err != nil {
		return Result{Name: name, Detail: summarizeTMDBError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Reachable (%d movie genres)", len(list.Genres))}
}

// CheckCacheStore verifies the configured persistent tier is usable.
func CheckCacheStore(ctx context.Context, cfg *config.Config) Result {
	const name = "Cache store"
	if !cfg.Cache.Enabled {
		return Result{Name: name, Passed: true, Detail: "disabled (responses kept in memory)"}
	}
	switch cfg.Cache.Backend {
	case "memory":
		return Result{Name: name, Passed: true, Detail: "memory (not persisted)"}
	case "file":
		return withName(name, CheckDirectoryAccess("file", nearestDir(cfg.Cache.Path)))
	case "sqlite":
		return withName(name, CheckDirectoryAccess("sqlite", nearestDir(filepath.Dir(cfg.Cache.Path))))
	case "redis":
		store, err := blobstore.DialRedis(ctx, blobstore.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, "")
		if err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("redis %s (error: %v)", cfg.Redis.Addr, err)}
		}
		_ = store.Close()
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("redis %s (reachable)", cfg.Redis.Addr)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unsupported backend %q", cfg.Cache.Backend)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// nearestDir walks up from path to the first directory that exists. The
// stores create missing directories on open, so the closest existing
// ancestor is what must be writable.
func nearestDir(path string) string {
	for dir := path; ; {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

func withName(name string, r Result) Result {
	r.Detail = r.Name + " " + r.Detail
	r.Name = name
	return r
}

// summarizeTMDBError produces a human-readable summary for TMDB check failures.
func summarizeTMDBError(err error) string {
	var httpErr *tmdb.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "auth failed (invalid api key or token)"
		case http.StatusTooManyRequests:
			return "rate limited (retry later)"
		default:
			return fmt.Sprintf("check failed (%d)", httpErr.StatusCode)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (TMDB unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (TMDB unreachable)"
	}
	return err.Error()
}
