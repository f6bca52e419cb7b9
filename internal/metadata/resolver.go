package metadata

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"filmtrack/internal/cache"
	"filmtrack/internal/logging"
	"filmtrack/internal/requestqueue"
	"filmtrack/internal/search"
	"filmtrack/internal/services"
	"filmtrack/internal/tmdb"
)

const (
	defaultImageLimit    = 5
	defaultImageLanguage = "zh,en,null"
	defaultLanguage      = "default"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.NewComponentLogger(logger, "metadata")
	}
}

// WithThresholds overrides the accept and fallback scores. Values outside
// 0 <= Fallback <= Accept <= 1 leave the defaults in place.
func WithThresholds(t search.Thresholds) Option {
	return func(r *Resolver) {
		if t.Fallback >= 0 && t.Fallback <= t.Accept && t.Accept <= 1 {
			r.thresholds = t
		}
	}
}

// WithMaxStrategies caps how many queries one resolution may try.
func WithMaxStrategies(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxStrategies = n
		}
	}
}

// WithImageLimit caps how many ranked backdrops FetchImages returns.
func WithImageLimit(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.imageLimit = n
		}
	}
}

// WithImageLanguage sets the include_image_language filter for backdrops.
func WithImageLanguage(lang string) Option {
	return func(r *Resolver) {
		if lang = strings.TrimSpace(lang); lang != "" {
			r.imageLanguage = lang
		}
	}
}

// WithLanguage sets the language segment of genre cache keys. It defaults to
// the client's response language when the client reports one.
func WithLanguage(lang string) Option {
	return func(r *Resolver) {
		if lang = strings.TrimSpace(lang); lang != "" {
			r.language = lang
		}
	}
}

// Resolver is the metadata composition root.
type Resolver struct {
	client tmdb.API
	cache  *cache.Cache
	queue  *requestqueue.Queue
	logger *slog.Logger

	thresholds    search.Thresholds
	maxStrategies int
	imageLimit    int
	imageLanguage string
	language      string

	group singleflight.Group
}

// New builds a Resolver. A nil cache or queue gets an in-memory cache or a
// queue without spacing.
func New(client tmdb.API, c *cache.Cache, q *requestqueue.Queue, opts ...Option) *Resolver {
	if c == nil {
		c = cache.New(nil)
	}
	if q == nil {
		q = requestqueue.New(0)
	}
	r := &Resolver{
		client:        client,
		cache:         c,
		queue:         q,
		logger:        logging.NewComponentLogger(nil, "metadata"),
		thresholds:    search.Default(),
		maxStrategies: search.DefaultMaxStrategies,
		imageLimit:    defaultImageLimit,
		imageLanguage: defaultImageLanguage,
		language:      defaultLanguage,
	}
	if lc, ok := client.(interface{ Language() string }); ok && lc.Language() != "" {
		r.language = lc.Language()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache exposes the underlying cache for maintenance commands.
func (r *Resolver) Cache() *cache.Cache { return r.cache }

// Queue exposes the underlying request queue.
func (r *Resolver) Queue() *requestqueue.Queue { return r.queue }

// Thresholds returns the acceptance policy in use.
func (r *Resolver) Thresholds() search.Thresholds { return r.thresholds }

// withCorrelation tags ctx with operation and a request id when the caller
// did not supply one.
func withCorrelation(ctx context.Context, operation string) context.Context {
	return services.EnsureRequestID(services.WithOperation(ctx, operation), uuid.NewString)
}

// fetch returns the cached value under key or runs call through the queue
// and caches its result. Concurrent misses on one key share a single call.
// The boolean reports a cache hit.
func fetch[T any](ctx context.Context, r *Resolver, key string, call func(context.Context) (*T, error)) (*T, bool, error) {
	var cached T
	if r.cache.GetJSON(ctx, key, &cached) {
		return &cached, true, nil
	}

	shared := context.WithoutCancel(ctx)
	results := r.group.DoChan(key, func() (any, error) {
		value, err := requestqueue.Do(shared, r.queue, call)
		if err != nil {
			return nil, err
		}
		if err := r.cache.SetJSON(shared, key, value); err != nil {
			r.logger.Debug("response not cached", logging.String("key", key), logging.Error(err))
		}
		return value, nil
	})

	select {
	case res := <-results:
		if res.Err != nil {
			return nil, false, res.Err
		}
		value, ok := res.Val.(*T)
		if !ok || value == nil {
			return nil, false, services.Wrap(services.ErrTransport, "metadata", "fetch", "empty response for "+key, nil)
		}
		out := *value
		return &out, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}
