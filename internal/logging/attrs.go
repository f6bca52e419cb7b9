package logging

import (
	"fmt"
	"log/slog"
	"time"
)

type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Strings(key string, values []string) Attr { return slog.Any(key, values) }

// Bucket tags a line with the cache partition it concerns.
func Bucket(bucket fmt.Stringer) Attr { return slog.String(FieldBucket, bucket.String()) }

// Error records err under "error". A nil error yields an empty attr, which
// handlers drop.
func Error(err error) Attr {
	if err == nil {
		return Attr{}
	}
	return slog.Any("error", err)
}

func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

type warnDefaults struct {
	hint   string
	impact string
}

// knownWarnings supplies the operator hint and impact for recurring warning
// events so call sites only add what is specific to them.
var knownWarnings = map[string]warnDefaults{
	"strategy_failed": {
		hint:   "check network access and TMDB status; rerun with --log-level debug",
		impact: "resolution continued with the remaining strategies",
	},
	"cache_corruption": {
		hint:   "the record is rewritten on the next write; run 'filmtrack cache cleanup' to reset now",
		impact: "affected cache entries were discarded and will be refetched",
	},
	"cache_load_failed": {
		hint:   "check the cache backend (filmtrack doctor)",
		impact: "bucket served empty until the store is readable",
	},
	"cache_quota": {
		hint:   "raise cache.quota_bytes or run 'filmtrack cache optimize'",
		impact: "older cache entries were dropped",
	},
	"cache_persist_failed": {
		hint:   "check the cache backend (filmtrack doctor)",
		impact: "entries live in memory only for this run",
	},
}

var fallbackWarning = warnDefaults{
	hint:   "check logs for details",
	impact: "operation completed with warnings",
}

func hasAttr(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// WarnWithContext logs a warning carrying event_type, error_hint and impact.
// Missing fields are filled from the defaults registered for eventType.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	defaults, ok := knownWarnings[eventType]
	if !ok {
		defaults = fallbackWarning
	}
	if !hasAttr(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !hasAttr(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, defaults.hint))
	}
	if !hasAttr(attrs, FieldImpact) {
		attrs = append(attrs, String(FieldImpact, defaults.impact))
	}
	logger.Warn(msg, Args(attrs...)...)
}

// DecisionAttrs builds consistent attributes for decision logging.
func DecisionAttrs(decisionType, result, reason string) []Attr {
	return []Attr{
		String(FieldDecisionType, decisionType),
		String("decision_result", result),
		String("decision_reason", reason),
	}
}
