package logs

import (
	"encoding/json"
	"log/slog"
	"strings"

	"filmtrack/internal/logging"
)

// Filter selects structured log lines. Zero fields match anything.
type Filter struct {
	Component    string
	EventType    string
	DecisionType string
	// MinLevel drops lines below this level when HasLevel is set.
	MinLevel slog.Level
	HasLevel bool
}

// Empty reports whether the filter accepts every line.
func (f Filter) Empty() bool {
	return f.Component == "" && f.EventType == "" && f.DecisionType == "" && !f.HasLevel
}

// Match reports whether line passes the filter. Lines that are not JSON
// objects only pass an empty filter.
func (f Filter) Match(line string) bool {
	if f.Empty() {
		return true
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return false
	}
	if !fieldEquals(fields, logging.FieldComponent, f.Component) ||
		!fieldEquals(fields, logging.FieldEventType, f.EventType) ||
		!fieldEquals(fields, logging.FieldDecisionType, f.DecisionType) {
		return false
	}
	if f.HasLevel {
		raw, _ := fields[slog.LevelKey].(string)
		var level slog.Level
		if err := level.UnmarshalText([]byte(raw)); err != nil || level < f.MinLevel {
			return false
		}
	}
	return true
}

func fieldEquals(fields map[string]any, key, want string) bool {
	if want == "" {
		return true
	}
	got, _ := fields[key].(string)
	return strings.EqualFold(got, want)
}
