package logs_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"filmtrack/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filmtrack.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "b" || result.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset != 6 {
		t.Fatalf("offset = %d, want 6", result.Offset)
	}
}

func TestTailFromOffsetLeavesPartialLine(t *testing.T) {
	path := writeLog(t, "a\nb\npartial")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 2})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(result.Lines) != 1 || result.Lines[0] != "b" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset != 4 {
		t.Fatalf("offset = %d, want 4", result.Offset)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "none.log"), logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestTailFiltersStructuredLines(t *testing.T) {
	path := writeLog(t, `{"level":"info","msg":"tmdb decision","component":"metadata","decision_type":"tmdb_match"}
{"level":"warn","msg":"trim","component":"cache","event_type":"cache_quota"}
not json
{"level":"warn","msg":"failed","component":"metadata","event_type":"strategy_failed"}
`)

	cases := []struct {
		name   string
		filter logs.Filter
		want   int
	}{
		{"empty", logs.Filter{}, 4},
		{"component", logs.Filter{Component: "metadata"}, 2},
		{"event", logs.Filter{EventType: "CACHE_QUOTA"}, 1},
		{"decision", logs.Filter{DecisionType: "tmdb_match"}, 1},
		{"level", logs.Filter{MinLevel: slog.LevelWarn, HasLevel: true}, 2},
		{"combined", logs.Filter{Component: "cache", EventType: "strategy_failed"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 10, Filter: tc.filter})
			if err != nil {
				t.Fatalf("tail: %v", err)
			}
			if len(result.Lines) != tc.want {
				t.Fatalf("got %d lines, want %d: %#v", len(result.Lines), tc.want, result.Lines)
			}
		})
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := writeLog(t, "start\n")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("expected initial line, got %#v", result.Lines)
	}

	done := make(chan struct{})
	go func(offset int64) {
		defer close(done)
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
		}
		if len(res.Lines) != 1 || res.Lines[0] != "later" {
			t.Errorf("unexpected follow lines: %#v", res.Lines)
		}
	}(result.Offset)

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("tail follow did not return")
	}
}
