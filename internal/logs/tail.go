package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	pollInterval   = 250 * time.Millisecond
	maxLineSize    = 1024 * 1024
	initialBufSize = 64 * 1024
)

// TailOptions controls a Tail call. A negative Offset reads the last Limit
// matching lines; otherwise reading starts at Offset. Follow with a positive
// Wait blocks up to Wait for new lines when none are available.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
	Filter Filter
}

// TailResult holds the matching lines and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads path according to opts. A missing file yields no lines and a
// zero offset so the caller can keep polling until the logger creates it.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	if opts.Offset < 0 {
		lines, offset, err := readLastLines(path, opts.Limit, opts.Filter)
		if err != nil {
			return result, err
		}
		result.Lines, result.Offset = lines, offset
		if opts.Follow && opts.Wait > 0 && len(lines) == 0 {
			return waitForLines(ctx, path, offset, opts.Wait, opts.Filter)
		}
		return result, nil
	}

	offset := opts.Offset
	if offset > info.Size() {
		// Truncated or rotated underneath us; resume at the end.
		offset = info.Size()
	}
	lines, newOffset, err := readForward(path, offset, opts.Filter)
	if err != nil {
		return result, err
	}
	result.Lines, result.Offset = lines, newOffset
	if opts.Follow && opts.Wait > 0 && len(lines) == 0 {
		return waitForLines(ctx, path, newOffset, opts.Wait, opts.Filter)
	}
	return result, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialBufSize), maxLineSize)
	return scanner
}

// openAt opens path positioned at offset, or at the end when offset is
// negative. A missing file yields a nil file and no error.
func openAt(path string, offset int64) (*os.File, int64, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	whence := io.SeekStart
	if offset < 0 {
		offset, whence = 0, io.SeekEnd
	}
	pos, err := file.Seek(offset, whence)
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}
	return file, pos, nil
}

// readLastLines keeps the last limit matching lines in a ring buffer.
func readLastLines(path string, limit int, filter Filter) ([]string, int64, error) {
	if limit <= 0 {
		file, end, err := openAt(path, -1)
		if file != nil {
			file.Close()
		}
		return nil, end, err
	}
	file, _, err := openAt(path, 0)
	if file == nil || err != nil {
		return nil, 0, err
	}
	defer file.Close()

	ring := make([]string, limit)
	count, next := 0, 0
	scanner := newScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !filter.Match(line) {
			continue
		}
		ring[next] = line
		next = (next + 1) % limit
		count = min(count+1, limit)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}

	lines := make([]string, count)
	start := 0
	if count == limit {
		start = next
	}
	for i := range count {
		lines[i] = ring[(start+i)%limit]
	}
	return lines, offset, nil
}

// readForward returns the matching complete lines after offset. A trailing
// partial line is left for the next call.
func readForward(path string, offset int64, filter Filter) ([]string, int64, error) {
	file, offset, err := openAt(path, offset)
	if file == nil || err != nil {
		return nil, offset, err
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, initialBufSize)
	var lines []string
	for {
		raw, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(raw))
		line := trimNewline(raw)
		if filter.Match(line) {
			lines = append(lines, line)
		}
	}
	return lines, offset, nil
}

func trimNewline(s string) string {
	s = s[:len(s)-1]
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}

func waitForLines(ctx context.Context, path string, offset int64, wait time.Duration, filter Filter) (TailResult, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		lines, newOffset, err := readForward(path, result.Offset, filter)
		if err != nil {
			return result, err
		}
		result.Offset = newOffset
		if len(lines) > 0 {
			result.Lines = lines
			return result, nil
		}
		if time.Now().After(deadline) {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}
