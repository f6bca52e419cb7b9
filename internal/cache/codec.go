package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// entry is one cached payload. Payload is compact JSON.
type entry struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"stored_at"`
}

// encodeJSON marshals v without HTML escaping so that stored payloads read
// back byte for byte.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func encodeBucket(entries map[string]entry) ([]byte, error) {
	if entries == nil {
		entries = map[string]entry{}
	}
	return encodeJSON(entries)
}

// decodeBucket parses a persisted bucket. Entries without a usable payload or
// timestamp are dropped and counted.
func decodeBucket(data []byte) (map[string]entry, int, error) {
	var raw map[string]entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode bucket: %w", err)
	}
	entries := make(map[string]entry, len(raw))
	var dropped int
	for key, e := range raw {
		if key == "" || e.StoredAt.IsZero() || len(e.Payload) == 0 || !json.Valid(e.Payload) {
			dropped++
			continue
		}
		entries[key] = e
	}
	return entries, dropped, nil
}

// encodedSize approximates the bytes key and e add to an encoded bucket.
func encodedSize(key string, e entry) int {
	k, err := encodeJSON(key)
	if err != nil {
		return len(key) + len(e.Payload)
	}
	v, err := encodeJSON(e)
	if err != nil {
		return len(k) + len(e.Payload)
	}
	// colon and separating comma
	return len(k) + len(v) + 2
}

func compactPayload(payload []byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}
