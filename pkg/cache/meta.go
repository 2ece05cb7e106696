package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// refMeta is the JSON document persisted as {hash(key)}.ref. It maps a
// source key (usually a URL) to the content address of the fetched bytes.
type refMeta struct {
	Key     string `json:"key"`
	Hash    string `json:"hash"`
	Created int64  `json:"created"` // UnixNano
	TTLNS   int64  `json:"ttl_ns"`  // 0 = no TTL
}

func (m refMeta) expired(now time.Time) bool {
	if m.TTLNS <= 0 {
		return false
	}
	return now.Sub(time.Unix(0, m.Created)) > time.Duration(m.TTLNS)
}

// readJSON decodes the JSON document at path into a value of type T.
func readJSON[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("cache: decode %s: %w", path, err)
	}
	return v, nil
}

// writeJSON atomically replaces path with the JSON encoding of v.
func writeJSON[T any](path, tmpDir string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", path, err)
	}
	return atomicWrite(path, data, tmpDir)
}
