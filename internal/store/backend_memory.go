package store

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"
	"sync"
)

// MemoryBackend is an in-process, map-based Backend. It is used for tests
// and single-process runs where no Parquet file or object store is wanted.
// Values are round-tripped through JSON encode/decode to exercise the same
// marshal/unmarshal boundary a real backend has, without needing a real
// columnar encoder.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Save implements Backend.
func (m *MemoryBackend) Save(_ context.Context, key string, rows any) error {
	encoded, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = encoded

	return nil
}

// Load implements Backend.
func (m *MemoryBackend) Load(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	encoded, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(encoded, dest); err != nil {
		return false, err
	}

	return true, nil
}

// Exists implements Backend.
func (m *MemoryBackend) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]

	return ok, nil
}

// List implements Backend. It returns every key under prefix whose base
// name matches glob, sorted for deterministic test output.
func (m *MemoryBackend) List(_ context.Context, prefix, glob string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string

	for key := range m.data {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		matched, err := path.Match(glob, path.Base(key))
		if err != nil {
			return nil, err
		}

		if matched {
			out = append(out, key)
		}
	}

	sort.Strings(out)

	return out, nil
}
