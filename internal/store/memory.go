package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process RecordStore used by tests and by local
// development when no Supabase project is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[Collection][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[Collection][]Record)}
}

func (m *MemoryStore) FetchAll(_ context.Context, c Collection) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.tables[c]
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, copyRecord(r))
	}
	return out, nil
}

func (m *MemoryStore) FetchWhere(_ context.Context, c Collection, field, value string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for _, r := range m.tables[c] {
		if v, ok := r[field]; ok && fmt.Sprint(v) == value {
			out = append(out, copyRecord(r))
		}
	}
	return out, nil
}

func (m *MemoryStore) Insert(_ context.Context, c Collection, rec Record) error {
	id, _ := rec["id"].(string)
	if id == "" {
		return fmt.Errorf("failed to insert into %s: missing id", c)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.tables[c] {
		if r["id"] == id {
			return fmt.Errorf("failed to insert into %s: duplicate id %q", c, id)
		}
	}
	m.tables[c] = append(m.tables[c], copyRecord(rec))
	return nil
}

// Update merges columns into the matching row. Like PostgREST, updating a
// missing id is not an error.
func (m *MemoryStore) Update(_ context.Context, c Collection, id string, patch Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.tables[c] {
		if r["id"] == id {
			for k, v := range patch {
				r[k] = v
			}
		}
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, c Collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[c]
	kept := rows[:0]
	for _, r := range rows {
		if r["id"] != id {
			kept = append(kept, r)
		}
	}
	m.tables[c] = kept
	return nil
}

func copyRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// MemoryBlobStore keeps uploaded content in memory and hands out
// deterministic URLs under baseURL.
type MemoryBlobStore struct {
	mu      sync.Mutex
	baseURL string
	blobs   map[string][]byte
}

func NewMemoryBlobStore(baseURL string) *MemoryBlobStore {
	return &MemoryBlobStore{baseURL: baseURL, blobs: make(map[string][]byte)}
}

func (b *MemoryBlobStore) UploadBlob(_ context.Context, path string, content []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[path] = append([]byte(nil), content...)
	return b.baseURL + "/" + path, nil
}

func (b *MemoryBlobStore) Get(path string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[path]
	return data, ok
}

// Paths lists stored paths with the given prefix in sorted order.
func (b *MemoryBlobStore) Paths(prefix string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for path := range b.blobs {
		if strings.HasPrefix(path, prefix) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}
