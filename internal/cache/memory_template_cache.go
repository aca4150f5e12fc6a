package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	model "task-lifecycle.com/task-lifecycle/internal/models"
)

// MemoryTemplateCache keeps serialized templates in process. Entries are
// stored as JSON so callers never share a mutable template.
type MemoryTemplateCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryTemplateCache(ttl time.Duration) *MemoryTemplateCache {
	return &MemoryTemplateCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryTemplateCache) Get(_ context.Context, ref string) (*model.Template, bool) {
	m.mu.Lock()
	e, ok := m.entries[ref]
	if ok && m.now().After(e.expiresAt) {
		delete(m.entries, ref)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, false
	}

	var t model.Template
	if err := json.Unmarshal(e.data, &t); err != nil {
		return nil, false
	}
	return &t, true
}

func (m *MemoryTemplateCache) Set(_ context.Context, t *model.Template) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	m.entries[t.ID] = e
	if t.Key != "" {
		m.entries[t.Key] = e
	}
	return nil
}

func (m *MemoryTemplateCache) Invalidate(_ context.Context, t *model.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, t.ID)
	if t.Key != "" {
		delete(m.entries, t.Key)
	}
	return nil
}

// Len counts live and expired entries not yet evicted.
func (m *MemoryTemplateCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
