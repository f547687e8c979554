package store

import (
	"context"
	"sync"
)

const (
	// WatchlistKey names the record holding watchlist entries.
	WatchlistKey = "filmfolio_watchlist"
	// CollectionsKey names the record holding collections.
	CollectionsKey = "filmfolio_collections"
)

// Substrate is the durable key-value backend the Store persists records into.
// Load reports found=false for keys that were never written.
type Substrate interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}

// MemorySubstrate keeps records in process memory.
type MemorySubstrate struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemorySubstrate returns an empty in-memory substrate.
func NewMemorySubstrate() *MemorySubstrate {
	return &MemorySubstrate{records: make(map[string][]byte)}
}

func (m *MemorySubstrate) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.records[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemorySubstrate) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = append([]byte(nil), value...)
	return nil
}
