package history

import (
	"context"
	"sort"
	"sync"

	"igreport/pkg/stats"
)

// MemoryStore keeps snapshots for the lifetime of the process
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]stats.ProfileStats
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]stats.ProfileStats)}
}

func (m *MemoryStore) Save(ctx context.Context, p *stats.ProfileStats) error {
	if p == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[p.Username] = append(m.snapshots[p.Username], *p)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, username string, limit int) ([]stats.ProfileStats, error) {
	m.mu.RLock()
	out := append([]stats.ProfileStats(nil), m.snapshots[username]...)
	m.mu.RUnlock()

	// Insertion order breaks ties so equal timestamps stay newest-saved first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScannedAt.After(out[j].ScannedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Latest(ctx context.Context, username string) (*stats.ProfileStats, bool, error) {
	list, err := m.List(ctx, username, 1)
	if err != nil || len(list) == 0 {
		return nil, false, err
	}
	return &list[0], true, nil
}

func (m *MemoryStore) Close() error { return nil }
