package cache

import (
	"context"
	"sync"
	"time"

	"igreport/pkg/stats"
)

type entry struct {
	value     stats.ProfileStats
	expiresAt time.Time
}

// Memory is a process-local cache
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached scan
func (m *Memory) Get(ctx context.Context, key string) (*stats.ProfileStats, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}

	return clone(&e.value), true, nil
}

// Set stores a copy of value. A ttl of zero keeps it until deleted.
func (m *Memory) Set(ctx context.Context, key string, value *stats.ProfileStats, ttl time.Duration) error {
	if value == nil {
		return nil
	}

	e := entry{value: *clone(value)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Delete removes key
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Close() error { return nil }

// clone deep-copies p so callers never share slices or maps with the cache
func clone(p *stats.ProfileStats) *stats.ProfileStats {
	c := *p
	c.LikesHistory = append([]int(nil), p.LikesHistory...)
	c.TopHashtags = append([]stats.HashtagCount(nil), p.TopHashtags...)
	if p.WeekdayHistogram != nil {
		c.WeekdayHistogram = make(map[string]int, len(p.WeekdayHistogram))
		for k, v := range p.WeekdayHistogram {
			c.WeekdayHistogram[k] = v
		}
	}
	return &c
}
