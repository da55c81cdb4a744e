package progress

import (
	"context"
	"sync"
	"time"

	"video-translate-service/ddd/domain/entity"
)

// MemoryStore 进程内状态存储，未启用 Redis 时使用; 终态记录在 ttl 后清理
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

type memoryItem struct {
	progress  entity.JobProgress
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, p *entity.JobProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.evictLocked(now)
	item := memoryItem{progress: *p}
	if m.ttl > 0 {
		item.expiresAt = now.Add(m.ttl)
	}
	m.items[p.JobID] = item
	return nil
}

func (m *MemoryStore) Get(_ context.Context, jobID string) (*entity.JobProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[jobID]
	if !ok || m.expired(item, m.now()) {
		return nil, nil
	}
	p := item.progress
	return &p, nil
}

func (m *MemoryStore) expired(item memoryItem, now time.Time) bool {
	return !item.expiresAt.IsZero() && now.After(item.expiresAt)
}

func (m *MemoryStore) evictLocked(now time.Time) {
	for id, item := range m.items {
		if m.expired(item, now) {
			delete(m.items, id)
		}
	}
}
