package throttle

import (
	"context"
	"sync"
	"time"
)

// MemoryStore 进程内节流状态，互斥锁保护的时间戳表
//
// 无持久化，进程重启即清零；仅保证单进程部署的正确性。
// 过期条目在下次 Get 时惰性删除，不起后台清理协程。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryStore 创建内存节流存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := m.entries[key]
	if !ok {
		return time.Time{}, false, nil
	}
	if time.Now().After(next) {
		delete(m.entries, key)
		return time.Time{}, false, nil
	}
	return next, true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, next time.Time, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = next
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len 当前条目数（含未清理的过期条目），测试用
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
