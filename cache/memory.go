package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ContentCache is the read cache used by public content routes
type ContentCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value any) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// memoryStore is a TTL map shared by the in-process implementations
type memoryStore struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]entry), now: time.Now}
}

func (m *memoryStore) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	if !ok {
		return nil, false
	}
	if e.expired(m.now()) {
		delete(m.data, key)
		return nil, false
	}
	return e.value, true
}

func (m *memoryStore) set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = m.entryFor(value, ttl)
}

func (m *memoryStore) setNX(key string, value []byte, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.data[key]; ok && !e.expired(m.now()) {
		return false
	}
	m.data[key] = m.entryFor(value, ttl)
	return true
}

func (m *memoryStore) entryFor(value []byte, ttl time.Duration) entry {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}

// delIf deletes key only while it still holds value
func (m *memoryStore) delIf(key string, value []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	if !ok || e.expired(m.now()) || string(e.value) != string(value) {
		return false
	}
	delete(m.data, key)
	return true
}

func (m *memoryStore) delPrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
}

// MemoryLocker is used when Redis is disabled. Locks only hold within this process.
type MemoryLocker struct{ store *memoryStore }

func NewMemoryLocker() *MemoryLocker { return &MemoryLocker{store: newMemoryStore()} }

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	if !l.store.setNX(key, []byte(token), ttl) {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees key if token still owns it
func (l *MemoryLocker) Release(_ context.Context, key, token string) error {
	l.store.delIf(key, []byte(token))
	return nil
}

type MemoryIdempotencyStore struct{ store *memoryStore }

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{store: newMemoryStore()}
}

func (s *MemoryIdempotencyStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.store.get(key)
	return v, ok, nil
}

func (s *MemoryIdempotencyStore) Save(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.store.set(key, value, ttl)
	return nil
}

type MemoryContentCache struct {
	store *memoryStore
	ttl   time.Duration
}

func NewMemoryContentCache(ttl time.Duration) *MemoryContentCache {
	return &MemoryContentCache{store: newMemoryStore(), ttl: ttl}
}

func (c *MemoryContentCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.store.get(key)
	return v, ok, nil
}

func (c *MemoryContentCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store.set(key, data, c.ttl)
	return nil
}

func (c *MemoryContentCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.store.delPrefix(prefix)
	return nil
}
