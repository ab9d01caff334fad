package state

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrVersionConflict = errors.New("state version conflict")
	ErrNotFound        = errors.New("record not found")
)

// Entry is the raw persisted form of one key. A key that was never written
// loads as the zero Entry (version 0, no payload).
type Entry struct {
	Payload []byte
	Version int64
}

// Storage persists one serialized value per key with compare-and-swap
// semantics: Save succeeds only when version matches the stored version and
// returns the new one.
type Storage interface {
	Load(ctx context.Context, key string) (Entry, error)
	Save(ctx context.Context, key string, payload []byte, version int64) (int64, error)
}

type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]Entry)}
}

func (m *MemoryStorage) Load(_ context.Context, key string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entries[key]
	return Entry{Payload: append([]byte(nil), e.Payload...), Version: e.Version}, nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, payload []byte, version int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.entries[key]
	if cur.Version != version {
		return 0, ErrVersionConflict
	}

	next := Entry{Payload: append([]byte(nil), payload...), Version: cur.Version + 1}
	m.entries[key] = next
	return next.Version, nil
}
