package logbook

import (
	"context"
	"sync"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
)

// Store persists turn records in append order.
type Store interface {
	Append(ctx context.Context, rec turnlog.Record) error
	List(ctx context.Context) ([]turnlog.Record, error)
	Clear(ctx context.Context) error
}

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records []turnlog.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make([]turnlog.Record, 0, 64)}
}

func (m *MemoryStore) Append(_ context.Context, rec turnlog.Record) error {
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]turnlog.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	copied := make([]turnlog.Record, len(m.records))
	copy(copied, m.records)
	return copied, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.records = m.records[:0]
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) replace(records []turnlog.Record) {
	m.mu.Lock()
	m.records = append(m.records[:0], records...)
	m.mu.Unlock()
}
