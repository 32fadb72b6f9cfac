package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/roadready/permitprep-backend/internal/model"
)

// memoryEntry pairs a stored value with its expiry deadline.
type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// memoryMap is a mutex-guarded map with lazy expiry, shared by the
// in-memory store implementations. Values are kept JSON-encoded so reads
// hand back independent copies, matching the Redis-backed semantics.
type memoryMap struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func newMemoryMap(ttl time.Duration) *memoryMap {
	return &memoryMap{entries: make(map[string]memoryEntry), ttl: ttl}
}

func (m *memoryMap) get(id string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, id)
		return ErrNotFound
	}
	return json.Unmarshal(e.raw, v)
}

func (m *memoryMap) put(id string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{raw: raw, expiresAt: time.Now().Add(m.ttl)}
	return nil
}

func (m *memoryMap) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}

// MemorySessionStore is a process-local SessionStore for tests and
// single-process development runs.
type MemorySessionStore struct {
	m *memoryMap
}

// NewMemorySessionStore creates an in-memory session store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{m: newMemoryMap(ttl)}
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*SessionState, error) {
	var state SessionState
	if err := s.m.get(id, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *MemorySessionStore) Put(_ context.Context, id string, state *SessionState) error {
	return s.m.put(id, state)
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.m.delete(id)
	return nil
}

// MemoryPoolStore is a process-local PoolStore for tests and single-process
// development runs.
type MemoryPoolStore struct {
	m *memoryMap
}

// NewMemoryPoolStore creates an in-memory pool store.
func NewMemoryPoolStore(ttl time.Duration) *MemoryPoolStore {
	return &MemoryPoolStore{m: newMemoryMap(ttl)}
}

func (s *MemoryPoolStore) Get(_ context.Context, id string) ([]model.Question, error) {
	var questions []model.Question
	if err := s.m.get(id, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *MemoryPoolStore) Put(_ context.Context, id string, questions []model.Question) error {
	return s.m.put(id, questions)
}

func (s *MemoryPoolStore) Delete(_ context.Context, id string) error {
	s.m.delete(id)
	return nil
}
