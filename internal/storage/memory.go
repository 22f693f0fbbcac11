package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Backend for tests and ephemeral runs.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte

	// FailSave, when set, makes every Save return that error. Tests
	// use it to exercise the no-partial-state guarantees.
	FailSave error
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, collection string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[collection]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(doc))
	copy(cp, doc)
	return cp, nil
}

func (m *Memory) Save(_ context.Context, collection string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave != nil {
		return m.FailSave
	}
	cp := make([]byte, len(doc))
	copy(cp, doc)
	m.docs[collection] = cp
	return nil
}

func (m *Memory) Delete(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, collection)
	return nil
}
