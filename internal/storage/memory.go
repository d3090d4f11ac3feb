package storage

import (
	"context"
	"sync"

	"dirhamflow/internal/core"
)

// MemoryPersister keeps the snapshot in process memory. It backs the
// "memory" data backend and tests; state is lost on restart.
type MemoryPersister struct {
	mu   sync.Mutex
	snap []core.Transaction
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load(_ context.Context) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, len(m.snap))
	copy(out, m.snap)
	return out, nil
}

func (m *MemoryPersister) Save(_ context.Context, txns []core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = make([]core.Transaction, len(txns))
	copy(m.snap, txns)
	return nil
}
