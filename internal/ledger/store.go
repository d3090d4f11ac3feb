// Package ledger owns the canonical ordered transaction collection. All
// mutation goes through the Store; readers get snapshot copies.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dirhamflow/internal/core"
)

// Persister loads the ledger's initial state and durably stores full
// snapshots after every mutation.
type Persister interface {
	Load(ctx context.Context) ([]core.Transaction, error)
	Save(ctx context.Context, txns []core.Transaction) error
}

// Store is the single writer of ledger state. Mutations are serialized
// and each one persists the full resulting collection before returning,
// so the persisted snapshot always reflects the latest completed
// mutation.
type Store struct {
	mu        sync.Mutex
	txns      []core.Transaction // newest first
	persister Persister
	now       func() time.Time
}

// New creates a store backed by the given persister and seeds it from
// the persisted snapshot.
func New(ctx context.Context, p Persister) (*Store, error) {
	txns, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger state: %w", err)
	}
	return &Store{
		txns:      txns,
		persister: p,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Add validates the input, creates the transaction with a fresh id and
// the current timestamp, prepends it and persists the new snapshot.
func (s *Store) Add(ctx context.Context, amount float64, typ core.TransactionType, category, description string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := core.Transaction{
		ID:          uuid.NewString(),
		Amount:      amount,
		Type:        typ,
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
		Date:        s.now(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	next := make([]core.Transaction, 0, len(s.txns)+1)
	next = append(next, tx)
	next = append(next, s.txns...)

	if err := s.persister.Save(ctx, next); err != nil {
		return core.Transaction{}, fmt.Errorf("persist ledger: %w", err)
	}
	s.txns = next

	slog.InfoContext(ctx, "Transaction recorded",
		"id", tx.ID,
		"type", tx.Type,
		"amount", tx.Amount,
		"category", tx.Category)
	return tx, nil
}

// Delete removes the transaction with the given id. Deleting an absent
// id is a no-op, not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.txns {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		slog.DebugContext(ctx, "Delete of unknown transaction ignored", "id", id)
		return nil
	}

	next := make([]core.Transaction, 0, len(s.txns)-1)
	next = append(next, s.txns[:idx]...)
	next = append(next, s.txns[idx+1:]...)

	if err := s.persister.Save(ctx, next); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	s.txns = next

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// List returns a snapshot copy of the collection, newest first.
func (s *Store) List() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

// Len returns the current number of transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txns)
}
