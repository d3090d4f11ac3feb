// Package storage persists the ledger snapshot in durable local storage.
// The whole transaction collection lives as one JSON-encoded value under
// a fixed key; every save is a full replace of that value.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dirhamflow/internal/core"

	_ "modernc.org/sqlite"
)

// StateKey is the fixed key holding the serialized transaction array.
const StateKey = "dirhamflow_transactions"

type SQLiteRepository struct {
	db  *sql.DB
	key string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, key: StateKey}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements ledger.Persister. A missing row yields an empty
// collection. A row that fails to parse is treated as corruption: it is
// logged and an empty collection is returned, never an error.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Transaction, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM ledger_state WHERE key = ?`, r.key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []core.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger state: %w", err)
	}

	var txns []core.Transaction
	if err := json.Unmarshal([]byte(raw), &txns); err != nil {
		slog.WarnContext(ctx, "Stored ledger state is corrupted, starting empty",
			"key", r.key,
			"error", err)
		return []core.Transaction{}, nil
	}
	if txns == nil {
		txns = []core.Transaction{}
	}

	slog.InfoContext(ctx, "Ledger state loaded", "key", r.key, "count", len(txns))
	return txns, nil
}

// Save implements ledger.Persister with a full-replace upsert of the
// serialized collection.
func (r *SQLiteRepository) Save(ctx context.Context, txns []core.Transaction) error {
	raw, err := json.Marshal(txns)
	if err != nil {
		return fmt.Errorf("encode ledger state: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO ledger_state (key, value, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		r.key, string(raw))
	if err != nil {
		return fmt.Errorf("write ledger state: %w", err)
	}

	slog.DebugContext(ctx, "Ledger state saved", "key", r.key, "count", len(txns))
	return nil
}
