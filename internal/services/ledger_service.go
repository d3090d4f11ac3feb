// Package services orchestrates ledger mutations with the optional
// mutation-event publisher.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dirhamflow/internal/amqp"
	"dirhamflow/internal/core"
	"dirhamflow/internal/ledger"
)

// Summary bundles every derived metric the dashboard shows, recomputed
// from a single ledger snapshot.
type Summary struct {
	Balance      float64               `json:"balance"`
	TotalIncome  float64               `json:"total_income"`
	TotalExpense float64               `json:"total_expense"`
	SpentToday   float64               `json:"spent_today"`
	ByCategory   []core.CategoryAmount `json:"by_category"`
	Count        int                   `json:"transaction_count"`
}

// LedgerService mutates the ledger and announces mutations. The event
// publish is best-effort: the ledger write already succeeded, so a
// broker failure is logged and swallowed.
type LedgerService struct {
	store      *ledger.Store
	amqpClient *amqp.Client
	now        func() time.Time
}

func NewLedgerService(store *ledger.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      store,
		amqpClient: amqpClient,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// AddTransaction records a transaction and publishes a created event.
func (s *LedgerService) AddTransaction(ctx context.Context, amount float64, typ core.TransactionType, category, description string) (core.Transaction, error) {
	tx, err := s.store.Add(ctx, amount, typ, category, description)
	if err != nil {
		return core.Transaction{}, err
	}

	if s.amqpClient == nil {
		return tx, nil
	}
	if err := s.amqpClient.PublishTransactionCreated(ctx, amqp.NewTransactionCreatedMessage(tx)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish created event",
			"id", tx.ID, "error", err)
		// Transaction is persisted; don't fail the request.
	}
	return tx, nil
}

// DeleteTransaction removes a transaction (idempotent) and publishes a
// deleted event.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if s.amqpClient == nil {
		return nil
	}
	if err := s.amqpClient.PublishTransactionDeleted(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish deleted event",
			"id", id, "error", err)
	}
	return nil
}

// ListTransactions returns the current snapshot, newest first.
func (s *LedgerService) ListTransactions() []core.Transaction {
	return s.store.List()
}

// Summarize recomputes every aggregate from the current snapshot.
func (s *LedgerService) Summarize() Summary {
	txns := s.store.List()
	return Summary{
		Balance:      core.Balance(txns),
		TotalIncome:  core.TotalIncome(txns),
		TotalExpense: core.TotalExpense(txns),
		SpentToday:   core.SpentToday(txns, s.now()),
		ByCategory:   core.CategoryBreakdown(txns),
		Count:        len(txns),
	}
}

// Close releases the AMQP connection if one is configured.
func (s *LedgerService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp client: %w", err)
		}
	}
	return nil
}
