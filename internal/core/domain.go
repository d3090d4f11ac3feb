package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

type (
	TransactionType string

	// Transaction is a single recorded monetary event in AED. ID and Date
	// are assigned by the ledger at creation and never change afterwards.
	Transaction struct {
		ID          string          `json:"id"`
		Amount      float64         `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
)

// SuggestedCategories is the category list offered by clients when
// recording a transaction. It is a suggestion only: the ledger accepts
// and persists any non-empty category string.
var SuggestedCategories = []string{
	"Food & Dining",
	"Transport",
	"Housing & DEWA",
	"Groceries",
	"Entertainment",
	"Shopping",
	"Salary",
	"Other",
}

func (t TransactionType) Validate() error {
	switch t {
	case Expense, Income:
		return nil
	default:
		return ErrInvalidType
	}
}

func (t Transaction) Validate() error {
	if t.Amount < 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
