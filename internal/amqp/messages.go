package amqp

import (
	"encoding/json"
	"time"

	"dirhamflow/internal/core"
)

// TransactionCreatedMessage announces a new ledger entry to downstream
// consumers. It carries the display fields so consumers don't need read
// access to the ledger database.
type TransactionCreatedMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

// TransactionDeletedMessage announces a ledger deletion.
type TransactionDeletedMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(t core.Transaction) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:        t.ID,
		Type:      string(t.Type),
		Amount:    t.Amount,
		Category:  t.Category,
		Timestamp: time.Now(),
	}
}

func NewTransactionDeletedMessage(id string) *TransactionDeletedMessage {
	return &TransactionDeletedMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *TransactionDeletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func TransactionDeletedMessageFromJSON(data []byte) (*TransactionDeletedMessage, error) {
	var msg TransactionDeletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
