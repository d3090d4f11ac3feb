// Package advisor talks to the external advisory service. It never
// mutates the ledger; it turns a bounded slice of recent transactions
// into free-text spending advice, degrading to a fixed fallback string
// on any failure.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"dirhamflow/internal/core"
)

// MaxRecentTransactions caps the advisory payload size.
const MaxRecentTransactions = 50

// FallbackAdvice is returned whenever the advisory service cannot be
// reached or produces an unusable response.
const FallbackAdvice = "Sorry, I couldn't connect to the financial brain right now. Please try again later."

// Advisor produces advice text from a transaction snapshot.
type Advisor interface {
	Advise(ctx context.Context, txns []core.Transaction) (string, error)
}

// txSummary is the simplified per-transaction shape sent to the service.
type txSummary struct {
	Date     string `json:"date"`
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Desc     string `json:"desc"`
}

// summarize bounds the collection to the most recent entries and strips
// each one down to the advisory payload shape.
func summarize(txns []core.Transaction) []txSummary {
	if len(txns) > MaxRecentTransactions {
		txns = txns[:MaxRecentTransactions]
	}
	out := make([]txSummary, 0, len(txns))
	for _, t := range txns {
		out = append(out, txSummary{
			Date:     t.Date.Format("2006-01-02"),
			Type:     string(t.Type),
			Amount:   strconv.FormatFloat(t.Amount, 'f', -1, 64) + " AED",
			Category: t.Category,
			Desc:     t.Description,
		})
	}
	return out
}

// buildPrompt renders the advisory request for a UAE resident's recent
// transaction history.
func buildPrompt(txns []core.Transaction) (string, error) {
	data, err := json.Marshal(summarize(txns))
	if err != nil {
		return "", fmt.Errorf("encode transaction summary: %w", err)
	}

	prompt := `You are a savvy financial advisor specifically for a resident living in the UAE (United Arab Emirates).

Here is a list of the user's recent transactions in AED (Dirhams):
` + string(data) + `

Please provide a brief, actionable analysis (max 150 words).
1. Highlight where the most money is going.
2. Suggest one specific way to save money in the UAE context (e.g., using specific apps like Entertainer, leveraging Metro vs Taxi, grocery tips).
3. Keep the tone encouraging but professional.

If there is no data, just give a generic tip for saving money in Dubai/Abu Dhabi.`

	return prompt, nil
}
