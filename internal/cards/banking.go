package cards

import (
	"context"
	"encoding/json"
)

// BankingAPI is the slice of the provider the card endpoints need. The
// production implementation lives in internal/upstream; tests substitute
// fakes.
type BankingAPI interface {
	ListCards(ctx context.Context) (json.RawMessage, error)
	ListTransactions(ctx context.Context, cardID, startDate, endDate string) (json.RawMessage, error)
	GetBalance(ctx context.Context, cardID string) (json.RawMessage, error)
}
