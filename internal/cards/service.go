package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cardgate/cardgate/internal/upstream"
)

// Service validates caller input and delegates to the banking provider. It
// holds no state of its own; card and transaction payloads stay opaque.
type Service struct {
	banking BankingAPI
}

// NewService builds a card service over the given provider connector.
func NewService(banking BankingAPI) *Service {
	return &Service{banking: banking}
}

// ListCards returns every card known to the provider account.
func (s *Service) ListCards(ctx context.Context) (json.RawMessage, error) {
	return s.banking.ListCards(ctx)
}

// ListTransactions returns transactions for one card, optionally bounded by a
// day range. Date format checking happens in the provider client, before any
// network call.
func (s *Service) ListTransactions(ctx context.Context, cardID, startDate, endDate string) (json.RawMessage, error) {
	if err := validateCardID(cardID); err != nil {
		return nil, err
	}
	return s.banking.ListTransactions(ctx, cardID, startDate, endDate)
}

// GetBalance returns the balance payload for one card.
func (s *Service) GetBalance(ctx context.Context, cardID string) (json.RawMessage, error) {
	if err := validateCardID(cardID); err != nil {
		return nil, err
	}
	return s.banking.GetBalance(ctx, cardID)
}

func validateCardID(cardID string) error {
	if strings.TrimSpace(cardID) == "" {
		return fmt.Errorf("%w: card_id must not be empty", upstream.ErrInvalidArgument)
	}
	return nil
}
