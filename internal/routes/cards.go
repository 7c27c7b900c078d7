package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cardgate/cardgate/internal/cards"
)

// RegisterCardRoutes wires the three read endpoints.
func RegisterCardRoutes(r fiber.Router, h *cards.Handler) {
	r.Get("/cards", h.ListCards)
	r.Get("/cards/:cardId/transactions", h.ListTransactions)
	r.Get("/cards/:cardId/balance", h.GetBalance)
}
