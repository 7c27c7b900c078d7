package cards

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cardgate/cardgate/internal/apierr"
	"github.com/cardgate/cardgate/internal/upstream"
)

// Handler exposes the three read endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a card handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListCards handles GET /cards.
func (h *Handler) ListCards(c *fiber.Ctx) error {
	payload, err := h.service.ListCards(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(Envelope{Data: payload})
}

// ListTransactions handles GET /cards/:cardId/transactions.
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	payload, err := h.service.ListTransactions(
		c.UserContext(),
		c.Params("cardId"),
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(Envelope{Data: payload})
}

// GetBalance handles GET /cards/:cardId/balance.
func (h *Handler) GetBalance(c *fiber.Ctx) error {
	payload, err := h.service.GetBalance(c.UserContext(), c.Params("cardId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(Envelope{Data: payload})
}

// respondError maps provider errors onto the gateway's error contract.
// Unrecognized failures become an opaque 500.
func respondError(c *fiber.Ctx, err error) error {
	var statusErr *upstream.StatusError

	switch {
	case errors.Is(err, upstream.ErrInvalidArgument):
		return apierr.Write(c, http.StatusBadRequest, apierr.CodeInvalidArgument, err.Error())
	case errors.Is(err, upstream.ErrNotFound):
		return apierr.Write(c, http.StatusNotFound, apierr.CodeCardNotFound, "card not found")
	case errors.Is(err, upstream.ErrAuth):
		return apierr.Write(c, http.StatusBadGateway, apierr.CodeUpstreamAuthFailed, "banking provider rejected gateway credentials")
	case errors.Is(err, upstream.ErrUnavailable):
		return apierr.Write(c, http.StatusServiceUnavailable, apierr.CodeUpstreamUnavailable, "banking provider is unreachable")
	case errors.As(err, &statusErr):
		return apierr.Write(c, http.StatusBadGateway, apierr.CodeUpstreamError, statusErr.Error())
	default:
		return apierr.Write(c, http.StatusInternalServerError, apierr.CodeInternalError, "internal server error")
	}
}
