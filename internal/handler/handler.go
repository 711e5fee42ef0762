// Package handler exposes the settlement engine over HTTP.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/nordmark-trading/settlement/internal/domain/settlement"
	"github.com/nordmark-trading/settlement/internal/domain/vat"
)

// Handler routes settlement, VAT validation and credit operations to the
// settlement service and VAT validator.
type Handler struct {
	settlements *settlement.Service
	validator   *vat.Validator
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(settlements *settlement.Service, validator *vat.Validator) *Handler {
	return &Handler{
		settlements: settlements,
		validator:   validator,
	}
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/quotes", h.Quote)
		r.Post("/vat/validate", h.ValidateVAT)
		r.Post("/credit/commit", h.CommitCredit)
		r.Post("/credit/release", h.ReleaseCredit)
	})
	return r
}
