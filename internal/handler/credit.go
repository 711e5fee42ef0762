package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

type creditRequest struct {
	CustomerID  string `json:"customer_id"`
	AmountMinor int64  `json:"amount_minor"`
}

// CommitCredit handles POST /api/v1/credit/commit. The reservation is
// atomic: of two concurrent commits that jointly exceed the limit, exactly
// one succeeds.
func (h *Handler) CommitCredit(w http.ResponseWriter, r *http.Request) {
	h.creditOp(w, r, "committed", h.settlements.CommitCredit)
}

// ReleaseCredit handles POST /api/v1/credit/release.
func (h *Handler) ReleaseCredit(w http.ResponseWriter, r *http.Request) {
	h.creditOp(w, r, "released", h.settlements.ReleaseCredit)
}

func (h *Handler) creditOp(
	w http.ResponseWriter,
	r *http.Request,
	status string,
	op func(ctx context.Context, customerID string, amount decimal.Decimal) error,
) {
	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body")
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "", "customer_id required")
		return
	}

	amount := decimal.New(req.AmountMinor, -2)
	if err := op(r.Context(), req.CustomerID, amount); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str(status) })
		e.Field("customer_id", func(e *jx.Encoder) { e.Str(req.CustomerID) })
		encodeMoney(e, "amount", amount)
	})
}
