package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
)

type vatRequest struct {
	VATNumber   string `json:"vat_number"`
	CountryHint string `json:"country_hint"`
}

// ValidateVAT handles POST /api/v1/vat/validate. Validation never fails as
// a request: an invalid number is a 200 with valid=false and a reason.
func (h *Handler) ValidateVAT(w http.ResponseWriter, r *http.Request) {
	var req vatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body")
		return
	}

	res := h.validator.Validate(r.Context(), req.VATNumber, req.CountryHint)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Field("valid", func(e *jx.Encoder) { e.Bool(res.Valid) })
		if res.CountryCode != "" {
			e.Field("country_code", func(e *jx.Encoder) { e.Str(res.CountryCode) })
		}
		if res.Normalized != "" {
			e.Field("normalized", func(e *jx.Encoder) { e.Str(res.Normalized) })
		}
		e.Field("confirmation", func(e *jx.Encoder) { e.Str(string(res.Confirmation)) })
		e.Field("registry_hint", func(e *jx.Encoder) { e.Bool(res.RegistryHint) })
		if res.Reason != "" {
			e.Field("reason", func(e *jx.Encoder) { e.Str(res.Reason) })
		}
		if res.CompanyName != "" {
			e.Field("company_name", func(e *jx.Encoder) { e.Str(res.CompanyName) })
		}
		if res.CompanyAddress != "" {
			e.Field("company_address", func(e *jx.Encoder) { e.Str(res.CompanyAddress) })
		}
	})
}
