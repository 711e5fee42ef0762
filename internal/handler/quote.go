package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/nordmark-trading/settlement/internal/domain/pricing"
	"github.com/nordmark-trading/settlement/internal/domain/settlement"
)

type quoteRequest struct {
	CustomerID         string `json:"customer_id"`
	DestinationCountry string `json:"destination_country"`
	Items              []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

// Quote handles POST /api/v1/quotes.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body")
		return
	}

	items := make([]settlement.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = settlement.LineItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	result, err := h.settlements.Quote(r.Context(), req.CustomerID, items, req.DestinationCountry)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Field("currency", func(e *jx.Encoder) { e.Str(result.Currency) })

		e.Field("lines", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, line := range result.Lines {
					encodeLine(e, line)
				}
			})
		})

		e.Field("tax", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				encodeMoney(e, "net", result.Tax.Net)
				encodeMoney(e, "tax", result.Tax.Tax)
				encodeMoney(e, "gross", result.Tax.Gross)
				e.Field("weighted_rate", func(e *jx.Encoder) { e.Str(result.Tax.WeightedRate.String()) })
				e.Field("breakdown", func(e *jx.Encoder) {
					e.Arr(func(e *jx.Encoder) {
						for _, g := range result.Tax.Breakdown {
							e.Obj(func(e *jx.Encoder) {
								e.Field("rate", func(e *jx.Encoder) { e.Str(g.Rate.String()) })
								encodeMoney(e, "net", g.Net)
								encodeMoney(e, "tax", g.Tax)
								encodeMoney(e, "gross", g.Gross)
							})
						}
					})
				})
			})
		})

		e.Field("shipping", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				encodeMoney(e, "cost", result.Shipping.Cost)
				e.Field("zone", func(e *jx.Encoder) { e.Str(result.Shipping.Zone) })
				e.Field("free", func(e *jx.Encoder) { e.Bool(result.Shipping.Free) })
				e.Field("eta_min_days", func(e *jx.Encoder) { e.Int(result.Shipping.ETAMinDays) })
				e.Field("eta_max_days", func(e *jx.Encoder) { e.Int(result.Shipping.ETAMaxDays) })
			})
		})

		e.Field("credit", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("eligible", func(e *jx.Encoder) { e.Bool(result.Credit.Eligible) })
				if result.Credit.Reason != "" {
					e.Field("reason", func(e *jx.Encoder) { e.Str(result.Credit.Reason) })
				}
			})
		})

		e.Field("reverse_charge", func(e *jx.Encoder) { e.Bool(result.ReverseCharge) })
		encodeMoney(e, "total", result.Total)
	})
}

func encodeLine(e *jx.Encoder, line settlement.LineQuote) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("product_id", func(e *jx.Encoder) { e.Str(line.ProductID) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(line.Quantity) })
		encodeMoney(e, "unit_price", line.UnitPrice)
		encodeMoney(e, "line_total", line.LineTotal)
		if line.TierLabel != "" {
			e.Field("tier_label", func(e *jx.Encoder) { e.Str(line.TierLabel) })
		}
		if line.NextTier != nil {
			e.Field("next_tier", func(e *jx.Encoder) { encodeTierHint(e, line.NextTier) })
		}
	})
}

func encodeTierHint(e *jx.Encoder, hint *pricing.TierHint) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("min_quantity", func(e *jx.Encoder) { e.Int(hint.MinQuantity) })
		e.Field("quantity_to_go", func(e *jx.Encoder) { e.Int(hint.QuantityToGo) })
		encodeMoney(e, "unit_price", hint.UnitPrice)
		if hint.Label != "" {
			e.Field("label", func(e *jx.Encoder) { e.Str(hint.Label) })
		}
	})
}
