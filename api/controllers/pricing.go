package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/refurbstock-backend/api/responses"
	"github.com/angelmondragon/refurbstock-backend/api/validators"
	"github.com/angelmondragon/refurbstock-backend/internal/pricing"
	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
)

type quoteDTO struct {
	Platform          string  `json:"platform"`
	PlatformName      string  `json:"platform_name"`
	Price             string  `json:"price"`
	Profit            string  `json:"profit"`
	Profitable        bool    `json:"profitable"`
	PlatformCondition *string `json:"platform_condition,omitempty"`
	ConditionAccepted *bool   `json:"condition_accepted,omitempty"`
}

type quoteResponse struct {
	BasePrice string     `json:"base_price"`
	MinProfit string     `json:"min_profit"`
	Quotes    []quoteDTO `json:"quotes"`
}

// PricingQuote previews platform prices for a base price without storing
// anything. An optional condition adds each platform's label for it.
func PricingQuote(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base, err := validators.ParseQueryDecimal(r, "base_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		base = base.Round(pricing.PriceScale)

		var condition *enums.Condition
		if raw := strings.TrimSpace(r.URL.Query().Get("condition")); raw != "" {
			parsed, err := enums.ParseCondition(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition"))
				return
			}
			condition = &parsed
		}

		resp := quoteResponse{
			BasePrice: base.StringFixed(pricing.PriceScale),
			MinProfit: pricing.MinProfit.StringFixed(pricing.PriceScale),
		}
		for _, quote := range pricing.QuoteAll(base) {
			dto := quoteDTO{
				Platform:     quote.Platform.String(),
				PlatformName: quote.Platform.Label(),
				Price:        quote.Price.StringFixed(pricing.PriceScale),
				Profit:       quote.Profit.StringFixed(pricing.PriceScale),
				Profitable:   quote.Profitable,
			}
			if condition != nil {
				label, ok := pricing.MapCondition(*condition, quote.Platform)
				dto.ConditionAccepted = &ok
				if ok {
					dto.PlatformCondition = &label
				}
			}
			resp.Quotes = append(resp.Quotes, dto)
		}
		responses.WriteSuccess(w, resp)
	}
}
