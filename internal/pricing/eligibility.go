package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
)

// MinProfit is the smallest margin, in currency units, that allows a listing.
var MinProfit = decimal.NewFromInt(5)

// Profit is what the platform price earns over base.
func Profit(base decimal.Decimal, platform enums.Platform) decimal.Decimal {
	return PlatformPrice(base, platform).Sub(base)
}

// IsProfitable reports whether listing base on platform clears MinProfit.
func IsProfitable(base decimal.Decimal, platform enums.Platform) bool {
	return Profit(base, platform).GreaterThanOrEqual(MinProfit)
}

// Candidate is the slice of an inventory item the listing gates look at.
type Candidate struct {
	BasePrice     decimal.Decimal
	StockQuantity int
	ReservedQty   int
	Condition     enums.Condition
}

// Verdict describes a listing that passed every gate.
type Verdict struct {
	Platform          enums.Platform
	Price             decimal.Decimal
	Profit            decimal.Decimal
	PlatformCondition string
}

// BlockedError reports the first gate a listing attempt failed.
type BlockedError struct {
	Platform  enums.Platform
	Rule      enums.ListingRule
	Condition enums.Condition
	Available int
	Profit    decimal.Decimal
}

func (e *BlockedError) Error() string {
	name := e.Platform.Label()
	switch e.Rule {
	case enums.ListingRuleOutOfStock:
		return fmt.Sprintf("cannot list on %s: out of stock or reserved for B2B", name)
	case enums.ListingRuleUnsupportedCondition:
		return fmt.Sprintf("cannot list on %s: unsupported condition %q", name, e.Condition)
	case enums.ListingRuleUnprofitable:
		return fmt.Sprintf("cannot list on %s: not profitable (profit %s, minimum %s)", name, e.Profit.StringFixed(PriceScale), MinProfit.StringFixed(PriceScale))
	}
	return fmt.Sprintf("cannot list on %s: %s", name, e.Rule)
}

// EvaluateListing runs the listing gates in order: available stock, condition
// mapping, then profitability. It returns *BlockedError for the first gate
// that fails, or an error if the platform is not supported at all.
func EvaluateListing(c Candidate, platform enums.Platform) (Verdict, error) {
	if _, ok := Schedule(platform); !ok {
		return Verdict{}, fmt.Errorf("unsupported platform %q", platform)
	}

	available := AvailableStock(c.StockQuantity, c.ReservedQty)
	if available <= 0 {
		return Verdict{}, &BlockedError{Platform: platform, Rule: enums.ListingRuleOutOfStock, Condition: c.Condition}
	}

	label, ok := MapCondition(c.Condition, platform)
	if !ok {
		return Verdict{}, &BlockedError{Platform: platform, Rule: enums.ListingRuleUnsupportedCondition, Condition: c.Condition, Available: available}
	}

	price := PlatformPrice(c.BasePrice, platform)
	profit := price.Sub(c.BasePrice)
	if profit.LessThan(MinProfit) {
		return Verdict{}, &BlockedError{Platform: platform, Rule: enums.ListingRuleUnprofitable, Condition: c.Condition, Available: available, Profit: profit}
	}

	return Verdict{
		Platform:          platform,
		Price:             price,
		Profit:            profit,
		PlatformCondition: label,
	}, nil
}

// Quote is a per-platform pricing preview for a base price.
type Quote struct {
	Platform   enums.Platform
	Price      decimal.Decimal
	Profit     decimal.Decimal
	Profitable bool
}

// QuoteAll prices base on every supported platform.
func QuoteAll(base decimal.Decimal) []Quote {
	platforms := enums.Platforms()
	quotes := make([]Quote, 0, len(platforms))
	for _, platform := range platforms {
		price := PlatformPrice(base, platform)
		profit := price.Sub(base)
		quotes = append(quotes, Quote{
			Platform:   platform,
			Price:      price,
			Profit:     profit,
			Profitable: profit.GreaterThanOrEqual(MinProfit),
		})
	}
	return quotes
}
