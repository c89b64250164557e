// Package pricing derives marketplace sale prices from acquisition cost and
// decides whether an item may be listed on a platform.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
)

// PriceScale is the number of decimal places sale prices are rounded to.
const PriceScale = 2

// FeeSchedule is what a platform keeps from each sale: a share of the final
// price plus an optional flat fee.
type FeeSchedule struct {
	Rate     decimal.Decimal
	FixedFee decimal.Decimal
}

var feeSchedules = map[enums.Platform]FeeSchedule{
	enums.PlatformX: {Rate: decimal.RequireFromString("0.10")},
	enums.PlatformY: {Rate: decimal.RequireFromString("0.08"), FixedFee: decimal.NewFromInt(2)},
	enums.PlatformZ: {Rate: decimal.RequireFromString("0.12")},
}

// Schedule returns the fee schedule for the platform.
func Schedule(platform enums.Platform) (FeeSchedule, bool) {
	schedule, ok := feeSchedules[platform]
	return schedule, ok
}

// Price back-computes the sale price so that, after the platform takes its
// cut, exactly base is left: price*(1-rate) - fixed = base.
func (s FeeSchedule) Price(base decimal.Decimal) decimal.Decimal {
	keep := decimal.NewFromInt(1).Sub(s.Rate)
	return base.Add(s.FixedFee).Div(keep).Round(PriceScale)
}

// PlatformPrice returns the sale price for base on platform. Unknown platforms
// carry no fees, so they price at base.
func PlatformPrice(base decimal.Decimal, platform enums.Platform) decimal.Decimal {
	schedule, _ := Schedule(platform)
	return schedule.Price(base)
}

// PlatformPrices returns the sale price for every supported platform.
func PlatformPrices(base decimal.Decimal) map[enums.Platform]decimal.Decimal {
	prices := make(map[enums.Platform]decimal.Decimal, len(feeSchedules))
	for _, platform := range enums.Platforms() {
		prices[platform] = PlatformPrice(base, platform)
	}
	return prices
}
