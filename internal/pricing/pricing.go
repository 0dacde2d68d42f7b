// Package pricing computes dynamic court prices. All functions are pure;
// money is handled as decimals and rounded half-up to 2 places only at the
// final total so intermediate factors never accumulate rounding error.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	peakStartHour   = 18
	peakEndHour     = 22
	valleyStartHour = 6
	valleyEndHour   = 12
)

var (
	weekendFactor = decimal.NewFromFloat(1.3)
	peakFactor    = decimal.NewFromFloat(1.5)
	valleyFactor  = decimal.NewFromFloat(0.8)

	recurrentDiscount = decimal.NewFromFloat(0.05)
)

// Quote is the full price breakdown for a booking. Total is always
// base + surcharge - discount; the surcharge is negative for valley hours.
type Quote struct {
	BasePrice decimal.Decimal `json:"base_price"`
	Surcharge decimal.Decimal `json:"surcharge"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// Factor returns the multiplicative price factor for a date and start time.
// Weekend, peak and valley factors compose multiplicatively.
func Factor(date time.Time, start time.Time) decimal.Decimal {
	factor := decimal.NewFromInt(1)

	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		factor = factor.Mul(weekendFactor)
	}

	hour := start.Hour()
	if hour >= peakStartHour && hour < peakEndHour {
		factor = factor.Mul(peakFactor)
	}
	if hour >= valleyStartHour && hour < valleyEndHour {
		factor = factor.Mul(valleyFactor)
	}

	return factor
}

// Calculate prices a booking of whole-hour duration. membershipDiscount and
// the recurrent-series discount both apply to the factored subtotal and sum
// additively before subtraction.
func Calculate(baseRate decimal.Decimal, date time.Time, start, end time.Time, membershipDiscount decimal.Decimal, recurrentSeries bool) Quote {
	hours := DurationHours(start, end)
	basePrice := baseRate.Mul(decimal.NewFromInt(int64(hours)))

	subtotal := basePrice.Mul(Factor(date, start))
	surcharge := subtotal.Sub(basePrice)

	discount := subtotal.Mul(membershipDiscount)
	if recurrentSeries {
		discount = discount.Add(subtotal.Mul(recurrentDiscount))
	}

	total := subtotal.Sub(discount).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		BasePrice: basePrice,
		Surcharge: surcharge,
		Discount:  discount,
		Total:     total,
	}
}

// Estimate returns the factored price for a slot without any discounts,
// used for availability displays.
func Estimate(baseRate decimal.Decimal, date time.Time, start, end time.Time) decimal.Decimal {
	hours := DurationHours(start, end)
	basePrice := baseRate.Mul(decimal.NewFromInt(int64(hours)))
	return basePrice.Mul(Factor(date, start)).Round(2)
}

// DurationHours returns the booking length in whole hours. Callers validate
// granularity; fractional remainders are truncated.
func DurationHours(start, end time.Time) int {
	return int(end.Sub(start).Hours())
}
