package domain

import "github.com/shopspring/decimal"

// Monetary values are stored as integer minor units (cents) and exposed at
// the API boundary as decimal major units.

var centsPerUnit = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to cents, rounding half up.
func ToMinorUnits(major decimal.Decimal) int64 {
	return major.Mul(centsPerUnit).Round(0).IntPart()
}

// FromMinorUnits converts cents back to a major-unit decimal.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerUnit)
}
