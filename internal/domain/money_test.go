package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"contract-exchange/internal/domain"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name  string
		major string
		cents int64
	}{
		{"Whole amount", "150000", 15000000},
		{"Two decimal places", "1234.56", 123456},
		{"Half cent rounds up", "10.005", 1001},
		{"Below half cent rounds down", "10.004", 1000},
		{"Negative half cent rounds away from zero", "-10.005", -1001},
		{"Zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.cents, domain.ToMinorUnits(decimal.RequireFromString(tt.major)))
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.Equal(t, "1234.56", domain.FromMinorUnits(123456).String())
	assert.Equal(t, "150000", domain.FromMinorUnits(15000000).String())
	assert.True(t, domain.FromMinorUnits(0).IsZero())
}

func TestMinorUnitsRoundTrip(t *testing.T) {
	for _, major := range []string{"0.01", "99.99", "750000", "1234567.89"} {
		v := decimal.RequireFromString(major)
		assert.True(t, domain.FromMinorUnits(domain.ToMinorUnits(v)).Equal(v), "round trip for %s", major)
	}
}
