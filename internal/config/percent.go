package config

import (
	"fmt"

	"github.com/rzbill/vesta/internal/vesting"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	maxBps  = decimal.NewFromInt(vesting.BpsDenominator)
)

// ParsePercent converts a decimal percentage to basis points. The value
// must lie in [0, 100] and be a whole number of basis points; the empty
// string is zero.
func ParsePercent(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: percentage %q: %v", vesting.ErrInvalidArgument, s, err)
	}
	bps := d.Mul(hundred)
	if bps.IsNegative() || bps.GreaterThan(maxBps) {
		return 0, fmt.Errorf("%w: percentage %s outside [0, 100]", vesting.ErrInvalidArgument, s)
	}
	if !bps.Equal(bps.Truncate(0)) {
		return 0, fmt.Errorf("%w: percentage %s finer than one basis point", vesting.ErrInvalidArgument, s)
	}
	return uint32(bps.IntPart()), nil
}

// FormatPercent renders basis points as a decimal percentage.
func FormatPercent(bps uint32) string {
	return decimal.New(int64(bps), -2).String()
}
