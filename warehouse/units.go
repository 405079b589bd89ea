package warehouse

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	TandemTonnesPerLoad = decimal.NewFromInt(14)
	CubicMetersToTonnes = decimal.NewFromFloat(1.5)
)

// ToTonnes normalises a shipped quantity. Units that cannot be converted
// yield an invalid NullDecimal and are left out of tonnage totals.
func ToTonnes(quantity decimal.Decimal, unit string, vehicleType string) decimal.NullDecimal {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "tonnes", "tonne", "t":
		return decimal.NewNullDecimal(quantity)
	case "loads", "load":
		if strings.Contains(strings.ToLower(vehicleType), "tandem") {
			return decimal.NewNullDecimal(quantity.Mul(TandemTonnesPerLoad))
		}
	case "m3", "m³":
		return decimal.NewNullDecimal(quantity.Mul(CubicMetersToTonnes))
	}
	return decimal.NullDecimal{}
}

// hoursBetween is end-start in hours, or 0 when either end is missing or the
// span is negative.
func hoursBetween(start, end time.Time) decimal.Decimal {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(end.Sub(start).Hours()).Round(4)
}

func hoursBetweenPtr(start, end *time.Time) decimal.Decimal {
	if start == nil || end == nil {
		return decimal.Zero
	}
	return hoursBetween(*start, *end)
}
