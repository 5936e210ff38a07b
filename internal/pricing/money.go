package pricing

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount converts a loosely typed price value into a decimal.
// Missing or unparseable values become zero; this mirrors how prices have always
// been read from forms and legacy rows.
func Amount(raw any) decimal.Decimal {
	d, ok := parse(raw)
	if !ok {
		return decimal.Zero
	}
	return d
}

// Rate parses a percentage. ok is false when the value is missing or not numeric,
// letting callers fall back to a configured default.
func Rate(raw any) (decimal.NullDecimal, bool) {
	d, ok := parse(raw)
	if !ok {
		return decimal.NullDecimal{}, false
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, true
}

// Quantity converts a loosely typed quantity into a whole number of units.
// Fractions are truncated; garbage and negative values become 0.
func Quantity(raw any) int {
	d, ok := parse(raw)
	if !ok || d.IsNegative() {
		return 0
	}
	return int(d.IntPart())
}

// Round2 rounds to 2 decimals and returns the float used for storage.
// Halves round away from zero, which is half-up for the non-negative amounts
// the engine produces from valid input.
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func parse(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return v, true
	case decimal.NullDecimal:
		return v.Decimal, v.Valid
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, false
		}
		return *v, true
	case string:
		return parseString(v)
	case []byte:
		return parseString(string(v))
	case json.Number:
		return parseString(v.String())
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(v), true
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	default:
		return decimal.Zero, false
	}
}

func parseString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// percentOf returns v × (p / 100) without a division.
func percentOf(v, p decimal.Decimal) decimal.Decimal {
	return v.Mul(p.Shift(-2))
}

// taxFactor returns 1 + rate/100.
func taxFactor(rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Add(rate.Shift(-2))
}
