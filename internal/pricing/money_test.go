package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmount_CoercesLooseValues(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want string
	}{
		{name: "nil", raw: nil, want: "0"},
		{name: "garbage string", raw: "abc", want: "0"},
		{name: "empty string", raw: "  ", want: "0"},
		{name: "numeric string", raw: " 12.50 ", want: "12.5"},
		{name: "bytes", raw: []byte("99.99"), want: "99.99"},
		{name: "json number", raw: json.Number("3.14"), want: "3.14"},
		{name: "float", raw: 10.25, want: "10.25"},
		{name: "nan", raw: math.NaN(), want: "0"},
		{name: "int", raw: 7, want: "7"},
		{name: "int64", raw: int64(42), want: "42"},
		{name: "bool", raw: true, want: "0"},
		{name: "decimal", raw: decimal.RequireFromString("1.23"), want: "1.23"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Amount(tc.raw)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "Amount(%v) = %s, want %s", tc.raw, got, tc.want)
		})
	}
}

func TestRate_ReportsMissingValues(t *testing.T) {
	_, ok := Rate(nil)
	assert.False(t, ok)

	_, ok = Rate("twenty")
	assert.False(t, ok)

	rate, ok := Rate("5.5")
	assert.True(t, ok)
	assert.True(t, rate.Valid)
	assert.Equal(t, "5.5", rate.Decimal.String())
}

func TestQuantity_TruncatesAndClamps(t *testing.T) {
	assert.Equal(t, 3, Quantity("3"))
	assert.Equal(t, 2, Quantity(2.9))
	assert.Equal(t, 0, Quantity("-4"))
	assert.Equal(t, 0, Quantity("lots"))
	assert.Equal(t, 5, Quantity(int64(5)))
}

func TestRound2_RoundsHalvesAwayFromZero(t *testing.T) {
	assert.Equal(t, 2.35, Round2(decimal.RequireFromString("2.345")))
	assert.Equal(t, 2.34, Round2(decimal.RequireFromString("2.344")))
	assert.Equal(t, 1.01, Round2(decimal.RequireFromString("1.005")))
	assert.Equal(t, 244.8, Round2(decimal.RequireFromString("244.8000")))
	assert.Equal(t, -1.01, Round2(decimal.RequireFromString("-1.005")))
}
