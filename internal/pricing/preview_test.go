package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPreview_Baseline(t *testing.T) {
	in := baselineInput()
	in.DiscountValue = dec("10")

	summary := newTestEngine(Config{}).Preview(in, baselineFormula())

	assert.Equal(t, 170.00, summary.DiscountBase)
	assert.Equal(t, 17.00, summary.ComputedDiscountValueHT)
	assert.Equal(t, 153.00, summary.ComputedFinalCostHT)
	assert.Equal(t, 183.60, summary.ComputedFinalCostTTC)
	assert.Equal(t, 153.00, summary.ComputedFirstMonthCostHT)
	assert.Equal(t, 1836.00, summary.ComputedOverallCostHT)
	assert.Equal(t, 2203.20, summary.ComputedOverallCostTTC)
}

func TestPreview_FirstMonthCarriesOneTimeInstallation(t *testing.T) {
	in := baselineInput()
	in.InstallationOneTime = true

	summary := newTestEngine(Config{}).Preview(in, baselineFormula())

	assert.Equal(t, 70.00, summary.ComputedFinalCostHT)
	assert.Equal(t, 170.00, summary.ComputedFirstMonthCostHT)
	assert.Equal(t, 204.00, summary.ComputedFirstMonthCostTTC)
	assert.Equal(t, 940.00, summary.ComputedOverallCostHT)
}

func TestPreview_MatchesComputeWithinACent(t *testing.T) {
	formulas := []Formula{
		baselineFormula(),
		{InstallationPrice: dec("249.90"), MaintenancePrice: dec("33.33"), HotlinePrice: dec("0.07"),
			Options: []Option{{PriceHT: dec("19.99")}, {PriceHT: dec("0.01")}}},
		{MaintenancePrice: dec("1.005")},
	}
	inputs := []Input{
		baselineInput(),
		{DiscountValue: dec("12.5"), EngagementDuration: 7, TaxRate: decimal.NewNullDecimal(dec("5.5"))},
		{InstallationOneTime: true, DiscountValue: dec("33.3"), EngagementDuration: 36,
			Equipments: []Equipment{{PriceHT: dec("149.99"), Quantity: 4, FirstUnitIsFree: true}, {PriceHT: dec("0.33"), Quantity: 9}}},
	}

	for _, cfg := range []Config{{}, {HonorDiscountType: true}} {
		engine := newTestEngine(cfg)
		for _, f := range formulas {
			for _, in := range inputs {
				for _, dt := range []DiscountType{DiscountPercentage, DiscountFixedAmount} {
					in.DiscountType = dt
					totals := engine.Compute(in, f).Totals
					summary := engine.Preview(in, f)

					assertWithinCent(t, "monthly ht", totals.MonthlyHT, summary.ComputedFinalCostHT)
					assertWithinCent(t, "monthly ttc", totals.MonthlyTTC, summary.ComputedFinalCostTTC)
					assertWithinCent(t, "total ht", totals.TotalHT, summary.ComputedOverallCostHT)
					assertWithinCent(t, "total ttc", totals.TotalTTC, summary.ComputedOverallCostTTC)
				}
			}
		}
	}
}

func assertWithinCent(t *testing.T, name string, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > 0.01+1e-9 {
		t.Fatalf("%s = %v, want %v (±0.01)", name, got, want)
	}
}
