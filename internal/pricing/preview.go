package pricing

import "math"

// Summary is the display-only estimate shown while a quote is being edited.
type Summary struct {
	DiscountBase              float64 `json:"discountBase"`
	ComputedDiscountValueHT   float64 `json:"computedDiscountValueHT"`
	ComputedFinalCostHT       float64 `json:"computedFinalCostHT"`
	ComputedFinalCostTTC      float64 `json:"computedFinalCostTTC"`
	ComputedFirstMonthCostHT  float64 `json:"computedFirstMonthCostHT"`
	ComputedFirstMonthCostTTC float64 `json:"computedFirstMonthCostTTC"`
	ComputedOverallCostHT     float64 `json:"computedOverallCostHT"`
	ComputedOverallCostTTC    float64 `json:"computedOverallCostTTC"`
}

// Preview computes a Summary with float64 arithmetic. It follows the same
// order of operations as Compute and stays within a cent of it.
func (e *Engine) Preview(in Input, f Formula) Summary {
	installation := f.InstallationPrice.InexactFloat64()

	optionsSum := 0.0
	for _, opt := range f.Options {
		optionsSum += opt.PriceHT.InexactFloat64()
	}

	equipmentTotal := 0.0
	for _, eq := range in.Equipments {
		equipmentTotal += eq.PriceHT.InexactFloat64() * float64(eq.BillableQuantity())
	}

	recurringBaseCost := f.MaintenancePrice.InexactFloat64() + f.HotlinePrice.InexactFloat64() + optionsSum + equipmentTotal

	monthlyBase := recurringBaseCost
	if !in.InstallationOneTime {
		monthlyBase = recurringBaseCost + installation
	}

	discountValue := effectiveDiscount(in).InexactFloat64()
	discountAmount := monthlyBase * (discountValue / 100)
	if e.cfg.HonorDiscountType && in.DiscountType == DiscountFixedAmount {
		discountAmount = math.Min(discountValue, monthlyBase)
	}

	factor := 1 + e.TaxRate(in).InexactFloat64()/100
	duration := float64(engagement(in.EngagementDuration))

	monthlyHT := monthlyBase - discountAmount
	monthlyTTC := monthlyHT * factor

	firstMonthHT := monthlyHT
	totalHT := monthlyHT * duration
	if in.InstallationOneTime {
		firstMonthHT += installation
		totalHT += installation
	}

	return Summary{
		DiscountBase:              roundFloat(monthlyBase),
		ComputedDiscountValueHT:   roundFloat(discountAmount),
		ComputedFinalCostHT:       roundFloat(monthlyHT),
		ComputedFinalCostTTC:      roundFloat(monthlyTTC),
		ComputedFirstMonthCostHT:  roundFloat(firstMonthHT),
		ComputedFirstMonthCostTTC: roundFloat(firstMonthHT * factor),
		ComputedOverallCostHT:     roundFloat(totalHT),
		ComputedOverallCostTTC:    roundFloat(totalHT * factor),
	}
}

func roundFloat(v float64) float64 {
	return math.Round(v*100) / 100
}
