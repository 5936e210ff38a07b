package pricing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultTaxRate is the tax percentage applied when a quote carries none.
var DefaultTaxRate = decimal.NewFromInt(20)

// DiscountType tells how a quote's discount value is expressed.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
)

// Option is a priced add-on attached to a formula. Attached options are always billed.
type Option struct {
	Name    string          `json:"name"`
	PriceHT decimal.Decimal `json:"price_ht"`
}

// Formula holds the base prices a quote is built from. All amounts are pre-tax.
type Formula struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	InstallationPrice decimal.Decimal `json:"installation_price"`
	MaintenancePrice  decimal.Decimal `json:"maintenance_price"`
	HotlinePrice      decimal.Decimal `json:"hotline_price"`
	Options           []Option        `json:"options"`
}

// Equipment is one equipment line of a quote.
type Equipment struct {
	Name            string          `json:"name"`
	PriceHT         decimal.Decimal `json:"price_ht"`
	Quantity        int             `json:"quantity"`
	FirstUnitIsFree bool            `json:"is_first_unit_free"`
}

// BillableQuantity is the number of charged units once the free first unit is removed.
func (e Equipment) BillableQuantity() int {
	qty := e.Quantity
	if e.FirstUnitIsFree && qty >= 1 {
		qty--
	}
	if qty < 0 {
		return 0
	}
	return qty
}

// Input groups the quote-side parameters of a computation.
type Input struct {
	InstallationOneTime bool
	DiscountType        DiscountType
	DiscountValue       decimal.Decimal
	EngagementDuration  int
	// TaxRate is a percentage; an invalid value means the engine default applies.
	TaxRate    decimal.NullDecimal
	Equipments []Equipment
}

// Breakdown exposes the intermediate sums of the authoritative computation.
type Breakdown struct {
	OptionsSum        decimal.Decimal
	EquipmentTotal    decimal.Decimal
	RecurringBaseCost decimal.Decimal
	MonthlyBase       decimal.Decimal
	DiscountAmount    decimal.Decimal
	TaxRate           decimal.Decimal
}

// Totals are the monetary fields written back onto a quote, rounded to cents.
type Totals struct {
	MonthlyHT        float64 `json:"monthly_ht"`
	MonthlyTTC       float64 `json:"monthly_ttc"`
	TotalHT          float64 `json:"total_ht"`
	TotalTTC         float64 `json:"total_ttc"`
	YearlyHT         float64 `json:"yearly_ht"`
	YearlyTTC        float64 `json:"yearly_ttc"`
	TotalDiscount    float64 `json:"total_discount"`
	TotalDiscountTTC float64 `json:"total_discount_ttc"`
}

// Result groups the full pricing output, including intermediate sums and totals.
type Result struct {
	Breakdown Breakdown
	Totals    Totals
}

// Config controls engine-wide behavior.
type Config struct {
	// DefaultTaxRate applies when a quote has no usable tax rate. Unset means 20;
	// a set zero is kept.
	DefaultTaxRate decimal.NullDecimal
	// HonorDiscountType makes fixed_amount discounts subtract a flat monthly amount.
	// When false every discount value is read as a percentage.
	HonorDiscountType bool
}

// Engine computes quote prices. It is stateless and safe for concurrent use.
type Engine struct {
	cfg Config
	log *zap.Logger
}

// NewEngine returns an engine; a nil logger disables diagnostic traces.
func NewEngine(cfg Config, log *zap.Logger) *Engine {
	if !cfg.DefaultTaxRate.Valid {
		cfg.DefaultTaxRate = decimal.NewNullDecimal(DefaultTaxRate)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{cfg: cfg, log: log.Named("pricing")}
}

// TaxRate resolves the percentage used for a given input.
func (e *Engine) TaxRate(in Input) decimal.Decimal {
	if in.TaxRate.Valid {
		return in.TaxRate.Decimal
	}
	return e.cfg.DefaultTaxRate.Decimal
}

// Compute runs the authoritative computation with exact decimal arithmetic.
func (e *Engine) Compute(in Input, f Formula) Result {
	optionsSum := decimal.Zero
	for _, opt := range f.Options {
		optionsSum = optionsSum.Add(opt.PriceHT)
	}

	equipmentTotal := decimal.Zero
	for _, eq := range in.Equipments {
		equipmentTotal = equipmentTotal.Add(eq.PriceHT.Mul(decimal.NewFromInt(int64(eq.BillableQuantity()))))
	}

	recurringBaseCost := f.MaintenancePrice.Add(f.HotlinePrice).Add(optionsSum).Add(equipmentTotal)

	monthlyBase := recurringBaseCost
	if !in.InstallationOneTime {
		monthlyBase = recurringBaseCost.Add(f.InstallationPrice)
	}

	discountAmount := e.discount(in, monthlyBase)
	taxRate := e.TaxRate(in)
	factor := taxFactor(taxRate)
	duration := decimal.NewFromInt(int64(engagement(in.EngagementDuration)))
	months := decimal.NewFromInt(12)

	monthlyHT := monthlyBase.Sub(discountAmount)
	monthlyTTC := monthlyHT.Mul(factor)

	totalHT := monthlyHT.Mul(duration)
	if in.InstallationOneTime {
		totalHT = totalHT.Add(f.InstallationPrice)
	}
	totalTTC := totalHT.Mul(factor)

	totalDiscount := discountAmount.Mul(duration)

	e.log.Debug("quote price computed",
		zap.Stringer("options_sum", optionsSum),
		zap.Stringer("equipment_total", equipmentTotal),
		zap.Stringer("recurring_base_cost", recurringBaseCost),
		zap.Stringer("monthly_base", monthlyBase),
		zap.Stringer("discount_amount", discountAmount),
		zap.Stringer("tax_rate", taxRate),
	)

	return Result{
		Breakdown: Breakdown{
			OptionsSum:        optionsSum,
			EquipmentTotal:    equipmentTotal,
			RecurringBaseCost: recurringBaseCost,
			MonthlyBase:       monthlyBase,
			DiscountAmount:    discountAmount,
			TaxRate:           taxRate,
		},
		Totals: Totals{
			MonthlyHT:        Round2(monthlyHT),
			MonthlyTTC:       Round2(monthlyTTC),
			TotalHT:          Round2(totalHT),
			TotalTTC:         Round2(totalTTC),
			YearlyHT:         Round2(monthlyHT.Mul(months)),
			YearlyTTC:        Round2(monthlyTTC.Mul(months)),
			TotalDiscount:    Round2(totalDiscount),
			TotalDiscountTTC: Round2(totalDiscount.Mul(factor)),
		},
	}
}

func (e *Engine) discount(in Input, monthlyBase decimal.Decimal) decimal.Decimal {
	value := effectiveDiscount(in)
	if e.cfg.HonorDiscountType && in.DiscountType == DiscountFixedAmount {
		return decimal.Min(value, monthlyBase)
	}
	return percentOf(monthlyBase, value)
}

// effectiveDiscount clamps negative discounts to zero; a discount never raises a price.
func effectiveDiscount(in Input) decimal.Decimal {
	if in.DiscountValue.IsNegative() {
		return decimal.Zero
	}
	return in.DiscountValue
}

func engagement(months int) int {
	if months < 0 {
		return 0
	}
	return months
}
