package quote

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GislainLefranc/Zombieland-sub002/internal/pricing"
)

var (
	ErrQuoteNotFound   = errors.New("quote not found")
	ErrFormulaNotFound = errors.New("formula not found")
)

// Quote is a customer quote referencing exactly one formula.
type Quote struct {
	ID                  int64                `json:"id"`
	FormulaID           int64                `json:"formula_id"`
	Title               string               `json:"title"`
	InstallationOneTime bool                 `json:"installation_one_time"`
	DiscountType        pricing.DiscountType `json:"discount_type,omitempty"`
	DiscountValue       decimal.Decimal      `json:"discount_value"`
	EngagementDuration  int                  `json:"engagement_duration"`
	TaxRate             decimal.NullDecimal  `json:"tax_rate"`
	Equipments          []pricing.Equipment  `json:"equipments"`
	pricing.Totals
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input extracts the pricing parameters of the quote.
func (q *Quote) Input() pricing.Input {
	return pricing.Input{
		InstallationOneTime: q.InstallationOneTime,
		DiscountType:        q.DiscountType,
		DiscountValue:       q.DiscountValue,
		EngagementDuration:  q.EngagementDuration,
		TaxRate:             q.TaxRate,
		Equipments:          q.Equipments,
	}
}

// FormulaSource resolves formulas with their attached options.
// Implementations return ErrFormulaNotFound for unknown ids.
type FormulaSource interface {
	GetFormula(ctx context.Context, id int64) (*pricing.Formula, error)
}

// Store reads quotes and persists their computed totals.
type Store interface {
	GetQuote(ctx context.Context, id int64) (*Quote, error)
	// SaveTotals writes all output fields at once.
	SaveTotals(ctx context.Context, id int64, totals pricing.Totals) error
}
