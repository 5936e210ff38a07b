package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GislainLefranc/Zombieland-sub002/internal/pricing"
	"github.com/GislainLefranc/Zombieland-sub002/internal/quote"
)

// Store is the SQLite data-access layer for formulas and quotes.
// Monetary columns are scanned untyped and coerced with the pricing helpers,
// so malformed legacy values read back as zero instead of failing the query.
type Store struct {
	db *sql.DB
}

// New returns a Store backed by db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetFormula loads a formula and its options ordered by position.
func (s *Store) GetFormula(ctx context.Context, id int64) (*pricing.Formula, error) {
	var (
		f                                  pricing.Formula
		installation, maintenance, hotline any
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, installation_price, maintenance_price, hotline_price
		FROM formulas
		WHERE id = ?
	`, id).Scan(&f.ID, &f.Name, &installation, &maintenance, &hotline)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("formula %d: %w", id, quote.ErrFormulaNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query formula: %w", err)
	}
	f.InstallationPrice = pricing.Amount(installation)
	f.MaintenancePrice = pricing.Amount(maintenance)
	f.HotlinePrice = pricing.Amount(hotline)

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, price_ht
		FROM formula_options
		WHERE formula_id = ?
		ORDER BY position, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query formula options: %w", err)
	}
	defer rows.Close()

	f.Options = make([]pricing.Option, 0)
	for rows.Next() {
		var (
			opt   pricing.Option
			price any
		)
		if err := rows.Scan(&opt.Name, &price); err != nil {
			return nil, fmt.Errorf("scan formula option: %w", err)
		}
		opt.PriceHT = pricing.Amount(price)
		f.Options = append(f.Options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate formula options: %w", err)
	}

	return &f, nil
}

// GetQuote loads a quote with its equipment lines.
func (s *Store) GetQuote(ctx context.Context, id int64) (*quote.Quote, error) {
	var (
		q                                quote.Quote
		title, discountType              sql.NullString
		discountValue, duration, taxRate any
		monthlyHT, monthlyTTC, totalHT   sql.NullFloat64
		totalTTC, yearlyHT, yearlyTTC    sql.NullFloat64
		totalDiscount, totalDiscountTTC  sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			id, formula_id, title, installation_one_time, discount_type, discount_value,
			engagement_duration, tax_rate,
			monthly_ht, monthly_ttc, total_ht, total_ttc,
			yearly_ht, yearly_ttc, total_discount, total_discount_ttc,
			created_at, updated_at
		FROM quotes
		WHERE id = ?
	`, id).Scan(
		&q.ID, &q.FormulaID, &title, &q.InstallationOneTime, &discountType, &discountValue,
		&duration, &taxRate,
		&monthlyHT, &monthlyTTC, &totalHT, &totalTTC,
		&yearlyHT, &yearlyTTC, &totalDiscount, &totalDiscountTTC,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quote %d: %w", id, quote.ErrQuoteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query quote: %w", err)
	}

	q.Title = title.String
	q.DiscountType = pricing.DiscountType(discountType.String)
	q.DiscountValue = pricing.Amount(discountValue)
	q.EngagementDuration = pricing.Quantity(duration)
	q.TaxRate, _ = pricing.Rate(taxRate)
	q.Totals = pricing.Totals{
		MonthlyHT:        monthlyHT.Float64,
		MonthlyTTC:       monthlyTTC.Float64,
		TotalHT:          totalHT.Float64,
		TotalTTC:         totalTTC.Float64,
		YearlyHT:         yearlyHT.Float64,
		YearlyTTC:        yearlyTTC.Float64,
		TotalDiscount:    totalDiscount.Float64,
		TotalDiscountTTC: totalDiscountTTC.Float64,
	}

	equipments, err := s.listEquipments(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Equipments = equipments

	return &q, nil
}

func (s *Store) listEquipments(ctx context.Context, quoteID int64) ([]pricing.Equipment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, price_ht, quantity, is_first_unit_free
		FROM quote_equipments
		WHERE quote_id = ?
		ORDER BY id
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("query quote equipments: %w", err)
	}
	defer rows.Close()

	equipments := make([]pricing.Equipment, 0)
	for rows.Next() {
		var (
			eq              pricing.Equipment
			price, quantity any
		)
		if err := rows.Scan(&eq.Name, &price, &quantity, &eq.FirstUnitIsFree); err != nil {
			return nil, fmt.Errorf("scan quote equipment: %w", err)
		}
		eq.PriceHT = pricing.Amount(price)
		eq.Quantity = pricing.Quantity(quantity)
		equipments = append(equipments, eq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote equipments: %w", err)
	}

	return equipments, nil
}

// SaveTotals writes every output field of a quote in a single statement.
func (s *Store) SaveTotals(ctx context.Context, id int64, t pricing.Totals) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE quotes
		SET
			monthly_ht = ?,
			monthly_ttc = ?,
			total_ht = ?,
			total_ttc = ?,
			yearly_ht = ?,
			yearly_ttc = ?,
			total_discount = ?,
			total_discount_ttc = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		t.MonthlyHT,
		t.MonthlyTTC,
		t.TotalHT,
		t.TotalTTC,
		t.YearlyHT,
		t.YearlyTTC,
		t.TotalDiscount,
		t.TotalDiscountTTC,
		id,
	)
	if err != nil {
		return fmt.Errorf("update quote totals: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quote totals: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("quote %d: %w", id, quote.ErrQuoteNotFound)
	}
	return nil
}
