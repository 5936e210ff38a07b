package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GislainLefranc/Zombieland-sub002/internal/pricing"
	"github.com/GislainLefranc/Zombieland-sub002/internal/quote"
)

// CreateFormula inserts a formula with its options and sets f.ID.
func (s *Store) CreateFormula(ctx context.Context, f *pricing.Formula) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO formulas (name, installation_price, maintenance_price, hotline_price)
			VALUES (?, ?, ?, ?)
		`, f.Name, f.InstallationPrice.String(), f.MaintenancePrice.String(), f.HotlinePrice.String())
		if err != nil {
			return fmt.Errorf("insert formula: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("read formula id: %w", err)
		}

		for i, opt := range f.Options {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO formula_options (formula_id, name, price_ht, position)
				VALUES (?, ?, ?, ?)
			`, id, opt.Name, opt.PriceHT.String(), i); err != nil {
				return fmt.Errorf("insert formula option: %w", err)
			}
		}

		f.ID = id
		return nil
	})
}

// CreateQuote inserts a quote with its equipment lines and sets q.ID.
// Output fields are stored as given; call Service.Recompute to price the quote.
func (s *Store) CreateQuote(ctx context.Context, q *quote.Quote) error {
	var taxRate any
	if q.TaxRate.Valid {
		taxRate = q.TaxRate.Decimal.String()
	}
	var discountType any
	if q.DiscountType != "" {
		discountType = string(q.DiscountType)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO quotes (
				formula_id, title, installation_one_time, discount_type, discount_value,
				engagement_duration, tax_rate
			) VALUES (?, ?, ?, ?, ?, ?, ?)
		`, q.FormulaID, q.Title, q.InstallationOneTime, discountType, q.DiscountValue.String(),
			q.EngagementDuration, taxRate)
		if err != nil {
			return fmt.Errorf("insert quote: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("read quote id: %w", err)
		}

		for _, eq := range q.Equipments {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO quote_equipments (quote_id, name, price_ht, quantity, is_first_unit_free)
				VALUES (?, ?, ?, ?, ?)
			`, id, eq.Name, eq.PriceHT.String(), eq.Quantity, eq.FirstUnitIsFree); err != nil {
				return fmt.Errorf("insert quote equipment: %w", err)
			}
		}

		q.ID = id
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
