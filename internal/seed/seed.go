package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	demoFormulaName = "Formule Standard"
	demoQuoteTitle  = "Devis de démonstration"
)

type demoOption struct {
	name  string
	price string
}

var demoOptions = []demoOption{
	{name: "Sauvegarde externalisée", price: "15"},
	{name: "Supervision 24/7", price: "25"},
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run inserts the demo formula and quote in an idempotent way.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	formulaID, err := ensureFormula(ctx, tx, &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureQuote(ctx, tx, formulaID, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureFormula(ctx context.Context, tx *sql.Tx, stats *Stats) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM formulas WHERE name = ? LIMIT 1`, demoFormulaName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check demo formula existence: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO formulas (name, installation_price, maintenance_price, hotline_price)
		VALUES (?, ?, ?, ?)
	`, demoFormulaName, 100, 50, 20)
	if err != nil {
		return 0, fmt.Errorf("insert demo formula: %w", err)
	}
	if id, err = result.LastInsertId(); err != nil {
		return 0, fmt.Errorf("read demo formula id: %w", err)
	}
	stats.Inserts++

	for i, opt := range demoOptions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO formula_options (formula_id, name, price_ht, position)
			VALUES (?, ?, ?, ?)
		`, id, opt.name, opt.price, i); err != nil {
			return 0, fmt.Errorf("insert demo option: %w", err)
		}
		stats.Inserts++
	}

	return id, nil
}

func ensureQuote(ctx context.Context, tx *sql.Tx, formulaID int64, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM quotes WHERE title = ? LIMIT 1)`, demoQuoteTitle).Scan(&exists); err != nil {
		return fmt.Errorf("check demo quote existence: %w", err)
	}
	if exists {
		return nil
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO quotes (formula_id, title, installation_one_time, discount_type, discount_value, engagement_duration, tax_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, formulaID, demoQuoteTitle, false, "percentage", 10, 12, 20)
	if err != nil {
		return fmt.Errorf("insert demo quote: %w", err)
	}
	quoteID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read demo quote id: %w", err)
	}
	stats.Inserts++

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO quote_equipments (quote_id, name, price_ht, quantity, is_first_unit_free)
		VALUES (?, ?, ?, ?, ?)
	`, quoteID, "Borne d'accueil", 10, 3, true); err != nil {
		return fmt.Errorf("insert demo equipment: %w", err)
	}
	stats.Inserts++

	return nil
}
