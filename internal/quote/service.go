package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GislainLefranc/Zombieland-sub002/internal/metrics"
	"github.com/GislainLefranc/Zombieland-sub002/internal/pricing"
)

// Service recomputes and previews quote prices.
type Service struct {
	engine   *pricing.Engine
	formulas FormulaSource
	store    Store
	metrics  *metrics.Recorder
	log      *zap.Logger
	guard    guard
}

// NewService wires the engine to its data-access collaborators. rec may be nil.
func NewService(engine *pricing.Engine, formulas FormulaSource, store Store, rec *metrics.Recorder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		engine:   engine,
		formulas: formulas,
		store:    store,
		metrics:  rec,
		log:      log.Named("quote.service"),
	}
}

// Recompute prices q from its formula and persists the result.
//
// If a recompute for the same quote is already running, q is returned as is.
// On error q is left untouched: its totals change only after a successful write.
func (s *Service) Recompute(ctx context.Context, q *Quote) (*Quote, error) {
	start := time.Now()
	if !s.guard.tryAcquire(q.ID) {
		s.log.Debug("recompute already in flight", zap.Int64("quote_id", q.ID))
		s.metrics.Recompute(metrics.OutcomeSkipped, 0)
		return q, nil
	}
	defer s.guard.release(q.ID)

	totals, err := s.recompute(ctx, q)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, ErrFormulaNotFound) {
			outcome = metrics.OutcomeFormulaNotFound
		}
		s.metrics.Recompute(outcome, time.Since(start))
		s.log.Warn("recompute failed", zap.Int64("quote_id", q.ID), zap.Error(err))
		return nil, err
	}

	q.Totals = totals
	s.metrics.Recompute(metrics.OutcomeOK, time.Since(start))
	s.log.Info("quote recomputed",
		zap.Int64("quote_id", q.ID),
		zap.Float64("monthly_ht", totals.MonthlyHT),
		zap.Float64("total_ttc", totals.TotalTTC),
	)
	return q, nil
}

func (s *Service) recompute(ctx context.Context, q *Quote) (pricing.Totals, error) {
	formula, err := s.formulas.GetFormula(ctx, q.FormulaID)
	if err != nil {
		return pricing.Totals{}, fmt.Errorf("resolve formula %d for quote %d: %w", q.FormulaID, q.ID, err)
	}

	result := s.engine.Compute(q.Input(), *formula)
	if err := s.store.SaveTotals(ctx, q.ID, result.Totals); err != nil {
		return pricing.Totals{}, fmt.Errorf("save totals for quote %d: %w", q.ID, err)
	}
	return result.Totals, nil
}

// RecomputeByID loads a quote and recomputes it.
func (s *Service) RecomputeByID(ctx context.Context, id int64) (*Quote, error) {
	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load quote %d: %w", id, err)
	}
	return s.Recompute(ctx, q)
}

// Preview estimates q's prices without persisting anything.
func (s *Service) Preview(ctx context.Context, q *Quote) (pricing.Summary, error) {
	formula, err := s.formulas.GetFormula(ctx, q.FormulaID)
	if err != nil {
		return pricing.Summary{}, fmt.Errorf("resolve formula %d: %w", q.FormulaID, err)
	}
	s.metrics.Preview()
	return s.engine.Preview(q.Input(), *formula), nil
}

// Get returns a stored quote.
func (s *Service) Get(ctx context.Context, id int64) (*Quote, error) {
	return s.store.GetQuote(ctx, id)
}

// Formula returns a formula with its options.
func (s *Service) Formula(ctx context.Context, id int64) (*pricing.Formula, error) {
	return s.formulas.GetFormula(ctx, id)
}
