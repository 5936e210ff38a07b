package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/GislainLefranc/Zombieland-sub002/internal/pricing"
	"github.com/GislainLefranc/Zombieland-sub002/internal/quote"
)

type errorResponse struct {
	Error string `json:"error"`
}

type equipmentRequest struct {
	Name            string `json:"name"`
	PriceHT         any    `json:"price_ht"`
	Quantity        any    `json:"quantity"`
	IsFirstUnitFree any    `json:"is_first_unit_free"`
}

// previewRequest mirrors the quote form. Numeric fields stay untyped so
// malformed values are coerced rather than rejected.
type previewRequest struct {
	FormulaID           any                `json:"formula_id"`
	InstallationOneTime any                `json:"installation_one_time"`
	DiscountType        string             `json:"discount_type"`
	DiscountValue       any                `json:"discount_value"`
	EngagementDuration  any                `json:"engagement_duration"`
	TaxRate             any                `json:"tax_rate"`
	Equipments          []equipmentRequest `json:"equipments"`
}

func (p previewRequest) toQuote() *quote.Quote {
	q := &quote.Quote{
		FormulaID:           int64(pricing.Quantity(p.FormulaID)),
		InstallationOneTime: truthy(p.InstallationOneTime),
		DiscountType:        pricing.DiscountType(strings.TrimSpace(p.DiscountType)),
		DiscountValue:       pricing.Amount(p.DiscountValue),
		EngagementDuration:  pricing.Quantity(p.EngagementDuration),
		Equipments:          make([]pricing.Equipment, 0, len(p.Equipments)),
	}
	q.TaxRate, _ = pricing.Rate(p.TaxRate)
	for _, eq := range p.Equipments {
		q.Equipments = append(q.Equipments, pricing.Equipment{
			Name:            eq.Name,
			PriceHT:         pricing.Amount(eq.PriceHT),
			Quantity:        pricing.Quantity(eq.Quantity),
			FirstUnitIsFree: truthy(eq.IsFirstUnitFree),
		})
	}
	return q
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleGetFormula(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	f, err := s.quotes.Formula(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *server) handleInvalidateFormula(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(r.Context(), id); err != nil {
			s.log.Warn("invalidate formula cache", zap.Int64("formula_id", id), zap.Error(err))
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "failed to invalidate cache"})
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	q, err := s.quotes.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	q, err := s.quotes.RecomputeByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	q := req.toQuote()
	if q.FormulaID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "formula_id is required"})
		return
	}

	summary, err := s.quotes.Preview(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quote.ErrQuoteNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quote not found"})
	case errors.Is(err, quote.ErrFormulaNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "formula not found"})
	default:
		s.log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// truthy reads checkbox-style flags: true, "true", "1", "on", non-zero numbers.
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "on", "yes":
			return true
		}
		return false
	default:
		return !pricing.Amount(v).IsZero()
	}
}
