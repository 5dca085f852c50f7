/*
handlers.go - HTTP handler implementations

PURPOSE:
  Implements the REST API: configuration management, run triggers, and
  result queries. Handlers validate input, call the engine, and shape
  responses. No calculation logic lives here.

SAVE VALIDATION:
  Saving a bonus config whose weights fail validation returns 400 and
  writes nothing. A plan that cannot produce a correct payout must not
  be storable.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 422: Run rejected on configuration (the failed run summary is returned)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - server.go: Route wiring
  - dto.go: Request/response types
*/
package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/keystone/comp-engine/comp"
	"github.com/keystone/comp-engine/factory"
)

// Handler holds the dependencies for all API endpoints.
type Handler struct {
	Store   comp.Store
	Factory *factory.Factory
	Logger  *zap.Logger

	QuarterClose *comp.QuarterCloseRunner
	MonthClose   *comp.MonthCloseRunner
}

// NewHandler wires a handler and its runners around one store.
func NewHandler(store comp.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store:        store,
		Factory:      factory.New(),
		Logger:       logger,
		QuarterClose: &comp.QuarterCloseRunner{Store: store, Logger: logger},
		MonthClose:   &comp.MonthCloseRunner{Store: store, Logger: logger},
	}
}

// =============================================================================
// BONUS CONFIG
// =============================================================================

// GetBonusConfig handles GET /api/quarters/{quarter}/bonus-config.
func (h *Handler) GetBonusConfig(w http.ResponseWriter, r *http.Request) {
	quarter := chi.URLParam(r, "quarter")
	cfg, err := h.Store.BonusConfig(r.Context(), quarter)
	if err != nil {
		if comp.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "no bonus config for quarter "+quarter)
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, comp.NormalizeBonusConfig(cfg))
}

// SaveBonusConfig handles PUT /api/quarters/{quarter}/bonus-config.
// An invalid weight group rejects the save with 400.
func (h *Handler) SaveBonusConfig(w http.ResponseWriter, r *http.Request) {
	quarter := chi.URLParam(r, "quarter")

	var req SaveBonusConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.Quarter = quarter

	cfg, err := h.Factory.BonusConfigFromJSON(req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := cfg.ValidateWeights(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Store.SaveBonusConfig(r.Context(), cfg); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, cfg)
}

// =============================================================================
// RATE CONFIG
// =============================================================================

type rateConfigDTO struct {
	Rates        []comp.RateEntry     `json:"rates"`
	SpecialRules comp.SpecialRules    `json:"special_rules"`
	Rules        comp.CommissionRules `json:"rules"`
}

// GetRateConfig handles GET /api/rates.
func (h *Handler) GetRateConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Store.RateConfig(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cfg = comp.NormalizeRateConfig(cfg)

	entries := cfg.Table.Entries()
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.Segment != b.Segment {
			return a.Segment < b.Segment
		}
		return a.Status < b.Status
	})
	if entries == nil {
		entries = []comp.RateEntry{}
	}

	h.respondJSON(w, http.StatusOK, rateConfigDTO{
		Rates:        entries,
		SpecialRules: cfg.SpecialRules,
		Rules:        cfg.Rules,
	})
}

// SaveRateConfig handles PUT /api/rates.
func (h *Handler) SaveRateConfig(w http.ResponseWriter, r *http.Request) {
	var req SaveRateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	cfg, err := h.Factory.RateConfigFromJSON(req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Store.SaveRateConfig(r.Context(), cfg); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SPIFFS
// =============================================================================

// ListSpiffs handles GET /api/spiffs.
func (h *Handler) ListSpiffs(w http.ResponseWriter, r *http.Request) {
	spiffs, err := h.Store.Spiffs(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sort.Slice(spiffs, func(i, j int) bool { return spiffs[i].ID < spiffs[j].ID })

	dtos := make([]SpiffDTO, 0, len(spiffs))
	for _, s := range spiffs {
		dtos = append(dtos, toSpiffDTO(s))
	}
	h.respondJSON(w, http.StatusOK, dtos)
}

// CreateSpiff handles POST /api/spiffs.
func (h *Handler) CreateSpiff(w http.ResponseWriter, r *http.Request) {
	var req CreateSpiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	spiff, err := h.Factory.SpiffFromJSON(req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Store.SaveSpiff(r.Context(), spiff); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusCreated, toSpiffDTO(spiff))
}

// DeleteSpiff handles DELETE /api/spiffs/{id}.
func (h *Handler) DeleteSpiff(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteSpiff(r.Context(), id); err != nil {
		if comp.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "spiff not found: "+id)
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RUNS
// =============================================================================

// RunQuarterClose handles POST /api/runs/quarter-close.
func (h *Handler) RunQuarterClose(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Quarter == "" {
		h.respondError(w, http.StatusBadRequest, "quarter is required")
		return
	}

	run, err := h.QuarterClose.Run(r.Context(), req.Quarter)
	if err != nil {
		h.respondRunError(w, run, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toRunSummaryDTO(run))
}

// RunMonthClose handles POST /api/runs/month-close.
func (h *Handler) RunMonthClose(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Month == "" {
		h.respondError(w, http.StatusBadRequest, "month is required")
		return
	}

	run, err := h.MonthClose.Run(r.Context(), req.Month)
	if err != nil {
		h.respondRunError(w, run, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toRunSummaryDTO(run))
}

// respondRunError distinguishes rejected runs from transport failures.
// A run that failed on configuration still has a persisted summary the
// client can inspect.
func (h *Handler) respondRunError(w http.ResponseWriter, run comp.RunSummary, err error) {
	if comp.IsConfigError(err) || comp.IsNotFound(err) {
		h.respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": err.Error(),
			"run":   toRunSummaryDTO(run),
		})
		return
	}
	if run.ID == "" {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondError(w, http.StatusInternalServerError, err.Error())
}

// GetRun handles GET /api/runs/{id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := comp.RunID(chi.URLParam(r, "id"))
	run, err := h.Store.Run(r.Context(), id)
	if err != nil {
		if comp.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "run not found: "+string(id))
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, toRunSummaryDTO(run))
}

// =============================================================================
// RESULTS
// =============================================================================

// GetRepBonus handles GET /api/reps/{id}/bonus?quarter=Q3-2025.
func (h *Handler) GetRepBonus(w http.ResponseWriter, r *http.Request) {
	rep := comp.RepID(chi.URLParam(r, "id"))
	quarter := r.URL.Query().Get("quarter")
	if quarter == "" {
		h.respondError(w, http.StatusBadRequest, "quarter query parameter is required")
		return
	}
	if _, err := comp.ParseQuarter(quarter); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.Store.BonusEntries(r.Context(), rep, quarter)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, toBonusEntryDTOs(entries))
}

// GetRepCommissions handles GET /api/reps/{id}/commissions?month=2025-07.
// Responds with commissions and the spiffs earned in the same month.
func (h *Handler) GetRepCommissions(w http.ResponseWriter, r *http.Request) {
	rep := comp.RepID(chi.URLParam(r, "id"))
	month := r.URL.Query().Get("month")
	if month == "" {
		h.respondError(w, http.StatusBadRequest, "month query parameter is required")
		return
	}
	if _, err := comp.ParseMonth(month); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	commissions, err := h.Store.CommissionEntries(r.Context(), rep, month)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	spiffs, err := h.Store.SpiffEntries(r.Context(), rep, month)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"commissions": toCommissionEntryDTOs(commissions),
		"spiffs":      toSpiffEntryDTOs(spiffs),
	})
}

// GetMonthlySummaries handles GET /api/summaries?month=2025-07.
func (h *Handler) GetMonthlySummaries(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		h.respondError(w, http.StatusBadRequest, "month query parameter is required")
		return
	}

	summaries, err := h.Store.MonthlySummaries(r.Context(), month)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type summaryDTO struct {
		RepID      string `json:"rep_id"`
		RepName    string `json:"rep_name"`
		Month      string `json:"month"`
		Orders     int    `json:"orders"`
		Revenue    string `json:"revenue"`
		Commission string `json:"commission"`
		Spiffs     string `json:"spiffs"`
		Total      string `json:"total"`
	}
	dtos := make([]summaryDTO, 0, len(summaries))
	for _, s := range summaries {
		dtos = append(dtos, summaryDTO{
			RepID:      string(s.RepID),
			RepName:    s.RepName,
			Month:      s.Month,
			Orders:     s.Orders,
			Revenue:    s.Revenue.Value.String(),
			Commission: s.Commission.Value.String(),
			Spiffs:     s.Spiffs.Value.String(),
			Total:      s.Total.Value.String(),
		})
	}
	h.respondJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
