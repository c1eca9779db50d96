/*
handlers.go - HTTP handlers for the warehouse engine

PURPOSE:
  Exposes the ledger engine via REST. Handlers parse the request, delegate
  to the engine, and serialize the result; no ledger logic lives here.

ENDPOINTS:
  POST   /api/supply        Ingest supply lots
  POST   /api/sales         Ingest sales (FIFO allocation)
  GET    /api/profit        Profit grouped by SKU in a range
  GET    /api/availability  Supply lots in a range (compact or full)
  GET    /api/issues        Recorded ingest failures
  GET    /api/top           Top-N sales by profit/margin/qty/sum
  DELETE /api/flush         Empty all ledgers

ERROR HANDLING:
  - 201: batch ingest with at least one success
  - 200: reads and flush
  - 422: validation-only batches, bad ranges, bad top/by parameters
  - 500: store failures
  Every non-2xx body is {"errors": [...]}.
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/warp/warehouse-engine/warehouse"
)

// Handler holds the engine behind all HTTP handlers.
type Handler struct {
	Engine *warehouse.Engine
}

// NewHandler creates a handler around the given engine.
func NewHandler(engine *warehouse.Engine) *Handler {
	return &Handler{Engine: engine}
}

// =============================================================================
// INGEST HANDLERS
// =============================================================================

// AddSupplies handles POST /api/supply.
func (h *Handler) AddSupplies(w http.ResponseWriter, r *http.Request) {
	h.ingest(w, r, h.Engine.AddSupplies)
}

// AddSales handles POST /api/sales.
func (h *Handler) AddSales(w http.ResponseWriter, r *http.Request) {
	h.ingest(w, r, h.Engine.AddSales)
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request, add func(context.Context, []warehouse.Item) (warehouse.BatchResult, error)) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Data) == 0 {
		writeErrors(w, http.StatusUnprocessableEntity, warehouse.ErrEmptyBatch.Error())
		return
	}

	result, err := add(r.Context(), req.Data)
	if err != nil {
		writeErrors(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result.Failed() {
		// The errors shape replaces the success shape entirely.
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusCreated, dataResponse{Data: result})
}

// =============================================================================
// READ HANDLERS
// =============================================================================

// GetProfit handles GET /api/profit?from=&to=.
func (h *Handler) GetProfit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	groups, err := h.Engine.Profit(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: toSaleGroupDTOs(groups)})
}

// GetAvailability handles GET /api/availability?from=&to=&sku=&full=.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lots, err := h.Engine.AvailableSupplies(r.Context(), q.Get("from"), q.Get("to"), q.Get("sku"))
	if err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if full, _ := strconv.ParseBool(q.Get("full")); full {
		writeJSON(w, http.StatusOK, dataResponse{Data: toLotDTOs(lots)})
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: toAvailableSupplyDTOs(lots)})
}

// GetIssues handles GET /api/issues?from=&to=. With no bounds the whole
// issue log is returned.
func (h *Handler) GetIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	issues, err := h.Engine.Issues(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if issues == nil {
		issues = []warehouse.Issue{}
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: issues})
}

// GetTop handles GET /api/top?from=&to=&top=&by=.
func (h *Handler) GetTop(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := strconv.Atoi(q.Get("top"))
	if err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, "Top should be a number")
		return
	}
	if limit < 1 {
		writeErrors(w, http.StatusUnprocessableEntity, warehouse.ErrInvalidLimit.Error())
		return
	}
	by, err := warehouse.ParseSortBy(q.Get("by"))
	if err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	top, err := h.Engine.TopSales(r.Context(), q.Get("from"), q.Get("to"), limit, by)
	if err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: toSaleGroupDTOs(top)})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Flush handles DELETE /api/flush.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Engine.Clear(r.Context())
	if err != nil {
		writeErrors(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: flushDTO{Success: removed}})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrors(w http.ResponseWriter, status int, msgs ...string) {
	writeJSON(w, status, errorResponse{Errors: msgs})
}
