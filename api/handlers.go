/*
handlers.go - HTTP handlers for the forecast service

PURPOSE:
  Exposes the batch pipeline over HTTP: run a forecast for a project
  definition, or run a forecast and reconcile it into the persistent
  ledger. The handlers are a thin surface; all semantics live in the
  forecast and inventory packages.

ENDPOINTS:
  GET  /api/health           Liveness probe
  POST /api/forecast         Run a forecast, return per-period records
                             (?format=csv streams the forecast export)
  POST /api/reconcile        Run a forecast and merge it into the ledger

ERROR MAPPING:
  ConfigurationError, SchemaError,
  ReconciliationAmbiguityError  -> 400 (client input)
  Project not in portfolio      -> 404
  Anything else                 -> 500

SEE ALSO:
  - server.go: Router wiring
  - factory/project.go: Request body schema
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/warp/accu-engine/factory"
	"github.com/warp/accu-engine/forecast"
	"github.com/warp/accu-engine/inventory"
)

// Handler carries the service dependencies.
type Handler struct {
	Ledger   inventory.LedgerStore
	Metadata inventory.MetadataProvider
}

func NewHandler(ledger inventory.LedgerStore, metadata inventory.MetadataProvider) *Handler {
	return &Handler{Ledger: ledger, Metadata: metadata}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RunForecast runs the forecast pipeline for the posted project
// definition and returns the per-period records.
func (h *Handler) RunForecast(w http.ResponseWriter, r *http.Request) {
	project, ok := h.decodeProject(w, r)
	if !ok {
		return
	}

	result, err := project.Forecast(r.Context(), nil)
	if err != nil {
		respondError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		if err := forecast.WriteCSV(w, result); err != nil {
			log.Printf("forecast export: %v", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, toForecastResponse(project.RegistryID, result))
}

// RunReconcile runs the forecast pipeline and merges the result into the
// ledger. The ledger is saved only after the full reconciliation
// completes; a failed run leaves it untouched.
func (h *Handler) RunReconcile(w http.ResponseWriter, r *http.Request) {
	project, ok := h.decodeProject(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	result, err := project.Forecast(ctx, nil)
	if err != nil {
		respondError(w, err)
		return
	}
	rows := inventory.ForecastRows(project.RegistryID, result)

	table, err := h.Ledger.Load(ctx)
	if err != nil {
		respondError(w, err)
		return
	}

	reconciler := inventory.NewReconciler(h.Metadata, inventory.ReconcilerConfig{})
	report, err := reconciler.Reconcile(table, rows)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Ledger.Save(ctx, table); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toReconcileResponse(report))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decodeProject(w http.ResponseWriter, r *http.Request) (*factory.Project, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "cannot read request body"})
		return nil, false
	}
	project, err := factory.ParseProject(body)
	if err != nil {
		respondError(w, err)
		return nil, false
	}
	return project, true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, inventory.ErrProjectNotFound):
		status = http.StatusNotFound
	case forecast.IsFatal(err):
		status = http.StatusBadRequest
	}
	respondJSON(w, status, ErrorResponse{Error: err.Error()})
}
