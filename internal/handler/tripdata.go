package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/ingest"
	"github.com/pkordes/trip-ledger/backend/internal/migrate"
)

// GetReport handles GET /trips/{tripID}/report.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}

	report, err := s.data.Report(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// MigrationRequest is the JSON body for POST /trips/{tripID}/migrations.
type MigrationRequest struct {
	Mode string `json:"mode"`
}

// RunMigration handles POST /trips/{tripID}/migrations.
func (s *Server) RunMigration(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}

	var req MigrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	result, err := s.data.Migrate(r.Context(), tripID, migrate.Mode(req.Mode))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListOrphans handles GET /trips/{tripID}/orphans.
func (s *Server) ListOrphans(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}

	proposals, err := s.data.OrphanProposals(r.Context(), tripID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": proposals})
}

// ReassignRequest is the JSON body for POST /trips/{tripID}/orphans/reassign.
type ReassignRequest struct {
	CostIDs             []string `json:"cost_ids"`
	TargetDestinationID string   `json:"target_destination_id"`
}

// ReassignOrphans handles POST /trips/{tripID}/orphans/reassign.
func (s *Server) ReassignOrphans(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}

	var req ReassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	if len(req.CostIDs) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "cost_ids is required")
		return
	}

	if err := s.data.ReassignCosts(r.Context(), tripID, req.CostIDs, req.TargetDestinationID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDestinationCosts handles GET /trips/{tripID}/destinations/{destinationID}/costs.
func (s *Server) GetDestinationCosts(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	destinationID := chi.URLParam(r, "destinationID")

	result, err := s.data.DestinationCosts(r.Context(), tripID, destinationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CostsRequest is the JSON body for PUT .../destinations/{destinationID}/costs.
// Cost records are accepted in their raw wire shape so historical field
// spellings keep working; ingest normalizes them before the service sees them.
type CostsRequest struct {
	Costs []ingest.RawCost `json:"costs"`
}

// PutDestinationCosts handles PUT /trips/{tripID}/destinations/{destinationID}/costs.
// It replaces the destination's full cost list.
func (s *Server) PutDestinationCosts(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	destinationID := chi.URLParam(r, "destinationID")

	var req CostsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	costs := make([]domain.Cost, len(req.Costs))
	for i, rc := range req.Costs {
		costs[i] = ingest.Cost(rc)
	}

	if err := s.data.SaveDestinationCosts(r.Context(), tripID, destinationID, costs); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDestination handles DELETE /trips/{tripID}/destinations/{destinationID}.
// The ?costs= query parameter selects the cascade strategy (delete, unassign,
// or reassign; default delete); reassign additionally needs ?reassignTo=.
func (s *Server) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	destinationID := chi.URLParam(r, "destinationID")

	strategy := domain.CascadeStrategy(r.URL.Query().Get("costs"))
	if strategy == "" {
		strategy = domain.CascadeDelete
	}
	reassignTo := r.URL.Query().Get("reassignTo")

	if err := s.data.DeleteDestination(r.Context(), tripID, destinationID, strategy, reassignTo); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
