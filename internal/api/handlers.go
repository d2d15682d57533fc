package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/ranking"
)

// Handler serves the latest ranked change set. It reads only complete
// snapshots from the holder and never mutates them.
type Handler struct {
	holder *ranking.Holder
}

// NewHandler creates a new Handler
func NewHandler(holder *ranking.Holder) *Handler {
	return &Handler{holder: holder}
}

type changesResponse struct {
	ComputedAt time.Time          `json:"computed_at"`
	Changes    []models.ChangeRow `json:"changes"`
}

// GetAllChanges handles GET /changes
func (h *Handler) GetAllChanges(w http.ResponseWriter, r *http.Request) {
	snapshot := h.holder.Current()
	respondJSON(w, http.StatusOK, changesResponse{
		ComputedAt: snapshot.ComputedAt,
		Changes:    orEmpty(snapshot.Rows),
	})
}

// GetChangesForETF handles GET /changes/{etf}
func (h *Handler) GetChangesForETF(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	snapshot := h.holder.Current()

	respondJSON(w, http.StatusOK, changesResponse{
		ComputedAt: snapshot.ComputedAt,
		Changes:    orEmpty(snapshot.ByETF(vars["etf"])),
	})
}

func orEmpty(rows []models.ChangeRow) []models.ChangeRow {
	if rows == nil {
		return []models.ChangeRow{}
	}
	return rows
}

// GetETFs handles GET /etfs
func (h *Handler) GetETFs(w http.ResponseWriter, r *http.Request) {
	symbols := h.holder.Current().ETFs()
	if symbols == nil {
		symbols = []string{}
	}
	respondJSON(w, http.StatusOK, symbols)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
