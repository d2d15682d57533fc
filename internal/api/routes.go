package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Change ranking routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/changes", handler.GetAllChanges).Methods("GET")
	api.HandleFunc("/changes/{etf}", handler.GetChangesForETF).Methods("GET")
	api.HandleFunc("/etfs", handler.GetETFs).Methods("GET")

	return r
}
