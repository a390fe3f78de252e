package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes registers all API routes under /api/v1.
func SetupRoutes(router *mux.Router, handlers *Handlers) {
	api := router.PathPrefix("/api/v1").Subrouter()

	graphs := api.PathPrefix("/graphs").Subrouter()
	graphs.HandleFunc("", handlers.ListGraphs).Methods("GET")
	graphs.HandleFunc("", handlers.CreateGraph).Methods("POST")
	graphs.HandleFunc("/{graphId}", handlers.GetGraph).Methods("GET")
	graphs.HandleFunc("/{graphId}", handlers.DeleteGraph).Methods("DELETE")

	clustering := graphs.PathPrefix("/{graphId}/clustering").Subrouter()
	clustering.HandleFunc("", handlers.StartClustering).Methods("POST")
	clustering.HandleFunc("", handlers.ListClusteringJobs).Methods("GET")

	jobs := api.PathPrefix("/jobs").Subrouter()
	jobs.HandleFunc("/{jobId}", handlers.GetJob).Methods("GET")

	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	api.HandleFunc("/algorithms", handlers.ListAlgorithms).Methods("GET")
}
