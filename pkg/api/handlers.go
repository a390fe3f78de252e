package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/sbp-engine/pkg/service"
)

// Handlers contains the HTTP request handlers.
type Handlers struct {
	graphs *service.GraphStore
	jobs   *service.JobService
}

// NewHandlers creates the API handlers.
func NewHandlers(graphs *service.GraphStore, jobs *service.JobService) *Handlers {
	return &Handlers{graphs: graphs, jobs: jobs}
}

// CreateGraph stores an uploaded edge list.
func (h *Handlers) CreateGraph(w http.ResponseWriter, r *http.Request) {
	var req CreateGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		req.Name = "Unnamed Graph"
	}

	record, err := h.graphs.Add(req.Name, req.NumVertices, req.Edges)
	if err != nil {
		log.Error().Err(err).Msg("Graph upload failed")
		writeError(w, http.StatusBadRequest, "Graph upload failed", err)
		return
	}

	writeSuccess(w, "Graph stored successfully", CreateGraphResponse{
		GraphID: record.ID,
		Graph:   record,
	})
}

// ListGraphs lists all stored graphs.
func (h *Handlers) ListGraphs(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, "Graphs retrieved successfully", h.graphs.List())
}

// GetGraph retrieves a stored graph.
func (h *Handlers) GetGraph(w http.ResponseWriter, r *http.Request) {
	graphID := mux.Vars(r)["graphId"]

	record, err := h.graphs.Get(graphID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Graph not found", err)
		return
	}
	writeSuccess(w, "Graph retrieved successfully", record)
}

// DeleteGraph removes a stored graph.
func (h *Handlers) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	graphID := mux.Vars(r)["graphId"]

	if err := h.graphs.Delete(graphID); err != nil {
		writeError(w, http.StatusNotFound, "Graph not found", err)
		return
	}
	writeSuccess(w, "Graph deleted successfully", nil)
}

// StartClustering queues a clustering job on a stored graph.
func (h *Handlers) StartClustering(w http.ResponseWriter, r *http.Request) {
	graphID := mux.Vars(r)["graphId"]

	var req StartClusteringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	job, err := h.jobs.Submit(graphID, req.Algorithm, req.Parameters)
	if err != nil {
		log.Error().Str("graph_id", graphID).Err(err).Msg("Failed to start clustering job")
		writeError(w, http.StatusBadRequest, "Failed to start clustering", err)
		return
	}

	writeSuccess(w, "Clustering job started", StartClusteringResponse{
		JobID: job.ID,
		Job:   job,
	})
}

// ListClusteringJobs lists the jobs of a graph.
func (h *Handlers) ListClusteringJobs(w http.ResponseWriter, r *http.Request) {
	graphID := mux.Vars(r)["graphId"]
	writeSuccess(w, "Jobs retrieved successfully", h.jobs.List(graphID))
}

// GetJob returns job status and, once completed, its result.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	job, err := h.jobs.Get(jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Job not found", err)
		return
	}
	writeSuccess(w, "Job retrieved successfully", job)
}

// HealthCheck returns server health status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, "Service is healthy", map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ListAlgorithms lists the available inference strategies.
func (h *Handlers) ListAlgorithms(w http.ResponseWriter, r *http.Request) {
	algorithms := []map[string]interface{}{
		{
			"name":        string(service.AlgorithmTopDown),
			"description": "Divisive SBP: split blocks top-down under the MDL objective",
			"parameters": []map[string]interface{}{
				{"name": "targetClusters", "type": "integer", "required": true},
				{"name": "proposalsPerSplit", "type": "integer", "default": 50},
				{"name": "numWorkers", "type": "integer", "default": 0, "description": "0 uses all CPUs"},
			},
		},
		{
			"name":        string(service.AlgorithmBottomUp),
			"description": "Agglomerative SBP: merge blocks bottom-up under the MDL objective",
			"parameters": []map[string]interface{}{
				{"name": "targetClusters", "type": "integer", "required": true},
				{"name": "numWorkers", "type": "integer", "default": 0, "description": "0 uses all CPUs"},
			},
		},
	}
	writeSuccess(w, "Algorithms retrieved successfully", algorithms)
}
