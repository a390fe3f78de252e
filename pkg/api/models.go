package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/sbp-engine/pkg/service"
)

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateGraphRequest uploads an edge list.
type CreateGraphRequest struct {
	Name        string   `json:"name"`
	NumVertices int      `json:"numVertices"`
	Edges       [][2]int `json:"edges"`
}

// CreateGraphResponse returns the stored graph.
type CreateGraphResponse struct {
	GraphID string               `json:"graphId"`
	Graph   *service.GraphRecord `json:"graph"`
}

// StartClusteringRequest starts a clustering job on a stored graph.
type StartClusteringRequest struct {
	Algorithm  service.AlgorithmType `json:"algorithm"`
	Parameters service.JobParameters `json:"parameters"`
}

// StartClusteringResponse returns the queued job.
type StartClusteringResponse struct {
	JobID string       `json:"jobId"`
	Job   *service.Job `json:"job"`
}

// writeSuccess writes a successful JSON response.
func writeSuccess(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

// writeError writes an error JSON response.
func writeError(w http.ResponseWriter, statusCode int, message string, err error) {
	response := APIResponse{Success: false, Message: message}
	if err != nil {
		response.Error = err.Error()
	}
	writeJSON(w, statusCode, response)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Int("status_code", statusCode).Msg("Failed to encode JSON response")
	}
}
