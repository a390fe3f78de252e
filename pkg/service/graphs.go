// Package service holds the in-memory stores behind the HTTP API: an
// uploaded-graph store and an asynchronous clustering job service.
package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/sbp-engine/pkg/sbp"
)

// GraphRecord is an uploaded graph with its metadata.
type GraphRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	NumVertices int       `json:"numVertices"`
	NumEdges    int       `json:"numEdges"`
	CreatedAt   time.Time `json:"createdAt"`

	graph *sbp.Graph
}

// Graph exposes the stored graph for the engine.
func (r *GraphRecord) Graph() *sbp.Graph { return r.graph }

// GraphStore keeps uploaded graphs in memory.
type GraphStore struct {
	graphs map[string]*GraphRecord
	mutex  sync.RWMutex
}

// NewGraphStore creates an empty store.
func NewGraphStore() *GraphStore {
	return &GraphStore{graphs: make(map[string]*GraphRecord)}
}

// Add builds a graph from an edge list and stores it under a fresh id.
func (s *GraphStore) Add(name string, numVertices int, edges [][2]int) (*GraphRecord, error) {
	if numVertices <= 0 {
		return nil, fmt.Errorf("graph must have a positive number of vertices")
	}

	g := sbp.NewGraph(numVertices)
	for _, edge := range edges {
		if err := g.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("invalid edge [%d, %d]: %w", edge[0], edge[1], err)
		}
	}

	record := &GraphRecord{
		ID:          uuid.New().String(),
		Name:        name,
		NumVertices: g.VertexCount(),
		NumEdges:    g.EdgeCount(),
		CreatedAt:   time.Now(),
		graph:       g,
	}

	s.mutex.Lock()
	s.graphs[record.ID] = record
	s.mutex.Unlock()

	log.Info().
		Str("graph_id", record.ID).
		Str("name", name).
		Int("vertices", record.NumVertices).
		Int("edges", record.NumEdges).
		Msg("Graph stored")

	return record, nil
}

// Get retrieves a graph by id.
func (s *GraphStore) Get(graphID string) (*GraphRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, exists := s.graphs[graphID]
	if !exists {
		return nil, fmt.Errorf("graph not found: %s", graphID)
	}
	return record, nil
}

// List returns all stored graphs.
func (s *GraphStore) List() []*GraphRecord {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	records := make([]*GraphRecord, 0, len(s.graphs))
	for _, record := range s.graphs {
		records = append(records, record)
	}
	return records
}

// Delete removes a graph by id.
func (s *GraphStore) Delete(graphID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.graphs[graphID]; !exists {
		return fmt.Errorf("graph not found: %s", graphID)
	}
	delete(s.graphs, graphID)
	return nil
}
