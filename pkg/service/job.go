package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/sbp-engine/pkg/sbp"
)

// AlgorithmType selects the inference strategy for a job.
type AlgorithmType string

const (
	AlgorithmTopDown  AlgorithmType = "topdown"
	AlgorithmBottomUp AlgorithmType = "bottomup"
)

// JobStatus is the lifecycle state of a clustering job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobParameters are the caller-supplied engine inputs.
type JobParameters struct {
	TargetClusters    int `json:"targetClusters"`
	ProposalsPerSplit int `json:"proposalsPerSplit,omitempty"`
	NumWorkers        int `json:"numWorkers,omitempty"`
}

// JobResult summarises a completed job.
type JobResult struct {
	ClustersFound    int     `json:"clustersFound"`
	MDL              float64 `json:"mdl"`
	MDLNormalized    float64 `json:"mdlNormalized"`
	Assignment       []int   `json:"assignment"`
	ProcessingTimeMS int64   `json:"processingTimeMs"`
	MCMCTimeMS       int64   `json:"mcmcTimeMs"`
}

// Job is a clustering request tracked through its lifecycle.
type Job struct {
	ID          string        `json:"id"`
	GraphID     string        `json:"graphId"`
	Algorithm   AlgorithmType `json:"algorithm"`
	Parameters  JobParameters `json:"parameters"`
	Status      JobStatus     `json:"status"`
	Error       string        `json:"error,omitempty"`
	Result      *JobResult    `json:"result,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	StartedAt   *time.Time    `json:"startedAt,omitempty"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// JobService runs clustering jobs in the background, bounded by a
// worker-slot semaphore.
type JobService struct {
	jobs    map[string]*Job
	workers chan struct{}
	graphs  *GraphStore
	mutex   sync.RWMutex
}

// NewJobService creates a job service over the given graph store.
func NewJobService(graphs *GraphStore, maxConcurrent int) *JobService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &JobService{
		jobs:    make(map[string]*Job),
		workers: make(chan struct{}, maxConcurrent),
		graphs:  graphs,
	}
}

// Submit validates, queues and asynchronously processes a new job.
func (s *JobService) Submit(graphID string, algorithm AlgorithmType, params JobParameters) (*Job, error) {
	if algorithm != AlgorithmTopDown && algorithm != AlgorithmBottomUp {
		return nil, fmt.Errorf("unknown algorithm: %s", algorithm)
	}

	record, err := s.graphs.Get(graphID)
	if err != nil {
		return nil, err
	}
	if params.TargetClusters < 1 {
		return nil, fmt.Errorf("targetClusters must be positive, got %d", params.TargetClusters)
	}
	if params.TargetClusters > record.NumVertices {
		return nil, fmt.Errorf("targetClusters %d exceeds vertex count %d",
			params.TargetClusters, record.NumVertices)
	}

	job := &Job{
		ID:         uuid.New().String(),
		GraphID:    graphID,
		Algorithm:  algorithm,
		Parameters: params,
		Status:     JobStatusQueued,
		CreatedAt:  time.Now(),
	}

	s.mutex.Lock()
	s.jobs[job.ID] = job
	s.mutex.Unlock()

	log.Info().
		Str("job_id", job.ID).
		Str("graph_id", graphID).
		Str("algorithm", string(algorithm)).
		Int("target_clusters", params.TargetClusters).
		Msg("Job submitted")

	go s.process(job.ID)

	snapshot := *job
	return &snapshot, nil
}

// Get retrieves a snapshot of a job by id. Snapshots are taken under
// the lock because the processing goroutine mutates the stored job.
func (s *JobService) Get(jobID string) (*Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	snapshot := *job
	return &snapshot, nil
}

// List returns snapshots of all jobs for a graph.
func (s *JobService) List(graphID string) []*Job {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var jobs []*Job
	for _, job := range s.jobs {
		if job.GraphID == graphID {
			snapshot := *job
			jobs = append(jobs, &snapshot)
		}
	}
	return jobs
}

// process runs a queued job once a worker slot is free.
func (s *JobService) process(jobID string) {
	s.workers <- struct{}{}
	defer func() { <-s.workers }()

	s.mutex.RLock()
	job, exists := s.jobs[jobID]
	s.mutex.RUnlock()
	if !exists {
		log.Error().Str("job_id", jobID).Msg("Job disappeared before processing")
		return
	}

	record, err := s.graphs.Get(job.GraphID)
	if err != nil {
		s.fail(jobID, err)
		return
	}

	started := time.Now()
	s.mutex.Lock()
	job.Status = JobStatusRunning
	job.StartedAt = &started
	s.mutex.Unlock()

	cfg := sbp.NewConfig()
	cfg.Set("logging.level", "warn")
	if job.Parameters.ProposalsPerSplit > 0 {
		cfg.Set("algorithm.proposals_per_split", job.Parameters.ProposalsPerSplit)
	}
	if job.Parameters.NumWorkers > 0 {
		cfg.Set("performance.num_workers", job.Parameters.NumWorkers)
	}

	var bm *sbp.BlockModel
	if job.Algorithm == AlgorithmTopDown {
		bm = sbp.TopDown(record.Graph(), job.Parameters.TargetClusters, cfg)
	} else {
		bm = sbp.BottomUp(record.Graph(), job.Parameters.TargetClusters, cfg)
	}
	elapsed := time.Since(started)

	result := &JobResult{
		ClustersFound:    bm.NumClusters,
		MDL:              sbp.ComputeH(bm),
		MDLNormalized:    sbp.ComputeHNormalized(bm),
		Assignment:       bm.Assignment,
		ProcessingTimeMS: elapsed.Milliseconds(),
		MCMCTimeMS:       bm.MCMCTime.Milliseconds(),
	}

	completed := time.Now()
	s.mutex.Lock()
	job.Status = JobStatusCompleted
	job.Result = result
	job.CompletedAt = &completed
	s.mutex.Unlock()

	log.Info().
		Str("job_id", jobID).
		Int("clusters_found", result.ClustersFound).
		Float64("mdl", result.MDL).
		Int64("processing_time_ms", result.ProcessingTimeMS).
		Msg("Job completed")
}

func (s *JobService) fail(jobID string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return
	}

	job.Status = JobStatusFailed
	job.Error = err.Error()
	now := time.Now()
	job.CompletedAt = &now

	log.Error().Str("job_id", jobID).Err(err).Msg("Job failed")
}
