package sbp

import (
	"math"
	"math/rand"
)

// TopDown grows a partition from one block by repeatedly splitting the
// block whose best two-way split lowers the description length the most,
// refining with MCMC after every committed split. It stops when the
// target block count is reached or no block yields an acceptable split.
func TopDown(g *Graph, targetClusters int, cfg *Config) *BlockModel {
	e := newEngine(g, cfg)

	bm := NewOneBlock(g)

	e.log.Info().
		Int("vertices", g.VertexCount()).
		Int("edges", g.EdgeCount()).
		Int("target_clusters", targetClusters).
		Msg("Starting top-down SBP")

	for bm.NumClusters < targetClusters {
		subgraphs := e.extractSubgraphs(bm)

		type splitCandidate struct {
			deltaH     float64
			clusterIdx int
			split      *BlockModel
		}
		var candidates []splitCandidate

		for i := 0; i < bm.NumClusters; i++ {
			if subgraphs[i].Graph.VertexCount() < binarySplitCount {
				continue
			}

			single := NewOneBlock(subgraphs[i].Graph)
			hBefore := ComputeH(single)

			split := e.connectivitySnowballSplit(&subgraphs[i], e.cfg.ProposalsPerSplit())
			hAfter := ComputeH(split)

			// Permissive window: small-block H estimates are noisy, so
			// accept anything within 5% of h_before.
			tolerance := splitToleranceFactor * math.Abs(hBefore)
			if hAfter < hBefore+tolerance {
				candidates = append(candidates, splitCandidate{
					deltaH:     hAfter - hBefore,
					clusterIdx: i,
					split:      split,
				})
			}
		}

		if len(candidates) == 0 {
			e.log.Info().Int("clusters", bm.NumClusters).Msg("No acceptable split, stopping")
			break
		}

		// Candidates are gathered in block order, so strict < keeps the
		// lowest block id on ties.
		best := &candidates[0]
		for i := 1; i < len(candidates); i++ {
			if candidates[i].deltaH < best.deltaH {
				best = &candidates[i]
			}
		}

		sub := &subgraphs[best.clusterIdx]
		newClusterID := bm.NumClusters

		bm.NumClusters++
		bm.B = newEdgeMatrix(bm.NumClusters)
		bm.ClusterSizes = make([]int, bm.NumClusters)
		for i := 0; i < sub.Graph.VertexCount(); i++ {
			if best.split.Assignment[i] == 1 {
				bm.Assignment[sub.GlobalVertex[i]] = newClusterID
			}
		}
		bm.UpdateMatrix()

		e.refine(bm, mcmcRefinementMultiplier*g.VertexCount())

		if e.cfg.EnableProgress() {
			e.log.Info().
				Int("clusters", bm.NumClusters).
				Int("split_block", best.clusterIdx).
				Float64("delta_h", best.deltaH).
				Float64("h", ComputeH(bm)).
				Msg("Split committed")
		}
	}

	e.log.Info().
		Int("clusters_found", bm.NumClusters).
		Float64("h", ComputeH(bm)).
		Msg("Top-down SBP completed")

	return bm
}

// extractSubgraphs materialises the induced subgraph of every block,
// in parallel over blocks. An edge survives iff both endpoints stay in
// the same block, so no edge appears in two subgraphs.
func (e *engine) extractSubgraphs(bm *BlockModel) []Subgraph {
	subgraphs := make([]Subgraph, bm.NumClusters)

	members := make([][]int, bm.NumClusters)
	for v, c := range bm.Assignment {
		if c < 0 || c >= bm.NumClusters {
			continue
		}
		members[c] = append(members[c], v)
	}

	parallelFor(e.cfg.NumWorkers(), bm.NumClusters, func(_, cluster int) {
		sub := &subgraphs[cluster]
		sub.GlobalVertex = members[cluster]
		sub.Graph = NewGraph(len(sub.GlobalVertex))

		globalToLocal := make(map[int]int, len(sub.GlobalVertex))
		for local, global := range sub.GlobalVertex {
			globalToLocal[global] = local
		}

		for local, global := range sub.GlobalVertex {
			for _, neighbour := range bm.Graph.AdjacencyList[global] {
				if neighbour < 0 || neighbour >= len(bm.Assignment) {
					continue
				}
				if bm.Assignment[neighbour] == cluster {
					sub.Graph.AdjacencyList[local] = append(
						sub.Graph.AdjacencyList[local], globalToLocal[neighbour])
				}
			}
		}
	})

	return subgraphs
}

// connectivitySnowballSplit generates proposal two-way splits of the
// subgraph and returns the one with the smallest H. Each proposal seeds
// two random vertices, shuffles the rest and assigns each vertex to the
// side the majority of its already-assigned neighbours are on, flipping
// a fair coin on ties. Proposals run in parallel; each worker keeps a
// local best and the locals are reduced in worker order afterwards.
func (e *engine) connectivitySnowballSplit(sub *Subgraph, proposals int) *BlockModel {
	vertexCount := sub.Graph.VertexCount()

	if vertexCount < binarySplitCount {
		return NewOneBlock(sub.Graph)
	}

	workers := e.cfg.NumWorkers()
	if workers > proposals {
		workers = proposals
	}
	rngs := e.workerRNGs(workers)

	localBest := make([]*BlockModel, workers)
	localBestH := make([]float64, workers)
	for w := range localBestH {
		localBestH[w] = math.Inf(1)
	}

	parallelFor(workers, proposals, func(worker, _ int) {
		rng := rngs[worker]

		assignment := e.snowballAssignment(sub.Graph, rng)

		current := NewBlockModel(sub.Graph, binarySplitCount)
		current.Assignment = assignment
		current.UpdateMatrix()

		h := ComputeH(current)
		if h < localBestH[worker] {
			localBestH[worker] = h
			localBest[worker] = current
		}
	})

	best := localBest[0]
	bestH := localBestH[0]
	for w := 1; w < workers; w++ {
		if localBestH[w] < bestH {
			bestH = localBestH[w]
			best = localBest[w]
		}
	}
	if best == nil {
		return NewOneBlock(sub.Graph)
	}
	return best
}

// snowballAssignment two-colours the graph by seed-and-grow majority vote.
func (e *engine) snowballAssignment(g *Graph, rng *rand.Rand) []int {
	vertexCount := g.VertexCount()

	seed1 := rng.Intn(vertexCount)
	seed2 := rng.Intn(vertexCount)
	for seed2 == seed1 {
		seed2 = rng.Intn(vertexCount)
	}

	assignment := make([]int, vertexCount)
	for i := range assignment {
		assignment[i] = NullCluster
	}
	assignment[seed1] = 0
	assignment[seed2] = 1

	unassigned := make([]int, 0, vertexCount-2)
	for i := 0; i < vertexCount; i++ {
		if assignment[i] == NullCluster {
			unassigned = append(unassigned, i)
		}
	}
	rng.Shuffle(len(unassigned), func(i, j int) {
		unassigned[i], unassigned[j] = unassigned[j], unassigned[i]
	})

	for _, vertex := range unassigned {
		score0, score1 := 0, 0
		for _, neighbour := range g.AdjacencyList[vertex] {
			switch assignment[neighbour] {
			case 0:
				score0++
			case 1:
				score1++
			}
		}

		switch {
		case score0 > score1:
			assignment[vertex] = 0
		case score1 > score0:
			assignment[vertex] = 1
		default:
			assignment[vertex] = rng.Intn(2)
		}
	}

	return assignment
}
