package sbp

import (
	"math/rand"
	"sync"
	"time"
)

// mcmcProposal draws a candidate block for vertex v, biased towards the
// blocks its neighbourhood is wired to: pick a uniform neighbour u, then
// draw a block with probability proportional to the edge counts of u's
// block row in B. Isolated vertices propose their own block.
func mcmcProposal(bm *BlockModel, v int, rng *rand.Rand) int {
	neighbours := bm.Graph.AdjacencyList[v]
	if len(neighbours) == 0 {
		return bm.Assignment[v]
	}

	u := neighbours[rng.Intn(len(neighbours))]
	if u < 0 || u >= len(bm.Assignment) {
		return bm.Assignment[v]
	}
	t := bm.Assignment[u]
	if t < 0 || t >= bm.NumClusters {
		return bm.Assignment[v]
	}

	totalWeight := 0
	for _, w := range bm.B[t] {
		if w > 0 {
			totalWeight += w
		}
	}
	if totalWeight == 0 {
		return t
	}

	target := rng.Intn(totalWeight)
	cumulative := 0
	for k, w := range bm.B[t] {
		if w <= 0 {
			continue
		}
		cumulative += w
		if target < cumulative {
			return k
		}
	}
	return t
}

// refine runs iterations of single-vertex move proposals, keeping only
// moves that strictly decrease H. The iterations are partitioned among
// the configured workers; each worker refines a private deep copy of the
// model and the copy with the smallest H wins (ties go to the lowest
// worker id, and the incoming state wins an exact tie). The winning
// assignment is adopted and the matrix recomputed.
func (e *engine) refine(bm *BlockModel, iterations int) {
	if bm.Graph == nil || bm.NumClusters <= 1 || iterations <= 0 {
		return
	}
	start := time.Now()
	defer func() { bm.MCMCTime += time.Since(start) }()

	workers := e.cfg.NumWorkers()
	if workers > iterations {
		workers = iterations
	}
	rngs := e.workerRNGs(workers)

	bestH := ComputeH(bm)
	bestAssignment := append([]int(nil), bm.Assignment...)
	bestWorker := -1
	var mu sync.Mutex

	share := iterations / workers
	remainder := iterations % workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		count := share
		if w < remainder {
			count++
		}
		go func(worker, count int) {
			defer wg.Done()

			rng := rngs[worker]
			local := bm.Clone()
			n := local.Graph.VertexCount()

			for iter := 0; iter < count; iter++ {
				v := rng.Intn(n)
				oldCluster := local.Assignment[v]

				newCluster := mcmcProposal(local, v, rng)
				if newCluster == oldCluster {
					continue
				}

				hBefore := ComputeH(local)
				local.MoveVertex(v, newCluster)
				hAfter := ComputeH(local)

				if hAfter >= hBefore {
					local.MoveVertex(v, oldCluster)
				}
			}

			localH := ComputeH(local)
			mu.Lock()
			if localH < bestH || (localH == bestH && bestWorker >= 0 && worker < bestWorker) {
				bestH = localH
				bestAssignment = local.Assignment
				bestWorker = worker
			}
			mu.Unlock()
		}(w, count)
	}
	wg.Wait()

	copy(bm.Assignment, bestAssignment)
	bm.UpdateMatrix()
}
