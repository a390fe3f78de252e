package sbp

import (
	"math"
	"sort"
)

type mergeProposal struct {
	c1, c2 int
	deltaH float64
}

// BottomUp shrinks a partition from one block per vertex down to the
// target by batch-merging block pairs with the best (most negative)
// merge deltas, renumbering, and refining with an adaptive MCMC budget.
// The driver never goes below the target.
func BottomUp(g *Graph, targetClusters int, cfg *Config) *BlockModel {
	e := newEngine(g, cfg)

	// Each vertex in its own block. Initial MCMC is skipped: with K = N
	// every H evaluation costs O(N^2).
	bm := NewSingleton(g)

	e.log.Info().
		Int("vertices", g.VertexCount()).
		Int("edges", g.EdgeCount()).
		Int("target_clusters", targetClusters).
		Msg("Starting bottom-up SBP")

	for bm.NumClusters > targetClusters {
		proposals := e.gatherMergeProposals(bm)
		forcedMerge := false

		// No beneficial merge but still above target: force the least-bad
		// pair, connected or not, so the driver keeps making progress.
		if len(proposals) == 0 && bm.NumClusters > targetClusters {
			if best, ok := bestMergeOverall(bm); ok {
				proposals = append(proposals, best)
				forcedMerge = true
			}
		}

		if len(proposals) == 0 {
			break
		}

		// Total order on (deltaH, c1, c2) keeps the committed outcome a
		// pure function of the proposal set.
		sort.Slice(proposals, func(i, j int) bool {
			if proposals[i].deltaH != proposals[j].deltaH {
				return proposals[i].deltaH < proposals[j].deltaH
			}
			if proposals[i].c1 != proposals[j].c1 {
				return proposals[i].c1 < proposals[j].c1
			}
			return proposals[i].c2 < proposals[j].c2
		})

		// Pick pairwise-disjoint merges, capped so the target is never
		// overshot.
		maxMerges := int(mergeBatchSizeFactor * float64(bm.NumClusters))
		if remaining := bm.NumClusters - targetClusters; maxMerges > remaining {
			maxMerges = remaining
		}

		used := make(map[int]bool)
		var batch []mergeProposal
		for _, proposal := range proposals {
			if used[proposal.c1] || used[proposal.c2] {
				continue
			}
			batch = append(batch, proposal)
			used[proposal.c1] = true
			used[proposal.c2] = true
			if len(batch) >= maxMerges {
				break
			}
		}

		for _, merge := range batch {
			for v, c := range bm.Assignment {
				if c == merge.c2 {
					bm.Assignment[v] = merge.c1
				}
			}
		}

		renumberBlocks(bm)

		if e.cfg.EnableProgress() {
			e.log.Debug().
				Int("clusters", bm.NumClusters).
				Int("merges", len(batch)).
				Bool("forced", forcedMerge).
				Msg("Merge batch committed")
		}

		// Adaptive refinement: skip while K is still huge, spend more
		// after risky forced merges and near the target.
		if bm.NumClusters <= g.VertexCount()/mcmcThresholdDivisor {
			iters := capIters(bottomUpMCMCMultiplier * bm.NumClusters)
			if forcedMerge {
				iters = capIters(forcedMergeMCMCMultiplier * bm.NumClusters)
			}
			if bm.NumClusters <= targetClusters+2 {
				iters = capIters(forcedMergeMCMCMultiplier * bm.NumClusters * 2)
			}
			e.refine(bm, iters)
		}

		if bm.NumClusters == targetClusters {
			break
		}
		if bm.NumClusters < targetClusters {
			// Merging can only lower K by the capped batch size, so this
			// is unreachable; bail out rather than loop forever.
			break
		}
	}

	if bm.NumClusters == targetClusters {
		e.refine(bm, capIters(forcedMergeMCMCMultiplier*bm.NumClusters))
	}

	e.log.Info().
		Int("clusters_found", bm.NumClusters).
		Float64("h", ComputeH(bm)).
		Msg("Bottom-up SBP completed")

	return bm
}

func capIters(iters int) int {
	if iters > maxBottomUpMCMCIters {
		return maxBottomUpMCMCIters
	}
	return iters
}

// gatherMergeProposals finds, for every non-empty block c, the connected
// partner with the smallest merge delta, and keeps it when the merge
// improves H. The scan is parallel over source blocks with per-worker
// accumulators.
func (e *engine) gatherMergeProposals(bm *BlockModel) []mergeProposal {
	workers := e.cfg.NumWorkers()
	locals := make([][]mergeProposal, workers)

	parallelFor(workers, bm.NumClusters, func(worker, c int) {
		if bm.ClusterSizes[c] == 0 {
			return
		}

		bestDeltaH := math.Inf(1)
		bestPartner := NullCluster

		for cPrime := 0; cPrime < bm.NumClusters; cPrime++ {
			if c == cPrime || bm.ClusterSizes[cPrime] == 0 {
				continue
			}
			if bm.B[c][cPrime] == 0 && bm.B[cPrime][c] == 0 {
				continue
			}

			deltaH := DeltaHMerge(bm, c, cPrime)
			if deltaH < bestDeltaH {
				bestDeltaH = deltaH
				bestPartner = cPrime
			}
		}

		if bestPartner != NullCluster && bestDeltaH < 0 {
			locals[worker] = append(locals[worker], mergeProposal{c, bestPartner, bestDeltaH})
		}
	})

	var proposals []mergeProposal
	for _, local := range locals {
		proposals = append(proposals, local...)
	}
	return proposals
}

// bestMergeOverall scans every ordered pair of non-empty blocks and
// returns the single best merge, even when it degrades H.
func bestMergeOverall(bm *BlockModel) (mergeProposal, bool) {
	best := mergeProposal{c1: NullCluster, c2: NullCluster, deltaH: math.Inf(1)}

	for c1 := 0; c1 < bm.NumClusters; c1++ {
		if bm.ClusterSizes[c1] == 0 {
			continue
		}
		for c2 := c1 + 1; c2 < bm.NumClusters; c2++ {
			if bm.ClusterSizes[c2] == 0 {
				continue
			}
			deltaH := DeltaHMerge(bm, c1, c2)
			if deltaH < best.deltaH {
				best = mergeProposal{c1, c2, deltaH}
			}
		}
	}

	return best, best.c1 != NullCluster && best.c2 != NullCluster
}

// renumberBlocks compacts the block id space to [0, K) after a merge
// batch, in ascending order of the surviving old ids, and rebuilds the
// matrix. The delta formulas assume a dense id space.
func renumberBlocks(bm *BlockModel) {
	usedIDs := make([]bool, bm.NumClusters)
	for _, c := range bm.Assignment {
		if c >= 0 && c < bm.NumClusters {
			usedIDs[c] = true
		}
	}

	oldToNew := make([]int, bm.NumClusters)
	nextID := 0
	for c, used := range usedIDs {
		if used {
			oldToNew[c] = nextID
			nextID++
		} else {
			oldToNew[c] = NullCluster
		}
	}

	for v, c := range bm.Assignment {
		if c >= 0 && c < len(oldToNew) {
			bm.Assignment[v] = oldToNew[c]
		}
	}

	bm.NumClusters = nextID
	bm.B = newEdgeMatrix(nextID)
	bm.ClusterSizes = make([]int, nextID)
	bm.UpdateMatrix()
}
