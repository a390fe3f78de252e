package sbp

import (
	"math/rand"
	"testing"
)

// pathGraph builds the N-vertex path 0-1-...-(n-1).
func pathGraph(n int) *Graph {
	g := NewGraph(n)
	for i := 0; i+1 < n; i++ {
		g.AddEdge(i, i+1)
	}
	return g
}

// twoCliqueGraph builds two disjoint cliques of the given size.
func twoCliqueGraph(cliqueSize int) *Graph {
	g := NewGraph(2 * cliqueSize)
	for _, offset := range []int{0, cliqueSize} {
		for i := offset; i < offset+cliqueSize; i++ {
			for j := i + 1; j < offset+cliqueSize; j++ {
				g.AddEdge(i, j)
			}
		}
	}
	return g
}

// randomGraph builds an Erdos-Renyi style graph from a seeded rng.
func randomGraph(n int, p float64, rng *rand.Rand) *Graph {
	g := NewGraph(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < p {
				g.AddEdge(i, j)
			}
		}
	}
	return g
}

// randomModel assigns every vertex to a uniform random block.
func randomModel(g *Graph, k int, rng *rand.Rand) *BlockModel {
	bm := NewBlockModel(g, k)
	for i := range bm.Assignment {
		bm.Assignment[i] = rng.Intn(k)
	}
	bm.UpdateMatrix()
	return bm
}

// checkInvariants asserts the structural invariants that must hold after
// every public mutation: symmetry of B, half-edge conservation, and
// partition conservation.
func checkInvariants(t *testing.T, bm *BlockModel) {
	t.Helper()

	totalEdges := 0
	for r := 0; r < bm.NumClusters; r++ {
		for s := 0; s < bm.NumClusters; s++ {
			if bm.B[r][s] < 0 {
				t.Fatalf("negative edge count B[%d][%d] = %d", r, s, bm.B[r][s])
			}
			if bm.B[r][s] != bm.B[s][r] {
				t.Fatalf("B not symmetric: B[%d][%d]=%d, B[%d][%d]=%d",
					r, s, bm.B[r][s], s, r, bm.B[s][r])
			}
			totalEdges += bm.B[r][s]
		}
	}
	if want := 2 * bm.Graph.EdgeCount(); totalEdges != want {
		t.Fatalf("edge count not conserved: sum(B) = %d, want %d", totalEdges, want)
	}

	totalVertices := 0
	for _, size := range bm.ClusterSizes {
		if size < 0 {
			t.Fatalf("negative cluster size %d", size)
		}
		totalVertices += size
	}
	if totalVertices != bm.Graph.VertexCount() {
		t.Fatalf("partition not conserved: sum(sizes) = %d, want %d",
			totalVertices, bm.Graph.VertexCount())
	}
}

func TestUpdateMatrix(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("InvariantsOnRandomModels", func(t *testing.T) {
		for trial := 0; trial < 20; trial++ {
			g := randomGraph(30, 0.2, rng)
			bm := randomModel(g, 2+rng.Intn(5), rng)
			checkInvariants(t, bm)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		g := randomGraph(25, 0.3, rng)
		bm := randomModel(g, 4, rng)

		before := bm.Clone()
		bm.UpdateMatrix()

		for r := range bm.B {
			for s := range bm.B[r] {
				if bm.B[r][s] != before.B[r][s] {
					t.Fatalf("B[%d][%d] changed on repeated update: %d -> %d",
						r, s, before.B[r][s], bm.B[r][s])
				}
			}
		}
		for c, size := range bm.ClusterSizes {
			if size != before.ClusterSizes[c] {
				t.Fatalf("cluster size %d changed on repeated update", c)
			}
		}
	})

	t.Run("NoOpWithoutGraph", func(t *testing.T) {
		bm := &BlockModel{}
		bm.UpdateMatrix() // must not panic
	})
}

func TestMoveVertex(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	t.Run("MatchesFullRecompute", func(t *testing.T) {
		for trial := 0; trial < 20; trial++ {
			g := randomGraph(30, 0.25, rng)
			k := 2 + rng.Intn(4)
			bm := randomModel(g, k, rng)

			for move := 0; move < 50; move++ {
				v := rng.Intn(g.VertexCount())
				newCluster := rng.Intn(k)
				if newCluster == bm.Assignment[v] {
					continue
				}
				bm.MoveVertex(v, newCluster)

				fresh := NewBlockModel(g, k)
				copy(fresh.Assignment, bm.Assignment)
				fresh.UpdateMatrix()

				for r := 0; r < k; r++ {
					for s := 0; s < k; s++ {
						if bm.B[r][s] != fresh.B[r][s] {
							t.Fatalf("incremental B[%d][%d]=%d diverged from recompute %d",
								r, s, bm.B[r][s], fresh.B[r][s])
						}
					}
					if bm.ClusterSizes[r] != fresh.ClusterSizes[r] {
						t.Fatalf("cluster size %d diverged", r)
					}
				}
			}
		}
	})

	t.Run("InvariantsAfterMoveSequences", func(t *testing.T) {
		g := randomGraph(40, 0.15, rng)
		bm := randomModel(g, 5, rng)

		for move := 0; move < 200; move++ {
			bm.MoveVertex(rng.Intn(g.VertexCount()), rng.Intn(5))
			checkInvariants(t, bm)
		}
	})

	t.Run("SameClusterIsNoOp", func(t *testing.T) {
		g := pathGraph(5)
		bm := NewOneBlock(g)
		bm.MoveVertex(2, 0)
		checkInvariants(t, bm)
	})
}

func TestConstructors(t *testing.T) {
	g := pathGraph(6)

	t.Run("OneBlock", func(t *testing.T) {
		bm := NewOneBlock(g)
		if bm.NumClusters != 1 {
			t.Fatalf("expected 1 cluster, got %d", bm.NumClusters)
		}
		if bm.ClusterSizes[0] != 6 {
			t.Fatalf("expected all 6 vertices in block 0, got %d", bm.ClusterSizes[0])
		}
		if bm.B[0][0] != 2*g.EdgeCount() {
			t.Fatalf("expected B[0][0] = %d, got %d", 2*g.EdgeCount(), bm.B[0][0])
		}
	})

	t.Run("Singleton", func(t *testing.T) {
		bm := NewSingleton(g)
		if bm.NumClusters != 6 {
			t.Fatalf("expected 6 clusters, got %d", bm.NumClusters)
		}
		for c, size := range bm.ClusterSizes {
			if size != 1 {
				t.Fatalf("cluster %d has size %d, want 1", c, size)
			}
		}
		checkInvariants(t, bm)
	})

	t.Run("Unassigned", func(t *testing.T) {
		bm := NewBlockModel(g, 3)
		for v, c := range bm.Assignment {
			if c != NullCluster {
				t.Fatalf("vertex %d assigned to %d before initialisation", v, c)
			}
		}
	})
}

func TestClone(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := randomGraph(20, 0.3, rng)
	bm := randomModel(g, 3, rng)

	clone := bm.Clone()
	clone.MoveVertex(0, (bm.Assignment[0]+1)%3)

	if clone.Assignment[0] == bm.Assignment[0] {
		t.Fatal("clone shares assignment storage with original")
	}
	checkInvariants(t, bm)
	checkInvariants(t, clone)
}
