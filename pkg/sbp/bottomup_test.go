package sbp

import (
	"math/rand"
	"testing"
)

func TestRenumberBlocks(t *testing.T) {
	g := pathGraph(6)
	bm := NewBlockModel(g, 5)
	// Use only ids 0, 2 and 4; renumbering must compact to 0, 1, 2.
	ids := []int{0, 0, 2, 2, 4, 4}
	copy(bm.Assignment, ids)
	bm.UpdateMatrix()

	renumberBlocks(bm)

	if bm.NumClusters != 3 {
		t.Fatalf("expected 3 clusters after renumbering, got %d", bm.NumClusters)
	}
	want := []int{0, 0, 1, 1, 2, 2}
	for v := range want {
		if bm.Assignment[v] != want[v] {
			t.Fatalf("vertex %d renumbered to %d, want %d", v, bm.Assignment[v], want[v])
		}
	}
	checkInvariants(t, bm)
}

func TestGatherMergeProposals(t *testing.T) {
	g := twoCliqueGraph(3)
	bm := NewSingleton(g)
	e := newEngine(g, testConfig(1, 1))

	proposals := e.gatherMergeProposals(bm)

	if len(proposals) == 0 {
		t.Fatal("expected merge proposals between connected singleton blocks")
	}
	for _, p := range proposals {
		if p.deltaH >= 0 {
			t.Fatalf("proposal (%d, %d) has non-negative delta %v", p.c1, p.c2, p.deltaH)
		}
		// Only connected pairs may be proposed; the cliques are disjoint,
		// so both endpoints lie in the same clique.
		if (p.c1 < 3) != (p.c2 < 3) {
			t.Fatalf("proposal (%d, %d) crosses disconnected cliques", p.c1, p.c2)
		}
	}
}

func TestBottomUp(t *testing.T) {
	t.Run("RecoversTwoCliques", func(t *testing.T) {
		g := twoCliqueGraph(10)
		bm := BottomUp(g, 2, testConfig(13, 1))

		if bm.NumClusters != 2 {
			t.Fatalf("expected 2 clusters, got %d", bm.NumClusters)
		}
		for offset := 0; offset < 20; offset += 10 {
			side := bm.Assignment[offset]
			for v := offset; v < offset+10; v++ {
				if bm.Assignment[v] != side {
					t.Fatalf("clique starting at %d split across blocks: %v",
						offset, bm.Assignment)
				}
			}
		}
		if bm.Assignment[0] == bm.Assignment[10] {
			t.Fatal("both cliques merged into one block")
		}
		checkInvariants(t, bm)
	})

	t.Run("EmptyGraphReachesTarget", func(t *testing.T) {
		for target := 1; target <= 5; target++ {
			g := NewGraph(5)
			bm := BottomUp(g, target, testConfig(int64(target), 1))
			if bm.NumClusters != target {
				t.Fatalf("target %d: got %d clusters", target, bm.NumClusters)
			}
			checkInvariants(t, bm)
		}
	})

	t.Run("NeverUndershootsTarget", func(t *testing.T) {
		rng := rand.New(rand.NewSource(17))
		for trial := 0; trial < 5; trial++ {
			n := 15 + rng.Intn(20)
			g := randomGraph(n, 0.2, rng)
			target := 2 + rng.Intn(4)

			bm := BottomUp(g, target, testConfig(int64(trial), 1))
			if bm.NumClusters < target || bm.NumClusters > n {
				t.Fatalf("trial %d: cluster count %d outside [%d, %d]",
					trial, bm.NumClusters, target, n)
			}
			checkInvariants(t, bm)
		}
	})

	t.Run("TargetEqualsVertexCount", func(t *testing.T) {
		g := pathGraph(6)
		bm := BottomUp(g, 6, testConfig(1, 1))
		if bm.NumClusters != 6 {
			t.Fatalf("expected 6 singleton clusters, got %d", bm.NumClusters)
		}
	})
}
