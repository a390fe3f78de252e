package metrics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNMI(t *testing.T) {
	t.Run("IdenticalLabellings", func(t *testing.T) {
		labels := []int{0, 0, 1, 1, 2, 2}
		assert.InDelta(t, 1.0, NMI(labels, labels), 1e-12)
	})

	t.Run("PermutedLabelsAreEquivalent", func(t *testing.T) {
		a := []int{0, 0, 1, 1, 2, 2}
		b := []int{5, 5, 3, 3, 9, 9}
		assert.InDelta(t, 1.0, NMI(a, b), 1e-12)
	})

	t.Run("Symmetric", func(t *testing.T) {
		a := []int{0, 0, 0, 1, 1, 2}
		b := []int{0, 1, 0, 1, 2, 2}
		assert.InDelta(t, NMI(a, b), NMI(b, a), 1e-12)
	})

	t.Run("BoundedOnRandomLabellings", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for trial := 0; trial < 100; trial++ {
			n := 5 + rng.Intn(50)
			a := make([]int, n)
			b := make([]int, n)
			for i := 0; i < n; i++ {
				a[i] = rng.Intn(1 + rng.Intn(6))
				b[i] = rng.Intn(1 + rng.Intn(6))
			}
			nmi := NMI(a, b)
			assert.GreaterOrEqual(t, nmi, -1e-12)
			assert.LessOrEqual(t, nmi, 1.0+1e-12)
		}
	})

	t.Run("SafeSentinels", func(t *testing.T) {
		assert.Zero(t, NMI(nil, nil))
		assert.Zero(t, NMI([]int{0, 1}, []int{0}))
		assert.Zero(t, NMI([]int{}, []int{}))
		// Both labellings constant: zero entropy denominator.
		assert.Zero(t, NMI([]int{1, 1, 1}, []int{2, 2, 2}))
	})
}

func TestSizeStats(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, ClusterStats{}, SizeStats(nil))
	})

	t.Run("KnownDistribution", func(t *testing.T) {
		stats := SizeStats([]int{2, 4, 4, 4, 5, 5, 7, 9})
		require.InDelta(t, 5.0, stats.Mean, 1e-12)
		require.InDelta(t, 2.0, stats.Std, 1e-12)
		assert.Equal(t, 2, stats.Min)
		assert.Equal(t, 9, stats.Max)
	})
}

func TestMemoryUsageMB(t *testing.T) {
	assert.GreaterOrEqual(t, MemoryUsageMB(), int64(0))
}
