// Package metrics provides clustering quality measures and process
// resource snapshots for the benchmark harness.
package metrics

import (
	"math"
	"runtime"

	"gonum.org/v1/gonum/stat"
)

// NMI calculates the symmetric Normalized Mutual Information between two
// labellings: 2*I(A;B) / (H(A)+H(B)), in [0, 1]. Size-mismatched or
// empty inputs, and a zero entropy denominator, return the safe 0.
func NMI(labelsA, labelsB []int) float64 {
	if len(labelsA) != len(labelsB) || len(labelsA) == 0 {
		return 0.0
	}

	n := float64(len(labelsA))

	countsA := make(map[int]int)
	countsB := make(map[int]int)
	joint := make(map[[2]int]int)
	for i := range labelsA {
		countsA[labelsA[i]]++
		countsB[labelsB[i]]++
		joint[[2]int{labelsA[i], labelsB[i]}]++
	}

	entropyA := 0.0
	for _, count := range countsA {
		p := float64(count) / n
		entropyA -= p * math.Log(p)
	}

	entropyB := 0.0
	for _, count := range countsB {
		p := float64(count) / n
		entropyB -= p * math.Log(p)
	}

	mutualInfo := 0.0
	for pair, count := range joint {
		pxy := float64(count) / n
		px := float64(countsA[pair[0]]) / n
		py := float64(countsB[pair[1]]) / n
		mutualInfo += pxy * math.Log(pxy/(px*py))
	}

	if entropyA+entropyB == 0.0 {
		return 0.0
	}
	return 2.0 * mutualInfo / (entropyA + entropyB)
}

// ClusterStats summarises a cluster size distribution.
type ClusterStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  int     `json:"min"`
	Max  int     `json:"max"`
}

// SizeStats computes basic statistics over cluster sizes.
func SizeStats(sizes []int) ClusterStats {
	if len(sizes) == 0 {
		return ClusterStats{}
	}

	values := make([]float64, len(sizes))
	minSize, maxSize := sizes[0], sizes[0]
	for i, s := range sizes {
		values[i] = float64(s)
		if s < minSize {
			minSize = s
		}
		if s > maxSize {
			maxSize = s
		}
	}

	return ClusterStats{
		Mean: stat.Mean(values, nil),
		Std:  math.Sqrt(stat.PopVariance(values, nil)),
		Min:  minSize,
		Max:  maxSize,
	}
}

// MemoryUsageMB returns the current heap allocation in MB.
func MemoryUsageMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
