// Package generator produces synthetic benchmark graphs with known
// community structure: planted-partition SBM graphs and LFR graphs with
// power-law degree and community-size distributions.
package generator

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/gilchrisn/sbp-engine/pkg/sbp"
)

// Method selects the graph generation family.
type Method string

const (
	Standard Method = "standard"
	LFR      Method = "lfr"
)

// Instance is one generated benchmark graph with its ground truth.
type Instance struct {
	Graph          *sbp.Graph
	TrueLabels     []int
	TargetClusters int
}

// Spec generates graph instances from a fixed parameter set.
type Spec interface {
	Generate(seed int64) *Instance
	Vertices() int
}

// SBMConfig is a standard planted-partition configuration: K equal-ish
// blocks with intra-probability PIn and inter-probability POut.
type SBMConfig struct {
	N    int
	K    int
	PIn  float64
	POut float64
}

func (c SBMConfig) Vertices() int { return c.N }

// Generate emits an undirected simple graph with ground-truth label
// v mod K: each unordered pair gets an edge with probability PIn inside
// a block and POut across blocks.
func (c SBMConfig) Generate(seed int64) *Instance {
	rng := rand.New(rand.NewSource(seed))

	g := sbp.NewGraph(c.N)
	labels := make([]int, c.N)
	for i := range labels {
		labels[i] = i % c.K
	}

	for i := 0; i < c.N; i++ {
		for j := i + 1; j < c.N; j++ {
			p := c.POut
			if labels[i] == labels[j] {
				p = c.PIn
			}
			if rng.Float64() < p {
				g.AddEdge(i, j)
			}
		}
	}

	return &Instance{Graph: g, TrueLabels: labels, TargetClusters: c.K}
}

// LFRConfig is an LFR benchmark configuration. The community count is an
// outcome of the power-law community-size sequence, not an input.
type LFRConfig struct {
	N           int
	Tau1        float64 // degree exponent
	Tau2        float64 // community size exponent
	Mu          float64 // mixing parameter
	AvgDegree   int
	MinCommSize int
}

func (c LFRConfig) Vertices() int { return c.N }

// Generate wires an LFR graph by stub matching: each vertex splits its
// power-law degree into an internal share (1-Mu) matched within its
// community and an external share matched across communities.
func (c LFRConfig) Generate(seed int64) *Instance {
	rng := rand.New(rand.NewSource(seed))

	g := sbp.NewGraph(c.N)

	// Power-law degree sequence, rescaled to the target average degree.
	degree := make([]int, c.N)
	for i := range degree {
		degree[i] = max(1, samplePowerlaw(1.0, c.Tau1, rng))
	}
	total := 0
	for _, d := range degree {
		total += d
	}
	scale := float64(c.AvgDegree) / (float64(total) / float64(c.N))
	for i := range degree {
		degree[i] = max(1, int(float64(degree[i])*scale))
	}

	// Power-law community sizes covering all N vertices.
	var commSizes []int
	assigned := 0
	for assigned < c.N {
		s := max(c.MinCommSize, samplePowerlaw(float64(c.MinCommSize), c.Tau2, rng))
		commSizes = append(commSizes, s)
		assigned += s
	}
	commSizes[len(commSizes)-1] -= assigned - c.N

	labels := make([]int, c.N)
	node := 0
	for community, size := range commSizes {
		for i := 0; i < size; i++ {
			labels[node] = community
			node++
		}
	}

	// Split each vertex's stubs into internal and external halves.
	internalStubs := make([][]int, len(commSizes))
	var externalStubs []int
	for i := 0; i < c.N; i++ {
		kin := int((1.0 - c.Mu) * float64(degree[i]))
		kout := degree[i] - kin
		for s := 0; s < kin; s++ {
			internalStubs[labels[i]] = append(internalStubs[labels[i]], i)
		}
		for s := 0; s < kout; s++ {
			externalStubs = append(externalStubs, i)
		}
	}

	// Wire internal edges within each community.
	for _, stubs := range internalStubs {
		rng.Shuffle(len(stubs), func(i, j int) { stubs[i], stubs[j] = stubs[j], stubs[i] })
		for i := 0; i+1 < len(stubs); i += 2 {
			u, v := stubs[i], stubs[i+1]
			if u != v {
				g.AddEdge(u, v)
			}
		}
	}

	// Wire external edges across communities.
	rng.Shuffle(len(externalStubs), func(i, j int) {
		externalStubs[i], externalStubs[j] = externalStubs[j], externalStubs[i]
	})
	for i := 0; i+1 < len(externalStubs); i += 2 {
		u, v := externalStubs[i], externalStubs[i+1]
		if u != v && labels[u] != labels[v] {
			g.AddEdge(u, v)
		}
	}

	return &Instance{Graph: g, TrueLabels: labels, TargetClusters: len(commSizes)}
}

// samplePowerlaw draws from a discrete power law with exponent tau and
// minimum xmin by inverse-CDF sampling.
func samplePowerlaw(xmin, tau float64, rng *rand.Rand) int {
	r := rng.Float64()
	return int(xmin * math.Pow(1.0-r, -1.0/(tau-1.0)))
}

// ReadConfigsCSV loads generator configurations from a CSV file. The
// first row is a header. Standard rows are `n,k,p_in,p_out`; LFR rows
// are `n,tau1,tau2,mu,avg_degree,min_comm_size`. Blank lines are
// ignored and rows with malformed numeric cells are skipped.
func ReadConfigsCSV(path string, method Method) ([]Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open the configuration file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var specs []Spec
	for _, record := range records[1:] { // skip header
		if len(record) == 0 || (len(record) == 1 && record[0] == "") {
			continue
		}

		switch method {
		case Standard:
			if len(record) < 4 {
				continue
			}
			n, err1 := strconv.Atoi(record[0])
			k, err2 := strconv.Atoi(record[1])
			pIn, err3 := strconv.ParseFloat(record[2], 64)
			pOut, err4 := strconv.ParseFloat(record[3], 64)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				continue
			}
			specs = append(specs, SBMConfig{N: n, K: k, PIn: pIn, POut: pOut})

		case LFR:
			if len(record) < 6 {
				continue
			}
			n, err1 := strconv.Atoi(record[0])
			tau1, err2 := strconv.ParseFloat(record[1], 64)
			tau2, err3 := strconv.ParseFloat(record[2], 64)
			mu, err4 := strconv.ParseFloat(record[3], 64)
			avgDegree, err5 := strconv.Atoi(record[4])
			minCommSize, err6 := strconv.Atoi(record[5])
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
				continue
			}
			specs = append(specs, LFRConfig{
				N: n, Tau1: tau1, Tau2: tau2, Mu: mu,
				AvgDegree: avgDegree, MinCommSize: minCommSize,
			})
		}
	}

	return specs, nil
}
