package benchmark

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/sbp-engine/pkg/generator"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "graph_config.csv")
	outputPath := filepath.Join(dir, "results", "benchmark_results.csv")

	require.NoError(t, os.WriteFile(configPath,
		[]byte("n,k,p_in,p_out\n16,2,0.9,0.05\n"), 0o644))

	err := Run(Options{
		ConfigPath:        configPath,
		Method:            generator.Standard,
		OutputPath:        outputPath,
		Runs:              1,
		ProposalsPerSplit: 10,
	}, zerolog.Nop())
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header plus 2 algorithms x 2 execution modes x 1 run.
	require.Len(t, lines, 5)

	assert.Equal(t, strings.TrimSpace(csvHeader), lines[0])

	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 14, "row %q", line)

		assert.Contains(t, []string{"TopDown", "BottomUp"}, fields[4])
		assert.Contains(t, []string{"sequential", "parallel"}, fields[5])

		nmi, err := strconv.ParseFloat(fields[10], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, nmi, 0.0)
		assert.LessOrEqual(t, nmi, 1.0)

		clustersFound, err := strconv.Atoi(fields[13])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, clustersFound, 1)
		assert.LessOrEqual(t, clustersFound, 16)

		// Fixed-precision formatting: 6 digits for runtimes and nmi,
		// 2 for the raw MDL.
		_, frac, ok := strings.Cut(fields[7], ".")
		require.True(t, ok)
		assert.Len(t, frac, 6)
		_, frac, ok = strings.Cut(fields[11], ".")
		require.True(t, ok)
		assert.Len(t, frac, 2)
	}
}

func TestRunMissingConfig(t *testing.T) {
	err := Run(Options{
		ConfigPath: filepath.Join(t.TempDir(), "absent.csv"),
		Method:     generator.Standard,
		OutputPath: filepath.Join(t.TempDir(), "out.csv"),
		Runs:       1,
	}, zerolog.Nop())
	assert.Error(t, err)
}
