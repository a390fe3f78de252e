package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/sbp-engine/pkg/benchmark"
	"github.com/gilchrisn/sbp-engine/pkg/generator"
)

func newBenchmarkCmd() *cobra.Command {
	var (
		configPath string
		method     string
		outputPath string
		runs       int
		proposals  int
	)

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run the SBP benchmark sweep over a graph configuration CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			genMethod := generator.Method(method)
			if genMethod != generator.Standard && genMethod != generator.LFR {
				return fmt.Errorf("unknown generation method %q (want standard or lfr)", method)
			}

			return benchmark.Run(benchmark.Options{
				ConfigPath:        configPath,
				Method:            genMethod,
				OutputPath:        outputPath,
				Runs:              runs,
				ProposalsPerSplit: proposals,
			}, log.Logger)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "scripts/graph_config.csv", "graph configuration CSV path")
	cmd.Flags().StringVar(&method, "method", "standard", "graph generation method (standard or lfr)")
	cmd.Flags().StringVar(&outputPath, "output", "results/benchmark_results.csv", "result CSV path")
	cmd.Flags().IntVar(&runs, "runs", 5, "runs per graph configuration")
	cmd.Flags().IntVar(&proposals, "proposals", 50, "snowball proposals per split")

	return cmd
}
