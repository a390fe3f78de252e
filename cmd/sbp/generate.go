package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/sbp-engine/pkg/generator"
)

func newGenerateCmd() *cobra.Command {
	var (
		n      int
		k      int
		pIn    float64
		pOut   float64
		seed   int64
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a planted-partition SBM graph as an edge list",
		RunE: func(cmd *cobra.Command, args []string) error {
			instance := generator.SBMConfig{N: n, K: k, PIn: pIn, POut: pOut}.Generate(seed)

			out, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("could not create %s: %w", output, err)
			}
			defer out.Close()

			// One line per undirected edge, each listed once.
			g := instance.Graph
			for u := 0; u < g.VertexCount(); u++ {
				for _, v := range g.Neighbours(u) {
					if u < v {
						fmt.Fprintf(out, "%d %d\n", u, v)
					}
				}
			}

			log.Info().
				Int("vertices", g.VertexCount()).
				Int("edges", g.EdgeCount()).
				Str("output", output).
				Msg("Graph generated")
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 1000, "number of vertices")
	cmd.Flags().IntVar(&k, "k", 4, "number of planted blocks")
	cmd.Flags().Float64Var(&pIn, "p-in", 0.2, "intra-block edge probability")
	cmd.Flags().Float64Var(&pOut, "p-out", 0.02, "inter-block edge probability")
	cmd.Flags().Int64Var(&seed, "seed", 42, "generator seed")
	cmd.Flags().StringVar(&output, "output", "graph.txt", "edge list output path")

	return cmd
}
