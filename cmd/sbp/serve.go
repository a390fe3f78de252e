package main

import (
	"github.com/spf13/cobra"

	"github.com/gilchrisn/sbp-engine/pkg/api"
)

func newServeCmd() *cobra.Command {
	var (
		address string
		jobs    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the clustering engine over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.NewServer(address, jobs).Run()
		},
	}

	cmd.Flags().StringVar(&address, "address", ":8080", "listen address")
	cmd.Flags().IntVar(&jobs, "max-jobs", 4, "maximum concurrent clustering jobs")

	return cmd
}
