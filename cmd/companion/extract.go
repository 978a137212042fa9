package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/study-companion/internal/config"
	"github.com/thywilljoshua/study-companion/internal/ingest"
)

func extractCmd(configPath *string) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Print the page count and extracted text of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if backend == "" {
				cfg, err := config.Load(*configPath, nil)
				if err != nil {
					return err
				}
				backend = cfg.PDF.Backend
			}
			x, err := ingest.New(backend)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res, err := x.Extract(raw)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pages: %d\n\n", res.Pages)
			fmt.Fprint(out, res.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "", "PDF backend: ledongthuc|rsc (overrides config)")
	return cmd
}
