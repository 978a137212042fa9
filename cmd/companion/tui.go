package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/study-companion/internal/tui"
)

func tuiCmd(configPath *string) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Study a course in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), *configPath, setupOptions{logFile: logFile})
			if err != nil {
				return err
			}
			defer a.close(context.Background())
			return tui.Run(a.engine.Open(nil), a.cfg.LLM.Timeout)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "companion.log", "where to write logs while the UI runs")
	return cmd
}
