package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "companion",
		Short:         "Summarize PDF courses and chat about them with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: companion.yml if present)")

	root.AddCommand(
		serveCmd(&configPath),
		tuiCmd(&configPath),
		extractCmd(&configPath),
		summarizeCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
