package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thywilljoshua/study-companion/internal/export"
	"github.com/thywilljoshua/study-companion/internal/study"
)

func summarizeCmd(configPath *string) *cobra.Command {
	var level string
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "summarize <pdf>",
		Short: "Summarize a PDF course and write the export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := study.ParseLevel(level)
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			a, err := setup(cmd.Context(), *configPath, setupOptions{})
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			sess := a.engine.Open(nil)
			if err := sess.Upload(filepath.Base(args[0]), raw); err != nil {
				return err
			}
			if err := sess.SetLevel(lvl); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.LLM.Timeout)
			defer cancel()
			if err := sess.Summarize(ctx); err != nil {
				return err
			}
			file, err := sess.Export(f)
			if err != nil {
				return err
			}

			if out == "-" {
				_, err := cmd.OutOrStdout().Write(file.Data)
				return err
			}
			if out == "" {
				out = file.Name
			}
			if err := os.WriteFile(out, file.Data, 0o644); err != nil {
				return err
			}
			a.log.Info("summary written", zap.String("path", out), zap.String("level", string(lvl)))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&level, "level", string(study.Beginner), "beginner|intermediate|advanced")
	cmd.Flags().StringVar(&format, "format", string(export.PDF), "export format: pdf|txt|md|html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default: <title>_summary.<format>)")
	return cmd
}
