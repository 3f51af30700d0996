package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"keeper/internal/config"
	"keeper/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var artifactPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a run report artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var (
				summary report.Summary
				path    string
			)
			if trimmed := strings.TrimSpace(artifactPath); trimmed != "" {
				expanded, err := config.ExpandPath(trimmed)
				if err != nil {
					return fmt.Errorf("resolve report path: %w", err)
				}
				summary, err = report.ReadArtifact(expanded)
				if err != nil {
					return err
				}
				path = expanded
			} else {
				summary, path, err = report.LatestArtifact(cfg.ReportDir())
				if err != nil {
					return err
				}
			}

			renderSummary(cmd.OutOrStdout(), summary, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&artifactPath, "path", "p", "", "Report artifact to render (defaults to the newest)")
	return cmd
}
