package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"keeper/internal/config"
	"keeper/internal/pipeline"
	"keeper/internal/report"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var inputPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile duplicate groups against the library",
		Long: "Load the duplicate feed, choose a keeper per group, merge listening\n" +
			"statistics onto it, and mark the rest discardable. A database snapshot\n" +
			"is taken before any write.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(ctx, cmd, dryRun, inputPath)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute and report decisions without writing")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Duplicate feed JSON path (overrides config)")
	return cmd
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview keeper decisions without writing (run --dry-run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(ctx, cmd, true, inputPath)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Duplicate feed JSON path (overrides config)")
	return cmd
}

func executeRun(ctx *commandContext, cmd *cobra.Command, dryRun bool, inputPath string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	runCfg := *cfg
	if dryRun {
		runCfg.Run.DryRun = true
	}
	if trimmed := strings.TrimSpace(inputPath); trimmed != "" {
		expanded, err := config.ExpandPath(trimmed)
		if err != nil {
			return fmt.Errorf("resolve input path: %w", err)
		}
		runCfg.Paths.InputJSON = expanded
	}

	logger, err := ctx.newLogger(&runCfg)
	if err != nil {
		return err
	}

	summary, artifact, runErr := pipeline.New(&runCfg, logger).Execute(cmd.Context())
	if runErr != nil {
		if errors.Is(runErr, pipeline.ErrAlreadyRunning) {
			return runErr
		}
		// Aborted runs still carry a summary worth showing.
		if artifact != "" {
			renderSummary(cmd.OutOrStdout(), summary, artifact)
		}
		return runErr
	}

	renderSummary(cmd.OutOrStdout(), summary, artifact)
	if summary.Status == report.StatusFailed {
		return fmt.Errorf("run failed; review %s", artifact)
	}
	return nil
}
