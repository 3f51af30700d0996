package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"keeper/internal/report"
	"keeper/internal/services"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func renderSummary(out io.Writer, summary report.Summary, artifact string) {
	colorize := shouldColorize(out)

	status := string(summary.Status)
	if color := statusColor(summary.Status); colorize && color != "" {
		status = color + status + ansiReset
	}
	fmt.Fprintf(out, "Run %s: %s\n", summary.RunID, status)
	if summary.DryRun {
		fmt.Fprintln(out, "Dry run: no database writes were made")
	}
	if summary.BackupPath != "" {
		fmt.Fprintf(out, "Backup: %s\n", summary.BackupPath)
	}
	if summary.FatalError != "" {
		fmt.Fprintf(out, "Fatal: %s\n", summary.FatalError)
	}

	if len(summary.Counts) > 0 {
		rows := make([]table.Row, 0, len(summary.Counts))
		for _, outcome := range sortedOutcomes(summary.Counts) {
			rows = append(rows, table.Row{string(outcome), summary.Counts[outcome]})
		}
		fmt.Fprintln(out, renderTable(table.Row{"Outcome", "Groups"}, rows, 2))
	}

	if failures := failedRecords(summary.Groups); len(failures) > 0 {
		rows := make([]table.Row, 0, len(failures))
		for _, record := range failures {
			detail := record.Error
			if record.Outcome == services.OutcomeAmbiguous {
				detail = fmt.Sprintf("%d tied candidates", len(record.Candidates))
			}
			rows = append(rows, table.Row{record.GroupKey, string(record.Outcome), detail})
		}
		fmt.Fprintln(out, renderTable(table.Row{"Group", "Outcome", "Detail"}, rows))
	}

	if artifact != "" {
		fmt.Fprintf(out, "Report: %s\n", artifact)
	}
}

func failedRecords(records []report.GroupRecord) []report.GroupRecord {
	var failed []report.GroupRecord
	for _, record := range records {
		switch record.Outcome {
		case services.OutcomeMerged, services.OutcomePlanned, services.OutcomeSkipped:
		default:
			failed = append(failed, record)
		}
	}
	return failed
}

func sortedOutcomes(counts map[services.Outcome]int) []services.Outcome {
	outcomes := make([]services.Outcome, 0, len(counts))
	for outcome := range counts {
		outcomes = append(outcomes, outcome)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i] < outcomes[j] })
	return outcomes
}

func statusColor(status report.Status) string {
	switch status {
	case report.StatusSuccess:
		return ansiGreen
	case report.StatusPartial:
		return ansiYellow
	case report.StatusFailed:
		return ansiRed
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
