package report

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"keeper/internal/logging"
	"keeper/internal/resolver"
	"keeper/internal/services"
)

// Status is the overall verdict for a run.
type Status string

const (
	// StatusSuccess means every group resolved and persisted (or was
	// deliberately skipped).
	StatusSuccess Status = "success"
	// StatusPartial means some groups succeeded and some were reported.
	StatusPartial Status = "partial"
	// StatusFailed means the run aborted fatally or no group succeeded.
	StatusFailed Status = "failed"
)

// GroupRecord is one group's entry in the artifact: either the decision
// taken or the reason nothing was written.
type GroupRecord struct {
	GroupKey   string           `json:"group_key"`
	Outcome    services.Outcome `json:"outcome"`
	Keeper     string           `json:"keeper,omitempty"`
	Criterion  string           `json:"criterion,omitempty"`
	Discards   []string         `json:"discards,omitempty"`
	Candidates []string         `json:"candidates,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Summary is the complete run artifact.
type Summary struct {
	RunID      string                   `json:"run_id"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	DryRun     bool                     `json:"dry_run"`
	Status     Status                   `json:"status"`
	BackupPath string                   `json:"backup_path,omitempty"`
	FatalError string                   `json:"fatal_error,omitempty"`
	Counts     map[services.Outcome]int `json:"counts"`
	Groups     []GroupRecord            `json:"groups"`
}

// Sink collects group outcomes over the course of one run.
type Sink struct {
	runID      string
	dryRun     bool
	startedAt  time.Time
	backupPath string
	fatal      error
	records    []GroupRecord
	logger     *slog.Logger
}

// NewSink starts a run record with a fresh run identifier.
func NewSink(dryRun bool, logger *slog.Logger) *Sink {
	return &Sink{
		runID:     uuid.NewString(),
		dryRun:    dryRun,
		startedAt: time.Now().UTC(),
		logger:    logging.NewComponentLogger(logger, "report"),
	}
}

// RunID returns the identifier shared by the artifact, the log lines, and
// the discard markers of this run.
func (s *Sink) RunID() string {
	return s.runID
}

// BackupTaken records where the pre-run database snapshot landed.
func (s *Sink) BackupTaken(path string) {
	s.backupPath = path
}

// Resolved records a group whose merge was committed (or, in dry-run mode,
// planned).
func (s *Sink) Resolved(result *resolver.Result) {
	outcome := services.OutcomeMerged
	if s.dryRun {
		outcome = services.OutcomePlanned
	}
	record := GroupRecord{
		GroupKey:  result.Key,
		Outcome:   outcome,
		Keeper:    result.Keeper.Path,
		Criterion: string(result.Criterion),
	}
	for _, discard := range result.Discards {
		record.Discards = append(record.Discards, discard.Path)
	}
	s.records = append(s.records, record)
}

// Skipped records a group a previous run already committed.
func (s *Sink) Skipped(groupKey string) {
	s.records = append(s.records, GroupRecord{
		GroupKey: groupKey,
		Outcome:  services.OutcomeSkipped,
	})
}

// Ambiguous records a group the cascade could not narrow, with the full
// tied candidate set for manual review.
func (s *Sink) Ambiguous(failure *resolver.AmbiguousGroupError) {
	record := GroupRecord{
		GroupKey: failure.Key,
		Outcome:  services.OutcomeAmbiguous,
		Error:    failure.Error(),
	}
	for _, candidate := range failure.Candidates {
		record.Candidates = append(record.Candidates, candidate.Path)
	}
	s.records = append(s.records, record)
	s.logger.Warn("group needs manual review",
		logging.String("group_key", failure.Key),
		logging.Int("candidates", len(record.Candidates)),
	)
}

// Failed records any other per-group error under its classified outcome.
func (s *Sink) Failed(groupKey string, err error) {
	s.records = append(s.records, GroupRecord{
		GroupKey: groupKey,
		Outcome:  services.Classify(err),
		Error:    err.Error(),
	})
	s.logger.Warn("group failed",
		logging.String("group_key", groupKey),
		logging.String("outcome", string(services.Classify(err))),
		logging.Error(err),
	)
}

// Fatal records the run-aborting error. Only the first fatal error is kept.
func (s *Sink) Fatal(err error) {
	if s.fatal == nil {
		s.fatal = err
	}
}

// Summarize closes the run record and derives the overall status.
func (s *Sink) Summarize() Summary {
	summary := Summary{
		RunID:      s.runID,
		StartedAt:  s.startedAt,
		FinishedAt: time.Now().UTC(),
		DryRun:     s.dryRun,
		BackupPath: s.backupPath,
		Counts:     make(map[services.Outcome]int),
		Groups:     s.records,
	}
	if s.fatal != nil {
		summary.FatalError = s.fatal.Error()
	}

	var succeeded, failed int
	for _, record := range s.records {
		summary.Counts[record.Outcome]++
		switch record.Outcome {
		case services.OutcomeMerged, services.OutcomePlanned, services.OutcomeSkipped:
			succeeded++
		default:
			failed++
		}
	}

	switch {
	case s.fatal != nil:
		summary.Status = StatusFailed
	case failed == 0:
		summary.Status = StatusSuccess
	case succeeded == 0:
		summary.Status = StatusFailed
	default:
		summary.Status = StatusPartial
	}
	return summary
}
