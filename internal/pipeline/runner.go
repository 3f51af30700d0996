package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gofrs/flock"

	"keeper/internal/annotate"
	"keeper/internal/config"
	"keeper/internal/dupes"
	"keeper/internal/library"
	"keeper/internal/logging"
	"keeper/internal/persist"
	"keeper/internal/report"
	"keeper/internal/resolver"
	"keeper/internal/services"
)

// ErrAlreadyRunning indicates another keeper process holds the run lock.
var ErrAlreadyRunning = errors.New("another keeper run is already in progress")

// Runner executes one reconciliation batch against the configured library.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a Runner.
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logging.NewComponentLogger(logger, "pipeline")}
}

// Execute runs the batch end to end and returns the run summary plus the
// path of the written report artifact. Fatal failures (unreadable feed,
// unopenable library, failed backup) still produce an artifact; the error
// return is non-nil only for those run-aborting conditions.
func (r *Runner) Execute(ctx context.Context) (report.Summary, string, error) {
	lock := flock.New(r.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return report.Summary{}, "", fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return report.Summary{}, "", ErrAlreadyRunning
	}
	defer func() { _ = lock.Unlock() }()

	sink := report.NewSink(r.cfg.Run.DryRun, r.logger)
	logger := r.logger.With(logging.String("run_id", sink.RunID()))
	logger.Info("run started",
		logging.Bool("dry_run", r.cfg.Run.DryRun),
		logging.String("input", r.cfg.Paths.InputJSON),
	)

	groups, malformed, err := dupes.Load(r.cfg.Paths.InputJSON, dupes.Options{
		SourceBase: r.cfg.Library.SourceBase,
		TargetBase: r.cfg.Library.TargetBase,
	})
	if err != nil {
		return r.abort(sink, logger, services.Wrap(services.ErrMalformedInput, "load", "duplicate feed", "", err))
	}
	for _, key := range sortedKeys(malformed) {
		sink.Failed(key, malformed[key])
	}

	store, err := library.Open(ctx, r.cfg.Paths.LibraryDB)
	if err != nil {
		return r.abort(sink, logger, services.Wrap(services.ErrFatalStorage, "open", "library database", "", err))
	}
	defer store.Close()

	// The snapshot is the global undo point; without it nothing may be
	// written. Dry runs write nothing, so they need no snapshot.
	if !r.cfg.Run.DryRun {
		backupPath, err := store.Backup(ctx, r.cfg.BackupDir(), sink.RunID())
		if err != nil {
			return r.abort(sink, logger, services.Wrap(services.ErrFatalStorage, "backup", "database snapshot", "", err))
		}
		sink.BackupTaken(backupPath)
		logger.Info("database snapshot taken", logging.String("backup", backupPath))
	}

	writer := persist.NewWriter(store, sink.RunID(), r.cfg.Run.DryRun, r.logger)
	resolverGroups := r.loadGroups(ctx, store, writer, sink, groups)

	res := resolver.New(resolver.Options{
		PreferredExtensions: r.cfg.Library.PreferredExtensions,
		MaxPasses:           r.cfg.Resolver.MaxPasses,
	}, r.logger)
	outcomes := res.ResolveAll(resolverGroups)

	for _, group := range resolverGroups {
		if ctx.Err() != nil {
			logger.Warn("run interrupted between groups", logging.Error(ctx.Err()))
			break
		}
		outcome := outcomes[group.Key]
		if outcome.Ambiguous != nil {
			sink.Ambiguous(outcome.Ambiguous)
			continue
		}
		result := outcome.Result
		merged := annotate.Merge(result.Keeper, group.Members)
		groupCtx := logging.WithGroupKey(ctx, group.Key)
		if err := writer.Commit(groupCtx, result, merged); err != nil {
			sink.Failed(group.Key, err)
			continue
		}
		sink.Resolved(result)
	}

	return r.finish(sink, logger)
}

// loadGroups resolves feed paths into library rows, dropping groups that a
// previous run already committed and groups with unresolvable members.
func (r *Runner) loadGroups(
	ctx context.Context,
	store *library.Store,
	writer *persist.Writer,
	sink *report.Sink,
	groups []dupes.Group,
) []resolver.Group {
	loaded := make([]resolver.Group, 0, len(groups))
	for _, group := range groups {
		already, err := writer.AlreadyMerged(ctx, group.Key)
		if err != nil {
			sink.Failed(group.Key, err)
			continue
		}
		if already {
			sink.Skipped(group.Key)
			continue
		}

		members, err := r.loadMembers(ctx, store, group)
		if err != nil {
			sink.Failed(group.Key, err)
			continue
		}
		loaded = append(loaded, resolver.Group{Key: group.Key, Members: members})
	}
	return loaded
}

func (r *Runner) loadMembers(ctx context.Context, store *library.Store, group dupes.Group) ([]*library.MediaFile, error) {
	members := make([]*library.MediaFile, 0, len(group.Paths))
	for _, path := range group.Paths {
		media, err := store.MediaByPath(ctx, path)
		if err != nil {
			return nil, services.Wrap(services.ErrLookup, "load", "media lookup", path, err)
		}
		if media == nil {
			return nil, services.Wrap(services.ErrLookup, "load", "media lookup",
				fmt.Sprintf("no library row for %s", path), nil)
		}
		members = append(members, media)
	}
	return members, nil
}

func (r *Runner) abort(sink *report.Sink, logger *slog.Logger, cause error) (report.Summary, string, error) {
	sink.Fatal(cause)
	logger.Error("run aborted", logging.Error(cause))
	summary, artifact, err := r.finish(sink, logger)
	if err != nil {
		return summary, artifact, errors.Join(cause, err)
	}
	return summary, artifact, cause
}

func (r *Runner) finish(sink *report.Sink, logger *slog.Logger) (report.Summary, string, error) {
	summary := sink.Summarize()
	artifact, err := report.WriteArtifact(summary, r.cfg.ReportDir())
	if err != nil {
		return summary, "", fmt.Errorf("write report artifact: %w", err)
	}
	logger.Info("run finished",
		logging.String("status", string(summary.Status)),
		logging.Int("groups", len(summary.Groups)),
		logging.String("artifact", artifact),
	)
	return summary, artifact, nil
}

func sortedKeys(errs map[string]error) []string {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
