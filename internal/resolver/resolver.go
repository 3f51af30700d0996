package resolver

import (
	"log/slog"
	"sort"

	"keeper/internal/library"
	"keeper/internal/logging"
)

// Options configures a Resolver.
type Options struct {
	// PreferredExtensions is the allow-list for the preferred-extension
	// criterion, lowercase without dots.
	PreferredExtensions []string
	// MaxPasses bounds the album-context fixed-point iteration. Values
	// below 1 fall back to 1.
	MaxPasses int
}

// Resolver applies the tie-break cascade across a batch of groups.
type Resolver struct {
	criteria  []criterion
	maxPasses int
	logger    *slog.Logger
}

// New constructs a Resolver.
func New(opts Options, logger *slog.Logger) *Resolver {
	passes := opts.MaxPasses
	if passes < 1 {
		passes = 1
	}
	return &Resolver{
		criteria:  cascade(opts.PreferredExtensions),
		maxPasses: passes,
		logger:    logging.NewComponentLogger(logger, "resolver"),
	}
}

// Outcome pairs a group key with either its resolution or its ambiguity.
type Outcome struct {
	Result    *Result
	Ambiguous *AmbiguousGroupError
}

// ResolveAll resolves every group and returns the outcomes keyed by group.
//
// Groups are visited in sorted key order so repeated runs over the same
// input make identical decisions. Each pass re-attempts only the groups not
// yet resolved; a group that resolves marks its keeper's album as containing
// a keeper, which can unblock album-linked groups in a later pass. Decisions
// are final once taken. When a pass makes no progress, or the pass cap is
// reached, the survivors of each remaining group are reported as ambiguous.
func (r *Resolver) ResolveAll(groups []Group) map[string]Outcome {
	ordered := make([]Group, len(groups))
	copy(ordered, groups)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Key < ordered[j].Key })

	ctx := newAlbumContext()
	outcomes := make(map[string]Outcome, len(ordered))
	pending := ordered

	for pass := 1; pass <= r.maxPasses && len(pending) > 0; pass++ {
		progressed := false
		var next []Group
		for _, group := range pending {
			result, _ := r.resolveOne(ctx, group)
			if result == nil {
				next = append(next, group)
				continue
			}
			outcomes[group.Key] = Outcome{Result: result}
			ctx.markKeepable(result.Keeper.AlbumID)
			progressed = true
			r.logger.Debug("group resolved",
				logging.String("group_key", group.Key),
				logging.String("keeper", result.Keeper.Path),
				logging.String("criterion", string(result.Criterion)),
				logging.Int("pass", pass),
			)
		}
		pending = next
		if !progressed {
			break
		}
	}

	for _, group := range pending {
		_, survivors := r.resolveOne(ctx, group)
		outcomes[group.Key] = Outcome{Ambiguous: &AmbiguousGroupError{
			Key:        group.Key,
			Candidates: survivors,
		}}
		r.logger.Warn("group left ambiguous",
			logging.String("group_key", group.Key),
			logging.Int("tied_candidates", len(survivors)),
		)
	}
	return outcomes
}

// Resolve runs the cascade for a single group against an empty album
// context. It exists for callers that do not need cross-group state.
func (r *Resolver) Resolve(group Group) (*Result, *AmbiguousGroupError) {
	result, survivors := r.resolveOne(newAlbumContext(), group)
	if result != nil {
		return result, nil
	}
	return nil, &AmbiguousGroupError{Key: group.Key, Candidates: survivors}
}

// resolveOne applies the cascade once. It returns the resolution when the
// cascade narrows the group to exactly one candidate, otherwise nil plus
// the surviving tied set.
func (r *Resolver) resolveOne(ctx *albumContext, group Group) (*Result, []*library.MediaFile) {
	survivors := group.Members
	for _, step := range r.criteria {
		best := step.apply(ctx, survivors)
		// A step that keeps nobody or everybody does not discriminate.
		if len(best) == 0 || len(best) == len(survivors) {
			continue
		}
		survivors = best
		if len(survivors) == 1 {
			return &Result{
				Key:       group.Key,
				Keeper:    survivors[0],
				Discards:  discardsOf(group.Members, survivors[0]),
				Criterion: step.name,
			}, nil
		}
	}
	return nil, survivors
}

func discardsOf(members []*library.MediaFile, keeper *library.MediaFile) []*library.MediaFile {
	discards := make([]*library.MediaFile, 0, len(members)-1)
	for _, member := range members {
		if member != keeper {
			discards = append(discards, member)
		}
	}
	return discards
}
