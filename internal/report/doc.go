// Package report accumulates per-group outcomes for one reconciliation run
// and persists them as a JSON artifact for operator review.
//
// The sink is the only component allowed to absorb a group failure: every
// group ends up either in a resolution record or in an error record, and the
// run-level status (success, partial, failed) is derived from the counts.
package report
