// Package resolver chooses the keeper of each duplicate group.
//
// Resolution runs a fixed, ordered cascade of criteria over the group's
// candidate set. Each criterion keeps only the candidates that are best by
// its measure; a criterion that does not discriminate (or would eliminate
// everyone) is a no-op, and the cascade stops as soon as exactly one
// candidate survives. A group the full cascade cannot reduce to one
// candidate is ambiguous and is reported instead of resolved arbitrarily;
// guessing on real listening data risks silent loss.
//
// The album-context criterion needs visibility into other groups'
// provisional outcomes, so ResolveAll iterates to a fixed point: every pass
// re-attempts the still-unresolved groups with the albums already known to
// hold a keeper, and stops when a pass makes no progress or the configured
// pass cap is reached.
package resolver
