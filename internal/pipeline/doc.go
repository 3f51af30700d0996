// Package pipeline wires the reconciliation stages into a single-threaded
// batch run: load the duplicate feed, look members up in the library, take a
// database snapshot, resolve each group to a keeper, merge annotations,
// persist per group, and write the run report.
//
// Per-group failures are recorded and the batch continues; only a failed
// backup (or an unopenable library) aborts the run, and that happens before
// any write. A file lock prevents two runs from interleaving transactions.
package pipeline
