// Package services defines the shared error taxonomy consumed by the
// reconcile pipeline and its stages.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that tag failures with
//     the stage and operation that produced them.
//   - Classification of errors into report outcomes so the report sink and
//     CLI render consistent per-group categories.
//   - The fatal/local split: every per-group error is local to its group,
//     while a fatal storage error halts the run before any write.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, reporting, run status) stays uniform across stages.
package services
