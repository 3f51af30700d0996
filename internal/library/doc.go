// Package library reads and writes the Navidrome database keeper reconciles.
//
// The Store manages the SQLite connection, resolves the single Navidrome
// user whose annotations are merged, caches artist and album rows, and
// exposes the narrow surface the pipeline depends on: track lookup by path,
// annotation reads, the transactional per-group write (merged annotation
// plus discard markers), and the pre-run file-level backup.
//
// The schema is owned by Navidrome, not keeper. The only table keeper
// creates is keeper_discard, which records discard candidates for the
// external cleanup tool; it is namespaced so Navidrome ignores it. All
// other access is read-only outside ApplyMerge.
package library
