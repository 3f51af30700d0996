// Package persist commits resolved duplicate groups to the library database.
//
// Each group is one transaction: the merged annotation lands on the keeper
// and every other member receives a discard marker, or nothing happens at
// all. Groups whose markers already exist are detected up front so a re-run
// after a crash never double-counts listening statistics. In dry-run mode
// the writer reports what it would do without touching the database.
package persist
