package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// Store manages access to the Navidrome database.
type Store struct {
	db     *sql.DB
	path   string
	userID string

	artists map[string]*Artist
	albums  map[string]*Album
}

// ErrUserCount indicates the database does not hold exactly one user account.
var ErrUserCount = errors.New("navidrome database must hold exactly one user account")

// Open connects to the Navidrome database at path and resolves the single
// user whose annotations are reconciled. The file must already exist; keeper
// never creates a library database.
func Open(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat library database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open library database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:      db,
		path:    path,
		artists: make(map[string]*Artist),
		albums:  make(map[string]*Album),
	}
	if err := store.resolveUser(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// UserID returns the Navidrome account annotations are attributed to.
func (s *Store) UserID() string {
	return s.userID
}

func (s *Store) resolveUser(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_name FROM user`)
	if err != nil {
		return fmt.Errorf("query user table: %w", err)
	}
	defer rows.Close()

	type account struct{ id, name string }
	var accounts []account
	for rows.Next() {
		var a account
		if err := rows.Scan(&a.id, &a.name); err != nil {
			return fmt.Errorf("scan user row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate user rows: %w", err)
	}
	if len(accounts) != 1 {
		return fmt.Errorf("%w: found %d", ErrUserCount, len(accounts))
	}
	s.userID = accounts[0].id
	return nil
}
