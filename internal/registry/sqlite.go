package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const snapshotSchema = `CREATE TABLE IF NOT EXISTS reference_codes (
	domain TEXT NOT NULL,
	kind   TEXT NOT NULL DEFAULT '',
	code   TEXT NOT NULL,
	id     INTEGER NOT NULL,
	PRIMARY KEY (domain, kind, code)
)`

// SQLite serves mappings from a snapshot file written by WriteSnapshot, so
// runs can resolve codes without reaching the GeoNature database.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Provider = (*SQLite)(nil)

// OpenSQLite opens (creating when needed) a snapshot file.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite snapshot path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create reference_codes table: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Path returns the snapshot file path.
func (s *SQLite) Path() string {
	return s.path
}

// Mapping implements Provider.
func (s *SQLite) Mapping(ctx context.Context, d Domain) (Mapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, id FROM reference_codes WHERE domain = ?`, string(d))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", d, err)
	}
	defer func() { _ = rows.Close() }()

	m := make(Mapping)
	for rows.Next() {
		var (
			code string
			id   int64
		)
		if err := rows.Scan(&code, &id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", d, err)
		}
		m[code] = id
	}
	return m, rows.Err()
}

// TypedMapping implements Provider.
func (s *SQLite) TypedMapping(ctx context.Context, d Domain, types []string) (TypedMapping, error) {
	q := `SELECT kind, code, id FROM reference_codes WHERE domain = ?`
	args := []any{string(d)}
	if len(types) > 0 {
		q += ` AND kind IN (?` + strings.Repeat(`, ?`, len(types)-1) + `)`
		for _, t := range types {
			args = append(args, t)
		}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", d, err)
	}
	defer func() { _ = rows.Close() }()

	m := make(TypedMapping)
	for rows.Next() {
		var (
			kind, code string
			id         int64
		)
		if err := rows.Scan(&kind, &code, &id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", d, err)
		}
		m.Set(kind, code, id)
	}
	return m, rows.Err()
}

// WriteSnapshot replaces the stored codes of every domain loaded in reg.
// Domains absent from reg are left untouched.
func (s *SQLite) WriteSnapshot(ctx context.Context, reg *Registry) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reference_codes (domain, kind, code, id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, d := range reg.Domains() {
		if _, err = tx.ExecContext(ctx, `DELETE FROM reference_codes WHERE domain = ?`, string(d)); err != nil {
			return fmt.Errorf("clear %s: %w", d, err)
		}
		if d.Typed() {
			for kind, codes := range reg.GetTyped(d) {
				for code, id := range codes {
					if _, err = stmt.ExecContext(ctx, string(d), kind, code, id); err != nil {
						return fmt.Errorf("insert %s %s-%s: %w", d, kind, code, err)
					}
				}
			}
			continue
		}
		for code, id := range reg.Get(d) {
			if _, err = stmt.ExecContext(ctx, string(d), "", code, id); err != nil {
				return fmt.Errorf("insert %s %s: %w", d, code, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
