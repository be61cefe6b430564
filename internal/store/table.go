package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/mechatrack/internal/errs"
)

type scanner interface {
	Scan(dest ...any) error
}

// table describes how one entity is read back from its table.
type table[T any] struct {
	name     string
	columns  string
	scan     func(scanner) (T, error)
	notFound string
}

// list returns every row ordered by ascending id.
func (t table[T]) list(ctx context.Context, db *sql.DB) ([]T, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+t.columns+` FROM `+t.name+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.name, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.name, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// get returns one row or a not-found error.
func (t table[T]) get(ctx context.Context, db *sql.DB, id int64) (*T, error) {
	row := db.QueryRowContext(ctx, `SELECT `+t.columns+` FROM `+t.name+` WHERE id = ?`, id)
	v, err := t.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound(t.notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", t.name, id, err)
	}
	return &v, nil
}

// delete removes one row permanently.
func (t table[T]) delete(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM `+t.name+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", t.name, id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", t.name, id, err)
	}
	if n == 0 {
		return errs.NotFound(t.notFound)
	}
	return nil
}

// count returns the number of rows in the table.
func (t table[T]) count(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", t.name, err)
	}
	return n, nil
}

// checkUpdated turns a zero-row UPDATE into a not-found error.
func checkUpdated(result sql.Result, notFound string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return errs.NotFound(notFound)
	}
	return nil
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
