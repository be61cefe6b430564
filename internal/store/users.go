package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/mechatrack/internal/errs"
	"github.com/erazemk/mechatrack/internal/model"
)

// MsgEmailExists is returned when signing up with a registered email.
const MsgEmailExists = "Email already exists"

// Users persists accounts and their password hashes.
type Users struct {
	DB  *sql.DB
	Now func() time.Time
}

// Create inserts a user. The email must not be registered yet.
func (s *Users) Create(ctx context.Context, email, passwordHash, name string) (*model.User, error) {
	existing, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict(MsgEmailExists)
	}

	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, name, created_at) VALUES (?, ?, ?, ?)`,
		email, passwordHash, name, model.NewTimestamp(clock(s.Now)),
	)
	if err != nil {
		// Lost a race with a concurrent signup for the same email.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, errs.Conflict(MsgEmailExists)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return s.Get(ctx, id)
}

// Get returns a user by ID, or nil if absent.
func (s *Users) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.getBy(ctx, "id", id)
}

// GetByEmail returns a user by email, or nil if absent.
func (s *Users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getBy(ctx, "email", email)
}

func (s *Users) getBy(ctx context.Context, column string, value any) (*model.User, error) {
	u := &model.User{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at FROM users WHERE `+column+` = ?`, value,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by %s: %w", column, err)
	}
	return u, nil
}

// CountByEmail returns how many accounts use the email.
func (s *Users) CountByEmail(ctx context.Context, email string) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}
