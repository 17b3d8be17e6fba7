package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/database"
	"github.com/MrJamesThe3rd/invoiceai/internal/pagination"
	"github.com/MrJamesThe3rd/invoiceai/internal/user"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectUserColumns = `
	id, external_id, email, full_name, hashed_password, is_active, is_superuser, created_at, updated_at
`

func scanUser(s scanner) (*user.User, error) {
	var u user.User

	if err := s.Scan(
		&u.ID, &u.ExternalID, &u.Email, &u.FullName, &u.HashedPassword,
		&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &u, nil
}

func (s *Store) getBy(ctx context.Context, column string, value any) (*user.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE ` + column + ` = $1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.getBy(ctx, "id", id)
}

func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (*user.User, error) {
	return s.getBy(ctx, "external_id", externalID)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getBy(ctx, "email", email)
}

// ProvisionUser relies on the external_id unique constraint so that two
// first requests for the same identity converge on one row.
func (s *Store) ProvisionUser(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
		INSERT INTO users (external_id, email, full_name, hashed_password, is_active, is_superuser, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (external_id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		u.ExternalID,
		u.Email,
		u.FullName,
		u.HashedPassword,
		u.IsActive,
		u.IsSuperuser,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return nil, apperr.Conflict("email already registered")
		}

		return nil, fmt.Errorf("inserting user: %w", err)
	}

	return s.GetUserByExternalID(ctx, u.ExternalID)
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET email = $1, full_name = $2, hashed_password = $3, is_active = $4, is_superuser = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		u.Email,
		u.FullName,
		u.HashedPassword,
		u.IsActive,
		u.IsSuperuser,
		u.ID,
	).Scan(&u.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return apperr.NotFound("user")
		case database.IsUniqueViolation(err, "users_email_key"):
			return apperr.Conflict("email already registered")
		}

		return fmt.Errorf("updating user: %w", err)
	}

	return nil
}

func (s *Store) ListUsers(ctx context.Context, page pagination.Page) ([]*user.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users ORDER BY created_at ASC, id ASC OFFSET $1 LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, page.Skip, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*user.User

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}
