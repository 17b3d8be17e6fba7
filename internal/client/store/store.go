package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/client"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order matches selectClientColumns.
func scanClient(s scanner) (*client.Client, error) {
	var c client.Client

	if err := s.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Company, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

const selectClientColumns = `
	c.id, c.user_id, c.name, c.email, c.phone, c.address, c.company, c.notes, c.created_at, c.updated_at
`

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	query := `
		INSERT INTO clients (user_id, name, email, phone, address, company, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.UserID,
		c.Name,
		c.Email,
		c.Phone,
		c.Address,
		c.Company,
		c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	return nil
}

func (s *Store) GetClient(ctx context.Context, scope access.Scope, id uuid.UUID) (*client.Client, error) {
	where := scope.Where("c.user_id").And("c.id = $%d", id)
	query := `SELECT ` + selectClientColumns + ` FROM clients c` + where.SQL()

	c, err := scanClient(s.db.QueryRowContext(ctx, query, where.Args()...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("client")
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	return c, nil
}

func (s *Store) ListClients(ctx context.Context, scope access.Scope, filter client.ListFilter) ([]*client.Client, error) {
	where := scope.Where("c.user_id")

	if filter.Search != nil && *filter.Search != "" {
		where.And("(c.name ILIKE $%[1]d OR c.email ILIKE $%[1]d)", "%"+*filter.Search+"%")
	}

	query := `SELECT ` + selectClientColumns + ` FROM clients c` + where.SQL() +
		` ORDER BY c.created_at ASC, c.id ASC OFFSET ` + where.Arg(filter.Page.Skip) + ` LIMIT ` + where.Arg(filter.Page.Limit)

	rows, err := s.db.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*client.Client

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client rows: %w", err)
	}

	return clients, nil
}

func (s *Store) UpdateClient(ctx context.Context, scope access.Scope, c *client.Client) error {
	where := scope.Where("user_id").And("id = $%d", c.ID)

	query := `
		UPDATE clients
		SET name = ` + where.Arg(c.Name) + `, email = ` + where.Arg(c.Email) +
		`, phone = ` + where.Arg(c.Phone) + `, address = ` + where.Arg(c.Address) +
		`, company = ` + where.Arg(c.Company) + `, notes = ` + where.Arg(c.Notes) +
		`, updated_at = NOW()` + where.SQL() + `
		RETURNING updated_at`

	if err := s.db.QueryRowContext(ctx, query, where.Args()...).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("client")
		}

		return fmt.Errorf("updating client: %w", err)
	}

	return nil
}

// DeleteClient relies on ON DELETE CASCADE for invoices, items and payments.
func (s *Store) DeleteClient(ctx context.Context, scope access.Scope, id uuid.UUID) error {
	where := scope.Where("user_id").And("id = $%d", id)

	res, err := s.db.ExecContext(ctx, `DELETE FROM clients`+where.SQL(), where.Args()...)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	if n == 0 {
		return apperr.NotFound("client")
	}

	return nil
}
