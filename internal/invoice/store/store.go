package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
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

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectInvoiceColumns = `
	i.id, i.user_id, i.client_id, i.number, i.status, i.issued_date, i.due_date,
	i.subtotal, i.tax, i.discount, i.total, i.notes, i.created_at, i.updated_at,
	COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.invoice_id = i.id), 0) AS amount_paid
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var status string

	if err := s.Scan(
		&inv.ID, &inv.UserID, &inv.ClientID, &inv.Number, &status, &inv.IssuedDate, &inv.DueDate,
		&inv.Subtotal, &inv.Tax, &inv.Discount, &inv.Total, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.AmountPaid,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(status)
	inv.Items = []invoice.Item{}

	return &inv, nil
}

const selectItemColumns = `
	id, invoice_id, description, quantity, unit_price, amount, created_at, updated_at
`

func scanItem(s scanner) (invoice.Item, error) {
	var it invoice.Item

	err := s.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Amount, &it.CreatedAt, &it.UpdatedAt)

	return it, err
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO invoices (user_id, client_id, number, status, issued_date, due_date,
			subtotal, tax, discount, total, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		inv.UserID,
		inv.ClientID,
		inv.Number,
		inv.Status,
		inv.IssuedDate,
		inv.DueDate,
		inv.Subtotal,
		inv.Tax,
		inv.Discount,
		inv.Total,
		inv.Notes,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	if err := insertItems(ctx, dbTx, inv); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing invoice: %w", err)
	}

	return nil
}

func insertItems(ctx context.Context, dbTx *sql.Tx, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	for i := range inv.Items {
		it := &inv.Items[i]
		it.InvoiceID = inv.ID

		err := dbTx.QueryRowContext(ctx, query,
			it.InvoiceID,
			i,
			it.Description,
			it.Quantity,
			it.UnitPrice,
			it.Amount,
		).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating invoice item %d: %w", i, err)
		}
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, scope access.Scope, id uuid.UUID) (*invoice.Invoice, error) {
	where := scope.Where("i.user_id").And("i.id = $%d", id)
	return s.getOne(ctx, where, "")
}

func (s *Store) GetInvoiceByNumber(ctx context.Context, scope access.Scope, number string) (*invoice.Invoice, error) {
	where := scope.Where("i.user_id").And("i.number = $%d", number)
	return s.getOne(ctx, where, " ORDER BY i.created_at DESC LIMIT 1")
}

func (s *Store) getOne(ctx context.Context, where *access.Where, suffix string) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices i` + where.SQL() + suffix

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, where.Args()...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("invoice")
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	if err := loadItems(ctx, s.db, []*invoice.Invoice{inv}); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, scope access.Scope, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	where := scope.Where("i.user_id")

	if filter.Status != nil {
		where.And("i.status = $%d", *filter.Status)
	}

	if filter.ClientID != nil {
		where.And("i.client_id = $%d", *filter.ClientID)
	}

	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices i` + where.SQL() +
		` ORDER BY i.issued_date DESC, i.created_at DESC OFFSET ` + where.Arg(filter.Page.Skip) + ` LIMIT ` + where.Arg(filter.Page.Limit)

	rows, err := s.db.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	if err := loadItems(ctx, s.db, invoices); err != nil {
		return nil, err
	}

	return invoices, nil
}

// loadItems fills Items for every invoice with one query.
func loadItems(ctx context.Context, q querier, invoices []*invoice.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*invoice.Invoice, len(invoices))
	ids := make([]string, 0, len(invoices))

	for _, inv := range invoices {
		byID[inv.ID] = inv
		ids = append(ids, inv.ID.String())
	}

	query := `SELECT ` + selectItemColumns + `
		FROM invoice_items
		WHERE invoice_id = ANY($1::uuid[])
		ORDER BY invoice_id, position ASC`

	rows, err := q.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("loading invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return fmt.Errorf("scanning invoice item: %w", err)
		}

		if inv, ok := byID[it.InvoiceID]; ok {
			inv.Items = append(inv.Items, it)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating invoice item rows: %w", err)
	}

	return nil
}

func (s *Store) UpdateInvoice(ctx context.Context, scope access.Scope, inv *invoice.Invoice, w invoice.Write) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	where := scope.Where("user_id").And("id = $%d", inv.ID)

	set := `client_id = ` + where.Arg(inv.ClientID) + `, number = ` + where.Arg(inv.Number) +
		`, issued_date = ` + where.Arg(inv.IssuedDate) + `, due_date = ` + where.Arg(inv.DueDate) +
		`, subtotal = ` + where.Arg(inv.Subtotal) + `, tax = ` + where.Arg(inv.Tax) +
		`, discount = ` + where.Arg(inv.Discount) + `, total = ` + where.Arg(inv.Total) +
		`, notes = ` + where.Arg(inv.Notes) + `, updated_at = NOW()`
	if w.Status {
		set += `, status = ` + where.Arg(inv.Status)
	}

	query := `UPDATE invoices SET ` + set + where.SQL() + ` RETURNING status, updated_at`

	var status string
	if err := dbTx.QueryRowContext(ctx, query, where.Args()...).Scan(&status, &inv.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("invoice")
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	inv.Status = invoice.Status(status)

	if w.Items {
		if _, err := dbTx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
			return fmt.Errorf("clearing invoice items: %w", err)
		}

		if err := insertItems(ctx, dbTx, inv); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing invoice update: %w", err)
	}

	return nil
}

// DeleteInvoice relies on ON DELETE CASCADE for items and payments.
func (s *Store) DeleteInvoice(ctx context.Context, scope access.Scope, id uuid.UUID) error {
	where := scope.Where("user_id").And("id = $%d", id)

	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices`+where.SQL(), where.Args()...)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if n == 0 {
		return apperr.NotFound("invoice")
	}

	return nil
}
