package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
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

const selectPaymentColumns = `
	p.id, p.user_id, p.invoice_id, p.amount, p.date, p.method, p.reference, p.notes, p.created_at, p.updated_at
`

func scanPayment(s scanner) (*payment.Payment, error) {
	var p payment.Payment

	var method string

	if err := s.Scan(
		&p.ID, &p.UserID, &p.InvoiceID, &p.Amount, &p.Date, &method, &p.Reference, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Method = payment.Method(method)

	return &p, nil
}

func (s *Store) GetPayment(ctx context.Context, scope access.Scope, id uuid.UUID) (*payment.Payment, error) {
	where := scope.Where("p.user_id").And("p.id = $%d", id)
	query := `SELECT ` + selectPaymentColumns + ` FROM payments p` + where.SQL()

	p, err := scanPayment(s.db.QueryRowContext(ctx, query, where.Args()...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("payment")
		}

		return nil, fmt.Errorf("getting payment: %w", err)
	}

	return p, nil
}

func (s *Store) ListPayments(ctx context.Context, scope access.Scope, filter payment.ListFilter) ([]*payment.Payment, error) {
	where := scope.Where("p.user_id")

	if filter.InvoiceID != nil {
		where.And("p.invoice_id = $%d", *filter.InvoiceID)
	}

	query := `SELECT ` + selectPaymentColumns + ` FROM payments p` + where.SQL() +
		` ORDER BY p.date DESC, p.created_at DESC OFFSET ` + where.Arg(filter.Page.Skip) + ` LIMIT ` + where.Arg(filter.Page.Limit)

	rows, err := s.db.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*payment.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

func (s *Store) UpdatePayment(ctx context.Context, scope access.Scope, p *payment.Payment) error {
	where := scope.Where("user_id").And("id = $%d", p.ID)

	query := `
		UPDATE payments
		SET invoice_id = ` + where.Arg(p.InvoiceID) + `, amount = ` + where.Arg(p.Amount) +
		`, date = ` + where.Arg(p.Date) + `, method = ` + where.Arg(p.Method) +
		`, reference = ` + where.Arg(p.Reference) + `, notes = ` + where.Arg(p.Notes) +
		`, updated_at = NOW()` + where.SQL() + `
		RETURNING updated_at`

	if err := s.db.QueryRowContext(ctx, query, where.Args()...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("payment")
		}

		return fmt.Errorf("updating payment: %w", err)
	}

	return nil
}

type ledger struct {
	tx  *sql.Tx
	inv *invoice.Invoice
}

func (s *Store) BeginLedger(ctx context.Context, scope access.Scope, invoiceID uuid.UUID) (payment.Ledger, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}

	where := scope.Where("user_id").And("id = $%d", invoiceID)
	query := `SELECT id, user_id, client_id, number, status, total FROM invoices` + where.SQL() + ` FOR UPDATE`

	var (
		inv    invoice.Invoice
		status string
	)

	err = dbTx.QueryRowContext(ctx, query, where.Args()...).
		Scan(&inv.ID, &inv.UserID, &inv.ClientID, &inv.Number, &status, &inv.Total)
	if err != nil {
		dbTx.Rollback()

		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("invoice")
		}

		return nil, fmt.Errorf("locking invoice: %w", err)
	}

	inv.Status = invoice.Status(status)

	return &ledger{tx: dbTx, inv: &inv}, nil
}

func (l *ledger) Invoice() *invoice.Invoice { return l.inv }
func (l *ledger) Commit() error            { return l.tx.Commit() }

// Rollback after a successful Commit is a no-op.
func (l *ledger) Rollback() error {
	if err := l.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (l *ledger) AddPayment(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (user_id, invoice_id, amount, date, method, reference, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := l.tx.QueryRowContext(ctx, query,
		p.UserID,
		p.InvoiceID,
		p.Amount,
		p.Date,
		p.Method,
		p.Reference,
		p.Notes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}

	return nil
}

// RemovePayment deletes the payment only if it still belongs to the locked
// invoice; a concurrent move or delete surfaces as not found.
func (l *ledger) RemovePayment(ctx context.Context, id uuid.UUID) error {
	res, err := l.tx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1 AND invoice_id = $2`, id, l.inv.ID)
	if err != nil {
		return fmt.Errorf("deleting payment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting payment: %w", err)
	}

	if n == 0 {
		return apperr.NotFound("payment")
	}

	return nil
}

func (l *ledger) Paid(ctx context.Context) (decimal.Decimal, error) {
	var paid decimal.Decimal

	err := l.tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1`, l.inv.ID,
	).Scan(&paid)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing payments: %w", err)
	}

	return paid, nil
}

func (l *ledger) SetStatus(ctx context.Context, status invoice.Status) error {
	_, err := l.tx.ExecContext(ctx,
		`UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2`, status, l.inv.ID,
	)
	if err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}

	l.inv.Status = status

	return nil
}
