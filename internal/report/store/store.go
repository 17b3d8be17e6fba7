package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/report"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) TotalsByStatus(ctx context.Context, scope access.Scope) ([]report.StatusTotals, error) {
	where := scope.Where("i.user_id")

	query := `
		SELECT i.status,
			COUNT(*),
			COALESCE(SUM(i.total), 0),
			COALESCE(SUM(paid.amount), 0),
			COALESCE(SUM(GREATEST(i.total - COALESCE(paid.amount, 0), 0)), 0)
		FROM invoices i
		LEFT JOIN (
			SELECT invoice_id, SUM(amount) AS amount FROM payments GROUP BY invoice_id
		) paid ON paid.invoice_id = i.id` + where.SQL() + `
		GROUP BY i.status`

	rows, err := s.db.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("summarising invoices: %w", err)
	}
	defer rows.Close()

	var totals []report.StatusTotals

	for rows.Next() {
		var (
			t      report.StatusTotals
			status string
		)

		if err := rows.Scan(&status, &t.Count, &t.Total, &t.Paid, &t.Balance); err != nil {
			return nil, fmt.Errorf("scanning invoice totals: %w", err)
		}

		t.Status = invoice.Status(status)
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice totals: %w", err)
	}

	return totals, nil
}
