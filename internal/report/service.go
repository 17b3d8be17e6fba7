package report

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
)

// StatusTotals aggregates the invoices sharing one status.
type StatusTotals struct {
	Status  invoice.Status
	Count   int
	Total   decimal.Decimal
	Paid    decimal.Decimal
	Balance decimal.Decimal
}

// Summary is the dashboard view of one user's receivables.
type Summary struct {
	Counts        map[invoice.Status]int
	InvoiceCount  int
	TotalInvoiced decimal.Decimal
	TotalPaid     decimal.Decimal
	Outstanding   decimal.Decimal
	OverdueCount  int
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=report
type Repository interface {
	TotalsByStatus(ctx context.Context, scope access.Scope) ([]StatusTotals, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Summary folds per-status totals. Cancelled invoices count towards the
// status breakdown and payments received, but not towards what is invoiced
// or still owed.
func (s *Service) Summary(ctx context.Context, scope access.Scope) (*Summary, error) {
	rows, err := s.repo.TotalsByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Counts:        make(map[invoice.Status]int, len(invoice.Statuses)),
		TotalInvoiced: decimal.Zero,
		TotalPaid:     decimal.Zero,
		Outstanding:   decimal.Zero,
	}

	for _, st := range invoice.Statuses {
		sum.Counts[st] = 0
	}

	for _, r := range rows {
		sum.Counts[r.Status] += r.Count
		sum.InvoiceCount += r.Count
		sum.TotalPaid = sum.TotalPaid.Add(r.Paid)

		if r.Status == invoice.StatusCancelled {
			continue
		}

		sum.TotalInvoiced = sum.TotalInvoiced.Add(r.Total)
		sum.Outstanding = sum.Outstanding.Add(r.Balance)
	}

	sum.OverdueCount = sum.Counts[invoice.StatusOverdue]

	return sum, nil
}
