// Package importer records payments in bulk from bank or ledger CSV exports.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
)

//go:generate mockgen -source=service.go -destination=importer_mock.go -package=importer
type InvoiceFinder interface {
	FindByNumber(ctx context.Context, scope access.Scope, number string) (*invoice.Invoice, error)
}

type PaymentRecorder interface {
	Record(ctx context.Context, scope access.Scope, params payment.CreateParams) (*payment.Payment, error)
}

type Service struct {
	parser   *Parser
	invoices InvoiceFinder
	payments PaymentRecorder
}

func NewService(invoices InvoiceFinder, payments PaymentRecorder) *Service {
	return &Service{
		parser:   NewParser(),
		invoices: invoices,
		payments: payments,
	}
}

type Rejection struct {
	Line          int
	InvoiceNumber string
	Reason        string
}

type Result struct {
	Charset  string
	Profile  string
	Created  []*payment.Payment
	Rejected []Rejection
}

// Import records one payment per row. Rows are independent: a rejected row
// does not undo earlier ones. Only infrastructure failures abort the run.
func (s *Service) Import(ctx context.Context, scope access.Scope, r io.Reader) (*Result, error) {
	sheet, err := s.parser.Parse(r)
	if err != nil {
		if errors.Is(err, ErrUnknownFormat) {
			return nil, apperr.Invalid("file", err.Error())
		}

		return nil, apperr.Invalid("file", fmt.Sprintf("unreadable CSV: %v", err))
	}

	res := &Result{Charset: sheet.Charset, Profile: sheet.Profile}

	for _, row := range sheet.Rows {
		reject := func(reason string) {
			res.Rejected = append(res.Rejected, Rejection{Line: row.Line, InvoiceNumber: row.InvoiceNumber, Reason: reason})
		}

		if row.Err != nil {
			reject(row.Err.Error())
			continue
		}

		inv, err := s.invoices.FindByNumber(ctx, scope, row.InvoiceNumber)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				reject("invoice not found")
				continue
			}

			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}

		p, err := s.payments.Record(ctx, scope, payment.CreateParams{
			Amount:    row.Amount,
			Date:      row.Date,
			Method:    row.Method,
			Reference: row.Reference,
			Notes:     row.Notes,
			InvoiceID: inv.ID,
		})
		if err != nil {
			if reason, ok := rowError(err); ok {
				reject(reason)
				continue
			}

			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}

		res.Created = append(res.Created, p)
	}

	return res, nil
}

// rowError reports whether err is about the row itself rather than the system.
func rowError(err error) (string, bool) {
	if _, ok := apperr.AsValidation(err); ok {
		return err.Error(), true
	}

	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrPermissionDenied):
		return err.Error(), true
	}

	return "", false
}
