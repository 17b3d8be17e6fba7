// Package export renders invoices for download: a CSV listing, a single
// invoice PDF, and a zip bundle of both.
package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/client"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/pagination"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
)

//go:generate mockgen -source=service.go -destination=export_mock.go -package=export
type InvoiceSource interface {
	Get(ctx context.Context, scope access.Scope, id uuid.UUID) (*invoice.Invoice, error)
	List(ctx context.Context, scope access.Scope, filter invoice.ListFilter) ([]*invoice.Invoice, error)
}

type ClientSource interface {
	Get(ctx context.Context, scope access.Scope, id uuid.UUID) (*client.Client, error)
}

type PaymentSource interface {
	List(ctx context.Context, scope access.Scope, filter payment.ListFilter) ([]*payment.Payment, error)
}

type Service struct {
	invoices InvoiceSource
	clients  ClientSource
	payments PaymentSource
}

func NewService(invoices InvoiceSource, clients ClientSource, payments PaymentSource) *Service {
	return &Service{invoices: invoices, clients: clients, payments: payments}
}

var csvHeader = []string{
	"number", "client", "status", "issued_date", "due_date",
	"subtotal", "tax", "discount", "total", "amount_paid", "balance_due",
}

// WriteCSV writes every invoice matching filter, ignoring its page.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, scope access.Scope, filter invoice.ListFilter) error {
	invoices, err := s.all(ctx, scope, filter)
	if err != nil {
		return err
	}

	names, err := s.clientNames(ctx, scope, invoices)
	if err != nil {
		return err
	}

	return writeCSV(w, invoices, names)
}

func writeCSV(w io.Writer, invoices []*invoice.Invoice, names map[uuid.UUID]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, inv := range invoices {
		if err := cw.Write([]string{
			inv.Number,
			names[inv.ClientID],
			string(inv.Status),
			inv.IssuedDate.Format(dateLayout),
			inv.DueDate.Format(dateLayout),
			inv.Subtotal.StringFixed(2),
			inv.Tax.StringFixed(2),
			inv.Discount.StringFixed(2),
			inv.Total.StringFixed(2),
			inv.AmountPaid.StringFixed(2),
			inv.BalanceDue().StringFixed(2),
		}); err != nil {
			return fmt.Errorf("writing invoice %s: %w", inv.Number, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WritePDF renders one invoice with its client and payments.
func (s *Service) WritePDF(ctx context.Context, w io.Writer, scope access.Scope, id uuid.UUID) error {
	doc, err := s.document(ctx, scope, id)
	if err != nil {
		return err
	}

	return renderPDF(w, doc)
}

// WriteBundle zips invoices.csv and one PDF per matching invoice.
func (s *Service) WriteBundle(ctx context.Context, w io.Writer, scope access.Scope, filter invoice.ListFilter) error {
	invoices, err := s.all(ctx, scope, filter)
	if err != nil {
		return err
	}

	names, err := s.clientNames(ctx, scope, invoices)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)

	f, err := zw.Create("invoices.csv")
	if err != nil {
		return fmt.Errorf("creating zip entry: %w", err)
	}

	if err := writeCSV(f, invoices, names); err != nil {
		return err
	}

	for _, inv := range invoices {
		doc, err := s.document(ctx, scope, inv.ID)
		if err != nil {
			return err
		}

		f, err := zw.Create(FileName(inv) + ".pdf")
		if err != nil {
			return fmt.Errorf("creating zip entry: %w", err)
		}

		if err := renderPDF(f, doc); err != nil {
			return err
		}
	}

	return zw.Close()
}

// FileName is a filesystem-safe base name for an invoice download.
func FileName(inv *invoice.Invoice) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, inv.Number)

	return fmt.Sprintf("invoice_%s_%s", safe, inv.IssuedDate.Format("20060102"))
}

func (s *Service) all(ctx context.Context, scope access.Scope, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice

	filter.Page = pagination.Page{Limit: pagination.MaxLimit}

	for {
		batch, err := s.invoices.List(ctx, scope, filter)
		if err != nil {
			return nil, fmt.Errorf("listing invoices: %w", err)
		}

		out = append(out, batch...)

		if len(batch) < filter.Page.Limit {
			return out, nil
		}

		filter.Page.Skip += filter.Page.Limit
	}
}

func (s *Service) clientNames(ctx context.Context, scope access.Scope, invoices []*invoice.Invoice) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string)

	for _, inv := range invoices {
		if _, ok := names[inv.ClientID]; ok {
			continue
		}

		c, err := s.clients.Get(ctx, scope, inv.ClientID)
		if err != nil {
			return nil, fmt.Errorf("loading client for invoice %s: %w", inv.Number, err)
		}

		names[inv.ClientID] = c.Name
	}

	return names, nil
}

type document struct {
	invoice  *invoice.Invoice
	client   *client.Client
	payments []*payment.Payment
}

func (s *Service) document(ctx context.Context, scope access.Scope, id uuid.UUID) (*document, error) {
	inv, err := s.invoices.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	c, err := s.clients.Get(ctx, scope, inv.ClientID)
	if err != nil {
		return nil, fmt.Errorf("loading client: %w", err)
	}

	payments, err := s.payments.List(ctx, scope, payment.ListFilter{
		InvoiceID: &inv.ID,
		Page:      pagination.Page{Limit: pagination.MaxLimit},
	})
	if err != nil {
		return nil, fmt.Errorf("loading payments: %w", err)
	}

	return &document{invoice: inv, client: c, payments: payments}, nil
}
