package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/client"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/pagination"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
)

type fixture struct {
	invoices *MockInvoiceSource
	clients  *MockClientSource
	payments *MockPaymentSource
	svc      *Service
	scope    access.Scope
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		invoices: NewMockInvoiceSource(ctrl),
		clients:  NewMockClientSource(ctrl),
		payments: NewMockPaymentSource(ctrl),
		scope:    access.Owner(uuid.New()),
	}
	f.svc = NewService(f.invoices, f.clients, f.payments)

	return f
}

func sampleInvoice(clientID uuid.UUID) *invoice.Invoice {
	return &invoice.Invoice{
		ID:         uuid.New(),
		ClientID:   clientID,
		Number:     "INV/2026-001",
		Status:     invoice.StatusPending,
		IssuedDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Subtotal:   decimal.RequireFromString("100"),
		Tax:        decimal.RequireFromString("23"),
		Total:      decimal.RequireFromString("123"),
		AmountPaid: decimal.RequireFromString("23"),
		Items: []invoice.Item{{
			Description: "Consultoria técnica",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.RequireFromString("50"),
			Amount:      decimal.RequireFromString("100"),
		}},
	}
}

func TestService_WriteCSV(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := &client.Client{ID: uuid.New(), Name: "Acme, Lda"}
	inv := sampleInvoice(acme.ID)
	status := invoice.StatusPending

	f.invoices.EXPECT().List(ctx, f.scope, invoice.ListFilter{
		Status: &status,
		Page:   pagination.Page{Limit: pagination.MaxLimit},
	}).Return([]*invoice.Invoice{inv, inv}, nil)
	f.clients.EXPECT().Get(ctx, f.scope, acme.ID).Return(acme, nil).Times(1)

	var buf bytes.Buffer
	require.NoError(t, f.svc.WriteCSV(ctx, &buf, f.scope, invoice.ListFilter{Status: &status, Page: pagination.Page{Skip: 50, Limit: 2}}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"INV/2026-001", "Acme, Lda", "pending", "2026-03-01", "2026-03-31",
		"100.00", "23.00", "0.00", "123.00", "23.00", "100.00",
	}, rows[1])
}

func TestService_WriteCSV_Paginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	full := make([]*invoice.Invoice, pagination.MaxLimit)
	for i := range full {
		full[i] = &invoice.Invoice{ClientID: uuid.Nil}
	}

	gomock.InOrder(
		f.invoices.EXPECT().List(ctx, f.scope, invoice.ListFilter{Page: pagination.Page{Limit: pagination.MaxLimit}}).Return(full, nil),
		f.invoices.EXPECT().List(ctx, f.scope, invoice.ListFilter{Page: pagination.Page{Skip: pagination.MaxLimit, Limit: pagination.MaxLimit}}).Return(nil, nil),
	)
	f.clients.EXPECT().Get(ctx, f.scope, uuid.Nil).Return(&client.Client{Name: "x"}, nil)

	var buf bytes.Buffer
	require.NoError(t, f.svc.WriteCSV(ctx, &buf, f.scope, invoice.ListFilter{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, pagination.MaxLimit+1)
}

func TestService_WritePDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := &client.Client{ID: uuid.New(), Name: "Acme", Email: "billing@acme.test", Address: new("Rua Augusta 1, Lisboa")}
	inv := sampleInvoice(acme.ID)

	f.invoices.EXPECT().Get(ctx, f.scope, inv.ID).Return(inv, nil)
	f.clients.EXPECT().Get(ctx, f.scope, acme.ID).Return(acme, nil)
	f.payments.EXPECT().List(ctx, f.scope, payment.ListFilter{
		InvoiceID: &inv.ID,
		Page:      pagination.Page{Limit: pagination.MaxLimit},
	}).Return([]*payment.Payment{{
		Amount: decimal.RequireFromString("23"),
		Date:   time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Method: payment.MethodBankTransfer,
	}}, nil)

	var buf bytes.Buffer
	require.NoError(t, f.svc.WritePDF(ctx, &buf, f.scope, inv.ID))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestService_WritePDF_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.New()

	f.invoices.EXPECT().Get(ctx, f.scope, id).Return(nil, apperr.NotFound("invoice"))

	err := f.svc.WritePDF(ctx, &bytes.Buffer{}, f.scope, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_WriteBundle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := &client.Client{ID: uuid.New(), Name: "Acme"}
	inv := sampleInvoice(acme.ID)

	f.invoices.EXPECT().List(ctx, f.scope, gomock.Any()).Return([]*invoice.Invoice{inv}, nil)
	f.invoices.EXPECT().Get(ctx, f.scope, inv.ID).Return(inv, nil)
	f.clients.EXPECT().Get(ctx, f.scope, acme.ID).Return(acme, nil).Times(2)
	f.payments.EXPECT().List(ctx, f.scope, gomock.Any()).Return(nil, nil)

	var buf bytes.Buffer
	require.NoError(t, f.svc.WriteBundle(ctx, &buf, f.scope, invoice.ListFilter{}))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}

	assert.Equal(t, []string{"invoices.csv", "invoice_INV_2026-001_20260301.pdf"}, names)
}

func TestFileName(t *testing.T) {
	inv := &invoice.Invoice{Number: "A/B 7", IssuedDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, "invoice_A_B_7_20260102", FileName(inv))
}
