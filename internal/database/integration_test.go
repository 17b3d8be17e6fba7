//go:build integration

package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/client"
	clientStore "github.com/MrJamesThe3rd/invoiceai/internal/client/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/database"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoiceai/internal/invoice/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
	paymentStore "github.com/MrJamesThe3rd/invoiceai/internal/payment/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/report"
	reportStore "github.com/MrJamesThe3rd/invoiceai/internal/report/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/user"
	userStore "github.com/MrJamesThe3rd/invoiceai/internal/user/store"
)

type recorder struct {
	changes []payment.StatusChange
}

func (r *recorder) InvoiceStatusChanged(_ context.Context, c payment.StatusChange) {
	r.changes = append(r.changes, c)
}

type services struct {
	db       *sql.DB
	users    *user.Service
	clients  *client.Service
	invoices *invoice.Service
	payments *payment.Service
	reports  *report.Service
	events   *recorder
}

func setup(t *testing.T) services {
	t.Helper()

	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("invoiceai"),
		postgres.WithUsername("invoiceai"),
		postgres.WithPassword("invoiceai"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	// A second run is a no-op.
	require.NoError(t, database.Migrate(db))

	return newServices(db)
}

func newServices(db *sql.DB) services {
	ev := &recorder{}
	clients := client.NewService(clientStore.New(db))
	invoices := invoice.NewService(invoiceStore.New(db), clients)

	return services{
		db:       db,
		users:    user.NewService(userStore.New(db)),
		clients:  clients,
		invoices: invoices,
		payments: payment.NewService(paymentStore.New(db), invoices, ev),
		reports:  report.NewService(reportStore.New(db)),
		events:   ev,
	}
}

func provision(t *testing.T, s services, email string) *user.User {
	t.Helper()

	u, err := s.users.Provision(context.Background(), user.ProvisionParams{ExternalID: "ext-" + email, Email: email, FullName: email})
	require.NoError(t, err)

	return u
}

func TestLifecycle(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	alice := provision(t, s, "alice@example.com")
	bob := provision(t, s, "bob@example.com")

	again := provision(t, s, "alice@example.com")
	assert.Equal(t, alice.ID, again.ID)

	aliceScope := access.Owner(alice.ID)
	bobScope := access.Owner(bob.ID)

	acme, err := s.clients.Create(ctx, alice.ID, client.CreateParams{Name: "Acme", Email: "billing@acme.test"})
	require.NoError(t, err)

	inv, err := s.invoices.Create(ctx, aliceScope, invoice.CreateParams{
		Number:     "INV-001",
		Status:     invoice.StatusPending,
		IssuedDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Subtotal:   decimal.RequireFromString("100.00"),
		Tax:        decimal.RequireFromString("23.00"),
		Total:      decimal.RequireFromString("123.00"),
		ClientID:   acme.ID,
		Items: []invoice.ItemParams{
			{Description: "Consulting", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50), Amount: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, inv.UserID)

	t.Run("OtherOwnerSeesNothing", func(t *testing.T) {
		_, err := s.invoices.Get(ctx, bobScope, inv.ID)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))

		_, err = s.clients.Get(ctx, bobScope, acme.ID)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))

		_, err = s.payments.Record(ctx, bobScope, payment.CreateParams{
			Amount: decimal.NewFromInt(1), Date: time.Now(), Method: payment.MethodCash, InvoiceID: inv.ID,
		})
		assert.True(t, errors.Is(err, apperr.ErrNotFound))

		list, err := s.invoices.List(ctx, bobScope, invoice.ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("PartialThenFullPaymentSettles", func(t *testing.T) {
		_, err := s.payments.Record(ctx, aliceScope, payment.CreateParams{
			Amount: decimal.RequireFromString("23.00"), Date: time.Now(), Method: payment.MethodCash, InvoiceID: inv.ID,
		})
		require.NoError(t, err)

		got, err := s.invoices.Get(ctx, aliceScope, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPending, got.Status)
		assert.True(t, got.AmountPaid.Equal(decimal.RequireFromString("23.00")))

		last, err := s.payments.Record(ctx, aliceScope, payment.CreateParams{
			Amount: decimal.RequireFromString("100.00"), Date: time.Now(), Method: payment.MethodBankTransfer, InvoiceID: inv.ID,
		})
		require.NoError(t, err)

		got, err = s.invoices.Get(ctx, aliceScope, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPaid, got.Status)
		assert.True(t, got.BalanceDue().IsZero())
		require.Len(t, s.events.changes, 1)
		assert.Equal(t, invoice.StatusPaid, s.events.changes[0].To)

		_, err = s.payments.Delete(ctx, aliceScope, last.ID)
		require.NoError(t, err)

		got, err = s.invoices.Get(ctx, aliceScope, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPending, got.Status)
	})

	t.Run("Summary", func(t *testing.T) {
		sum, err := s.reports.Summary(ctx, aliceScope)
		require.NoError(t, err)

		assert.Equal(t, 1, sum.InvoiceCount)
		assert.True(t, sum.TotalInvoiced.Equal(decimal.RequireFromString("123.00")))
		assert.True(t, sum.Outstanding.Equal(decimal.RequireFromString("100.00")))

		empty, err := s.reports.Summary(ctx, bobScope)
		require.NoError(t, err)
		assert.Zero(t, empty.InvoiceCount)
	})

	t.Run("StaleHeaderWriteKeepsSettledStatus", func(t *testing.T) {
		stale, err := s.invoices.Get(ctx, aliceScope, inv.ID)
		require.NoError(t, err)
		require.Equal(t, invoice.StatusPending, stale.Status)

		_, err = s.payments.Record(ctx, aliceScope, payment.CreateParams{
			Amount: decimal.RequireFromString("100.00"), Date: time.Now(), Method: payment.MethodCash, InvoiceID: inv.ID,
		})
		require.NoError(t, err)

		stale.Notes = new("reminder sent")
		require.NoError(t, invoiceStore.New(s.db).UpdateInvoice(ctx, aliceScope, stale, invoice.Write{}))
		assert.Equal(t, invoice.StatusPaid, stale.Status)

		got, err := s.invoices.Get(ctx, aliceScope, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPaid, got.Status)
		assert.Equal(t, "reminder sent", *got.Notes)
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		_, err := s.invoices.Delete(ctx, aliceScope, inv.ID)
		require.NoError(t, err)

		payments, err := s.payments.List(ctx, aliceScope, payment.ListFilter{InvoiceID: &inv.ID})
		require.NoError(t, err)
		assert.Empty(t, payments)
	})
}
