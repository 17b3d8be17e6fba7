package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/report"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_Summary(t *testing.T) {
	scope := access.Owner(uuid.New())

	t.Run("FoldsStatuses", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := report.NewMockRepository(ctrl)

		repo.EXPECT().TotalsByStatus(gomock.Any(), scope).Return([]report.StatusTotals{
			{Status: invoice.StatusPaid, Count: 2, Total: dec("300"), Paid: dec("300"), Balance: dec("0")},
			{Status: invoice.StatusPending, Count: 1, Total: dec("100"), Paid: dec("60"), Balance: dec("40")},
			{Status: invoice.StatusOverdue, Count: 3, Total: dec("90"), Paid: dec("0"), Balance: dec("90")},
			{Status: invoice.StatusCancelled, Count: 1, Total: dec("500"), Paid: dec("20"), Balance: dec("480")},
		}, nil)

		got, err := report.NewService(repo).Summary(context.Background(), scope)
		require.NoError(t, err)

		assert.Equal(t, 7, got.InvoiceCount)
		assert.Equal(t, 3, got.OverdueCount)
		assert.Equal(t, 0, got.Counts[invoice.StatusDraft])
		assert.Len(t, got.Counts, len(invoice.Statuses))
		assert.True(t, dec("490").Equal(got.TotalInvoiced), got.TotalInvoiced.String())
		assert.True(t, dec("380").Equal(got.TotalPaid), got.TotalPaid.String())
		assert.True(t, dec("130").Equal(got.Outstanding), got.Outstanding.String())
	})

	t.Run("Empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := report.NewMockRepository(ctrl)

		repo.EXPECT().TotalsByStatus(gomock.Any(), scope).Return(nil, nil)

		got, err := report.NewService(repo).Summary(context.Background(), scope)
		require.NoError(t, err)
		assert.Zero(t, got.InvoiceCount)
		assert.True(t, got.Outstanding.IsZero())
	})

	t.Run("RepoError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := report.NewMockRepository(ctrl)

		repo.EXPECT().TotalsByStatus(gomock.Any(), scope).Return(nil, errors.New("db error"))

		_, err := report.NewService(repo).Summary(context.Background(), scope)
		assert.Error(t, err)
	})
}
