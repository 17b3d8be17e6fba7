package invoice_test

import (
	"context"
	"errors"
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
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validParams(clientID uuid.UUID) invoice.CreateParams {
	return invoice.CreateParams{
		Number:     "INV-001",
		IssuedDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Subtotal:   dec("100.00"),
		Total:      dec("100.00"),
		ClientID:   clientID,
		Items: []invoice.ItemParams{
			{Description: "Design", Quantity: dec("2"), UnitPrice: dec("25.00"), Amount: dec("50.00")},
			{Description: "Build", Quantity: dec("1"), UnitPrice: dec("50.00"), Amount: dec("50.00")},
		},
	}
}

func TestService_Create(t *testing.T) {
	owner := uuid.New()
	scope := access.Owner(owner)
	clientID := uuid.New()

	type testCase struct {
		name        string
		params      func() invoice.CreateParams
		setupMock   func(repo *invoice.MockRepository, clients *invoice.MockClientLookup)
		wantErr     error
		wantField   string
		checkResult func(t *testing.T, inv *invoice.Invoice)
	}

	tests := []testCase{
		{
			name:   "DefaultsToDraftAndInheritsClientOwner",
			params: func() invoice.CreateParams { return validParams(clientID) },
			setupMock: func(repo *invoice.MockRepository, clients *invoice.MockClientLookup) {
				clients.EXPECT().Get(gomock.Any(), scope, clientID).Return(&client.Client{ID: clientID, UserID: owner}, nil)
				repo.EXPECT().
					CreateInvoice(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
						inv.ID = uuid.New()
						return nil
					})
			},
			checkResult: func(t *testing.T, inv *invoice.Invoice) {
				assert.Equal(t, invoice.StatusDraft, inv.Status)
				assert.Equal(t, owner, inv.UserID)
				assert.Len(t, inv.Items, 2)
				assert.True(t, inv.Tax.IsZero())
				assert.True(t, inv.Discount.IsZero())
			},
		},
		{
			name: "ItemAmountIsNotRecomputed",
			params: func() invoice.CreateParams {
				p := validParams(clientID)
				p.Items[0].Amount = dec("49.99")
				return p
			},
			setupMock: func(repo *invoice.MockRepository, clients *invoice.MockClientLookup) {
				clients.EXPECT().Get(gomock.Any(), scope, clientID).Return(&client.Client{ID: clientID, UserID: owner}, nil)
				repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)
			},
			checkResult: func(t *testing.T, inv *invoice.Invoice) {
				assert.True(t, dec("49.99").Equal(inv.Items[0].Amount))
			},
		},
		{
			name: "OneInvalidItemWritesNothing",
			params: func() invoice.CreateParams {
				p := validParams(clientID)
				p.Items[1].Quantity = dec("0")
				return p
			},
			wantField: "items[1].quantity",
		},
		{
			name: "NonPositiveTotal",
			params: func() invoice.CreateParams {
				p := validParams(clientID)
				p.Total = dec("0")
				return p
			},
			wantField: "total",
		},
		{
			name: "SubCentUnitPrice",
			params: func() invoice.CreateParams {
				p := validParams(clientID)
				p.Items[0].UnitPrice = dec("0.001")
				return p
			},
			wantField: "items[0].unit_price",
		},
		{
			name: "TotalBeyondColumnRange",
			params: func() invoice.CreateParams {
				p := validParams(clientID)
				p.Total = dec("100000000000")
				return p
			},
			wantField: "total",
		},
		{
			name:   "ClientNotOwned",
			params: func() invoice.CreateParams { return validParams(clientID) },
			setupMock: func(_ *invoice.MockRepository, clients *invoice.MockClientLookup) {
				clients.EXPECT().Get(gomock.Any(), scope, clientID).Return(nil, apperr.NotFound("client"))
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:   "StoreFailure",
			params: func() invoice.CreateParams { return validParams(clientID) },
			setupMock: func(repo *invoice.MockRepository, clients *invoice.MockClientLookup) {
				clients.EXPECT().Get(gomock.Any(), scope, clientID).Return(&client.Client{ID: clientID, UserID: owner}, nil)
				repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := invoice.NewMockRepository(ctrl)
			clients := invoice.NewMockClientLookup(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, clients)
			}

			got, err := invoice.NewService(repo, clients).Create(context.Background(), scope, tt.params())

			switch {
			case tt.wantField != "":
				ve, ok := apperr.AsValidation(err)
				require.True(t, ok, "expected validation error, got %v", err)
				assert.Contains(t, ve.Fields, tt.wantField)
				assert.Nil(t, got)
			case tt.wantErr != nil:
				require.Error(t, err)
				if errors.Is(tt.wantErr, apperr.ErrNotFound) {
					assert.ErrorIs(t, err, apperr.ErrNotFound)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				tt.checkResult(t, got)
			}
		})
	}
}

func existingInvoice(id uuid.UUID) *invoice.Invoice {
	return &invoice.Invoice{
		ID:       id,
		ClientID: uuid.New(),
		Number:   "INV-001",
		Status:   invoice.StatusPaid,
		Total:    dec("100.00"),
		Items: []invoice.Item{
			{ID: uuid.New(), Description: "Original", Quantity: dec("1"), UnitPrice: dec("100"), Amount: dec("100")},
		},
	}
}

func TestService_Update_Items(t *testing.T) {
	scope := access.Owner(uuid.New())
	id := uuid.New()

	t.Run("OmittedItemsAreUntouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := invoice.NewMockRepository(ctrl)

		repo.EXPECT().GetInvoice(gomock.Any(), scope, id).Return(existingInvoice(id), nil)
		repo.EXPECT().UpdateInvoice(gomock.Any(), scope, gomock.Any(), invoice.Write{}).Return(nil)

		got, err := invoice.NewService(repo, nil).Update(context.Background(), scope, id, invoice.UpdateParams{
			Notes: new("late fee waived"),
		})
		require.NoError(t, err)

		require.Len(t, got.Items, 1)
		assert.Equal(t, "Original", got.Items[0].Description)
	})

	t.Run("ProvidedItemsReplaceTheSet", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := invoice.NewMockRepository(ctrl)

		repo.EXPECT().GetInvoice(gomock.Any(), scope, id).Return(existingInvoice(id), nil)
		repo.EXPECT().UpdateInvoice(gomock.Any(), scope, gomock.Any(), invoice.Write{Items: true}).Return(nil)

		got, err := invoice.NewService(repo, nil).Update(context.Background(), scope, id, invoice.UpdateParams{
			Items: []invoice.ItemParams{
				{Description: "A", Quantity: dec("1"), UnitPrice: dec("10"), Amount: dec("10")},
				{Description: "B", Quantity: dec("2"), UnitPrice: dec("5"), Amount: dec("10")},
			},
		})
		require.NoError(t, err)

		require.Len(t, got.Items, 2)
		assert.Equal(t, "A", got.Items[0].Description)
		assert.Equal(t, "B", got.Items[1].Description)
	})

	t.Run("EmptyItemsClearTheSet", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := invoice.NewMockRepository(ctrl)

		repo.EXPECT().GetInvoice(gomock.Any(), scope, id).Return(existingInvoice(id), nil)
		repo.EXPECT().UpdateInvoice(gomock.Any(), scope, gomock.Any(), invoice.Write{Items: true}).Return(nil)

		got, err := invoice.NewService(repo, nil).Update(context.Background(), scope, id, invoice.UpdateParams{
			Items: []invoice.ItemParams{},
		})
		require.NoError(t, err)
		assert.Empty(t, got.Items)
	})
}

func TestService_Update_TotalEditDoesNotTouchStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)

	scope := access.Owner(uuid.New())
	id := uuid.New()

	repo.EXPECT().GetInvoice(gomock.Any(), scope, id).Return(existingInvoice(id), nil)
	repo.EXPECT().UpdateInvoice(gomock.Any(), scope, gomock.Any(), invoice.Write{}).Return(nil)

	got, err := invoice.NewService(repo, nil).Update(context.Background(), scope, id, invoice.UpdateParams{
		Total: new(dec("500.00")),
	})
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusPaid, got.Status)
	assert.True(t, dec("500.00").Equal(got.Total))
}

func TestService_Update_MoveToForeignClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	clients := invoice.NewMockClientLookup(ctrl)

	scope := access.Owner(uuid.New())
	id := uuid.New()
	foreign := uuid.New()

	repo.EXPECT().GetInvoice(gomock.Any(), scope, id).Return(existingInvoice(id), nil)
	clients.EXPECT().Get(gomock.Any(), scope, foreign).Return(nil, apperr.NotFound("client"))

	_, err := invoice.NewService(repo, clients).Update(context.Background(), scope, id, invoice.UpdateParams{
		ClientID: &foreign,
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Update_Status(t *testing.T) {
	scope := access.Owner(uuid.New())
	id := uuid.New()

	t.Run("OmittedStatusIsNotWritten", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := invoice.NewMockRepository(ctrl)

		stale := existingInvoice(id)
		stale.Status = invoice.StatusPending

		repo.EXPECT().GetInvoice(gomock.Any(), scope, id).Return(stale, nil)
		repo.EXPECT().
			UpdateInvoice(gomock.Any(), scope, gomock.Any(), invoice.Write{}).
			DoAndReturn(func(_ context.Context, _ access.Scope, inv *invoice.Invoice, _ invoice.Write) error {
				inv.Status = invoice.StatusPaid
				return nil
			})

		got, err := invoice.NewService(repo, nil).Update(context.Background(), scope, id, invoice.UpdateParams{
			Notes: new("sent reminder"),
		})
		require.NoError(t, err)
		assert.Equal(t, invoice.StatusPaid, got.Status)
	})

	t.Run("ExplicitStatusIsWritten", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := invoice.NewMockRepository(ctrl)

		repo.EXPECT().GetInvoice(gomock.Any(), scope, id).Return(existingInvoice(id), nil)
		repo.EXPECT().
			UpdateInvoice(gomock.Any(), scope, gomock.Any(), invoice.Write{Status: true}).
			DoAndReturn(func(_ context.Context, _ access.Scope, inv *invoice.Invoice, _ invoice.Write) error {
				assert.Equal(t, invoice.StatusCancelled, inv.Status)
				return nil
			})

		_, err := invoice.NewService(repo, nil).Update(context.Background(), scope, id, invoice.UpdateParams{
			Status: new(invoice.StatusCancelled),
		})
		require.NoError(t, err)
	})
}

func TestService_Update_MoveAcrossOwners(t *testing.T) {
	owner := uuid.New()
	id := uuid.New()
	target := uuid.New()

	tests := []struct {
		name        string
		targetOwner uuid.UUID
		wantErr     error
	}{
		{name: "SameOwner", targetOwner: owner},
		{name: "OtherOwner", targetOwner: uuid.New(), wantErr: apperr.ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := invoice.NewMockRepository(ctrl)
			clients := invoice.NewMockClientLookup(ctrl)

			inv := existingInvoice(id)
			inv.UserID = owner

			repo.EXPECT().GetInvoice(gomock.Any(), access.Everyone(), id).Return(inv, nil)
			clients.EXPECT().
				Get(gomock.Any(), access.Everyone(), target).
				Return(&client.Client{ID: target, UserID: tc.targetOwner}, nil)

			if tc.wantErr == nil {
				repo.EXPECT().UpdateInvoice(gomock.Any(), access.Everyone(), gomock.Any(), invoice.Write{}).Return(nil)
			}

			got, err := invoice.NewService(repo, clients).Update(context.Background(), access.Everyone(), id, invoice.UpdateParams{
				ClientID: &target,
			})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, target, got.ClientID)
			assert.Equal(t, owner, got.UserID)
		})
	}
}

func TestService_Update_RejectsBlankNumber(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)

	_, err := invoice.NewService(repo, nil).Update(context.Background(), access.Owner(uuid.New()), uuid.New(), invoice.UpdateParams{
		Number: new(""),
	})

	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "number")
}

func TestService_Delete_ReturnsDeleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)

	scope := access.Owner(uuid.New())
	inv := existingInvoice(uuid.New())

	gomock.InOrder(
		repo.EXPECT().GetInvoice(gomock.Any(), scope, inv.ID).Return(inv, nil),
		repo.EXPECT().DeleteInvoice(gomock.Any(), scope, inv.ID).Return(nil),
	)

	got, err := invoice.NewService(repo, nil).Delete(context.Background(), scope, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
}

func TestInvoice_BalanceDue(t *testing.T) {
	inv := &invoice.Invoice{Total: dec("100"), AmountPaid: dec("60")}
	assert.True(t, dec("40").Equal(inv.BalanceDue()))

	inv.AmountPaid = dec("130")
	assert.True(t, inv.BalanceDue().IsZero())
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range invoice.Statuses {
		assert.True(t, s.Valid(), s)
	}

	assert.False(t, invoice.Status("archived").Valid())
}
