package validate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
)

type line struct {
	Quantity decimal.Decimal `validate:"gt=0"`
}

type amounts struct {
	Price    decimal.Decimal  `validate:"gt=0,money"`
	Quantity decimal.Decimal  `validate:"gt=0,qty"`
	Discount *decimal.Decimal `validate:"omitnil,gte=0,money"`
}

type sample struct {
	Name     string          `validate:"required,min=2,max=100"`
	ClientID uuid.UUID       `validate:"required"`
	Total    decimal.Decimal `validate:"gt=0"`
	Tax      decimal.Decimal `validate:"gte=0"`
	Lines    []line          `validate:"dive"`
	Renamed  string          `json:"alias" validate:"omitempty,email"`
}

func TestStruct(t *testing.T) {
	valid := sample{
		Name:     "Acme",
		ClientID: uuid.New(),
		Total:    decimal.RequireFromString("10.00"),
		Lines:    []line{{Quantity: decimal.NewFromInt(1)}},
	}

	require.NoError(t, Struct(valid))

	bad := valid
	bad.Name = "A"
	bad.ClientID = uuid.Nil
	bad.Total = decimal.Zero
	bad.Tax = decimal.NewFromInt(-1)
	bad.Lines = []line{{Quantity: decimal.NewFromInt(1)}, {Quantity: decimal.Zero}}
	bad.Renamed = "not-an-email"

	err := Struct(bad)
	require.Error(t, err)

	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)

	assert.Equal(t, map[string]string{
		"name":              "must have at least 2 characters",
		"client_id":         "field required",
		"total":             "must be greater than 0",
		"tax":               "must be greater than or equal to 0",
		"lines[1].quantity": "must be greater than 0",
		"alias":             "value is not a valid email address",
	}, ve.Fields)
}

func TestStruct_DecimalPrecision(t *testing.T) {
	tests := []struct {
		name      string
		price     string
		quantity  string
		discount  *string
		wantField string
	}{
		{name: "TwoPlaces", price: "10.01", quantity: "1"},
		{name: "TrailingZeros", price: "10.500", quantity: "1.2500"},
		{name: "LargestPrice", price: "9999999999.99", quantity: "999999999.999"},
		{name: "NilDiscountSkipped", price: "1", quantity: "1"},
		{name: "ThreePlacePrice", price: "10.005", quantity: "1", wantField: "price"},
		{name: "SubCentPrice", price: "0.001", quantity: "1", wantField: "price"},
		{name: "PriceOverflow", price: "100000000000", quantity: "1", wantField: "price"},
		{name: "PriceAtLimit", price: "10000000000", quantity: "1", wantField: "price"},
		{name: "FourPlaceQuantity", price: "1", quantity: "0.0005", wantField: "quantity"},
		{name: "QuantityOverflow", price: "1", quantity: "1000000000", wantField: "quantity"},
		{name: "DiscountPrecision", price: "1", quantity: "1", discount: new("0.125"), wantField: "discount"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := amounts{
				Price:    decimal.RequireFromString(tc.price),
				Quantity: decimal.RequireFromString(tc.quantity),
			}
			if tc.discount != nil {
				in.Discount = new(decimal.RequireFromString(*tc.discount))
			}

			err := Struct(in)
			if tc.wantField == "" {
				require.NoError(t, err)
				return
			}

			ve, ok := apperr.AsValidation(err)
			require.True(t, ok)
			require.Len(t, ve.Fields, 1)
			assert.Contains(t, ve.Fields[tc.wantField], "decimal places")
		})
	}
}

func TestSnake(t *testing.T) {
	assert.Equal(t, "client_id", snake("ClientID"))
	assert.Equal(t, "unit_price", snake("UnitPrice"))
	assert.Equal(t, "name", snake("Name"))
}
