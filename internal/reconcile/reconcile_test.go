package reconcile_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/reconcile"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNext(t *testing.T) {
	type testCase struct {
		name     string
		event    reconcile.Event
		status   invoice.Status
		paid     string
		want     invoice.Status
		wantRule string
	}

	tests := []testCase{
		{name: "RecordedCoversTotalFromDraft", event: reconcile.PaymentRecorded, status: invoice.StatusDraft, paid: "100.00", want: invoice.StatusPaid, wantRule: reconcile.RuleSettled},
		{name: "RecordedCoversTotalFromPending", event: reconcile.PaymentRecorded, status: invoice.StatusPending, paid: "100.00", want: invoice.StatusPaid, wantRule: reconcile.RuleSettled},
		{name: "RecordedCoversTotalFromOverdue", event: reconcile.PaymentRecorded, status: invoice.StatusOverdue, paid: "120.00", want: invoice.StatusPaid, wantRule: reconcile.RuleSettled},
		{name: "RecordedCoversTotalFromCancelled", event: reconcile.PaymentRecorded, status: invoice.StatusCancelled, paid: "100.00", want: invoice.StatusPaid, wantRule: reconcile.RuleSettled},
		{name: "RecordedShortLeavesDraft", event: reconcile.PaymentRecorded, status: invoice.StatusDraft, paid: "60.00", want: invoice.StatusDraft},
		{name: "RecordedShortLeavesOverdue", event: reconcile.PaymentRecorded, status: invoice.StatusOverdue, paid: "99.99", want: invoice.StatusOverdue},
		{name: "RecordedNeverDemotesPaid", event: reconcile.PaymentRecorded, status: invoice.StatusPaid, paid: "10.00", want: invoice.StatusPaid},
		{name: "RemovedBelowTotalReopensPaid", event: reconcile.PaymentRemoved, status: invoice.StatusPaid, paid: "60.00", want: invoice.StatusPending, wantRule: reconcile.RuleReopened},
		{name: "RemovedStillCoveredKeepsPaid", event: reconcile.PaymentRemoved, status: invoice.StatusPaid, paid: "100.00", want: invoice.StatusPaid},
		{name: "RemovedLeavesOverdueAlone", event: reconcile.PaymentRemoved, status: invoice.StatusOverdue, paid: "0", want: invoice.StatusOverdue},
		{name: "RemovedLeavesDraftAlone", event: reconcile.PaymentRemoved, status: invoice.StatusDraft, paid: "0", want: invoice.StatusDraft},
		{name: "RemovedLeavesCancelledAlone", event: reconcile.PaymentRemoved, status: invoice.StatusCancelled, paid: "0", want: invoice.StatusCancelled},
		{name: "AmendedCoveringTotalMovesNothing", event: reconcile.PaymentAmended, status: invoice.StatusPending, paid: "500.00", want: invoice.StatusPending},
		{name: "AmendedBelowTotalKeepsPaid", event: reconcile.PaymentAmended, status: invoice.StatusPaid, paid: "1.00", want: invoice.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reconcile.Next(tt.event, reconcile.Ledger{
				Status: tt.status,
				Total:  dec("100.00"),
				Paid:   dec(tt.paid),
			})
			require.NoError(t, err)

			assert.Equal(t, tt.status, got.From)
			assert.Equal(t, tt.want, got.To)
			assert.Equal(t, tt.wantRule, got.Rule)
			assert.Equal(t, tt.status != tt.want, got.Changed())
		})
	}
}

func TestNext_PartialPaymentsScenario(t *testing.T) {
	total := dec("100.00")
	status := invoice.StatusPending

	step := func(ev reconcile.Event, paid string) invoice.Status {
		d, err := reconcile.Next(ev, reconcile.Ledger{Status: status, Total: total, Paid: dec(paid)})
		require.NoError(t, err)

		status = d.To

		return status
	}

	assert.Equal(t, invoice.StatusPending, step(reconcile.PaymentRecorded, "60.00"))
	assert.Equal(t, invoice.StatusPaid, step(reconcile.PaymentRecorded, "100.00"))
	assert.Equal(t, invoice.StatusPending, step(reconcile.PaymentRemoved, "60.00"))
}

func TestNext_RejectsUnknownInput(t *testing.T) {
	_, err := reconcile.Next(reconcile.PaymentRecorded, reconcile.Ledger{Status: "archived"})
	assert.Error(t, err)

	_, err = reconcile.Next(reconcile.Event(42), reconcile.Ledger{Status: invoice.StatusDraft})
	assert.Error(t, err)
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "payment_recorded", reconcile.PaymentRecorded.String())
	assert.Equal(t, "payment_removed", reconcile.PaymentRemoved.String())
	assert.Equal(t, "payment_amended", reconcile.PaymentAmended.String())
	assert.Equal(t, "event(42)", reconcile.Event(42).String())
}
