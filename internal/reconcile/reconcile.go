// Package reconcile derives an invoice's status from its payment ledger.
//
// Only payment events move an invoice here. Recording a payment that brings
// the paid sum to the total marks the invoice paid from any state, and once
// paid a later recording never demotes it. Removing a payment demotes a paid
// invoice whose remaining sum falls short back to pending. Amending a payment
// in place (amount, date, or even the invoice it belongs to) moves nothing.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
)

type Event int

const (
	PaymentRecorded Event = iota + 1
	PaymentRemoved
	PaymentAmended
)

func (e Event) String() string {
	switch e {
	case PaymentRecorded:
		return "payment_recorded"
	case PaymentRemoved:
		return "payment_removed"
	case PaymentAmended:
		return "payment_amended"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Ledger is the state a decision is taken on: the invoice's current status,
// its total, and the sum of payments after the event was applied.
type Ledger struct {
	Status invoice.Status
	Total  decimal.Decimal
	Paid   decimal.Decimal
}

func (l Ledger) settled() bool {
	return l.Paid.GreaterThanOrEqual(l.Total)
}

// Decision is the outcome of Next. Rule names the edge taken, empty when the
// status stays put.
type Decision struct {
	From invoice.Status
	To   invoice.Status
	Rule string
}

func (d Decision) Changed() bool {
	return d.From != d.To
}

const (
	RuleSettled  = "settled"
	RuleReopened = "reopened"
)

// Next returns the status that follows ev. It rejects statuses and events it
// does not know so that a new value cannot fall through silently.
func Next(ev Event, l Ledger) (Decision, error) {
	if !l.Status.Valid() {
		return Decision{}, fmt.Errorf("reconcile: unknown invoice status %q", l.Status)
	}

	stay := Decision{From: l.Status, To: l.Status}

	switch ev {
	case PaymentRecorded:
		if l.settled() && l.Status != invoice.StatusPaid {
			return Decision{From: l.Status, To: invoice.StatusPaid, Rule: RuleSettled}, nil
		}

		return stay, nil
	case PaymentRemoved:
		if !l.settled() && l.Status == invoice.StatusPaid {
			return Decision{From: l.Status, To: invoice.StatusPending, Rule: RuleReopened}, nil
		}

		return stay, nil
	case PaymentAmended:
		return stay, nil
	default:
		return Decision{}, fmt.Errorf("reconcile: unknown event %s", ev)
	}
}
