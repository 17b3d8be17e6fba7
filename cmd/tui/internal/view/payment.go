package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
)

type paymentState int

const (
	paymentStateForm paymentState = iota
	paymentStateSaving
	paymentStateResult
)

// paymentFields holds the form bindings; huh writes through these pointers.
type paymentFields struct {
	number    string
	amount    string
	date      string
	method    payment.Method
	reference string
}

type PaymentModel struct {
	CommonModel
	invoiceService *invoice.Service
	paymentService *payment.Service
	scope          access.Scope

	state  paymentState
	form   *huh.Form
	fields *paymentFields

	status string
	err    error
}

// NewPaymentModel opens the form, optionally prefilled with an invoice number.
func NewPaymentModel(invSvc *invoice.Service, paySvc *payment.Service, scope access.Scope, number string) PaymentModel {
	fields := &paymentFields{
		number: number,
		date:   FormatDate(time.Now()),
		method: payment.MethodBankTransfer,
	}

	return PaymentModel{
		invoiceService: invSvc,
		paymentService: paySvc,
		scope:          scope,
		fields:         fields,
		form:           buildPaymentForm(fields),
	}
}

func buildPaymentForm(f *paymentFields) *huh.Form {
	methods := make([]huh.Option[payment.Method], 0, len(payment.Methods))
	for _, method := range payment.Methods {
		methods = append(methods, huh.NewOption(strings.ReplaceAll(string(method), "_", " "), method))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("number").
				Title("Invoice Number").
				Value(&f.number).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("invoice number cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("0.00").
				Value(&f.amount).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil || !d.IsPositive() {
						return fmt.Errorf("amount must be a positive number")
					}
					return nil
				}),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder(dateLayout).
				Value(&f.date).
				Validate(func(s string) error {
					if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("date must be YYYY-MM-DD")
					}
					return nil
				}),

			huh.NewSelect[payment.Method]().
				Key("method").
				Title("Method").
				Options(methods...).
				Value(&f.method),

			huh.NewInput().
				Key("reference").
				Title("Reference").
				Value(&f.reference),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m PaymentModel) Title() string { return "Record Payment" }
func (m PaymentModel) ShortHelp() string {
	if m.state == paymentStateResult {
		return "Esc: back | n: new payment"
	}
	return "Navigate form | Esc: back"
}

func (m PaymentModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m PaymentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(paymentResultMsg); ok {
		m.state = paymentStateResult
		m.err = result.err

		if result.err == nil {
			m.status = fmt.Sprintf("Recorded %s on %s. Invoice is now %s, %s still due.",
				FormatMoney(result.payment.Amount), result.invoice.Number, result.invoice.Status, FormatMoney(result.invoice.BalanceDue()))
		}

		return m, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	switch m.state {
	case paymentStateResult:
		if isKey && keyMsg.String() == "n" {
			next := NewPaymentModel(m.invoiceService, m.paymentService, m.scope, "")
			return next, next.Init()
		}

		return m, nil
	case paymentStateSaving:
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = paymentStateSaving

	return m, m.saveCmd()
}

func (m PaymentModel) View() string {
	switch m.state {
	case paymentStateSaving:
		return lipgloss.NewStyle().Padding(2).Render("Recording payment...")
	case paymentStateResult:
		if m.err != nil {
			return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back, n for another)")
		}

		return lipgloss.NewStyle().Padding(2).Render(okStyle(m.status) + "\n\n(Esc to go back, n for another)")
	}

	return lipgloss.NewStyle().Padding(1).Render("Record Payment\n\n" + m.form.View())
}

type paymentResultMsg struct {
	payment *payment.Payment
	invoice *invoice.Invoice
	err     error
}

func (m PaymentModel) saveCmd() tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := m.invoiceService.FindByNumber(ctx, m.scope, strings.TrimSpace(f.number))
		if err != nil {
			return paymentResultMsg{err: err}
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
		if err != nil {
			return paymentResultMsg{err: err}
		}

		date, err := time.Parse(dateLayout, strings.TrimSpace(f.date))
		if err != nil {
			return paymentResultMsg{err: err}
		}

		params := payment.CreateParams{
			Amount:    amount,
			Date:      date,
			Method:    f.method,
			InvoiceID: inv.ID,
		}
		if ref := strings.TrimSpace(f.reference); ref != "" {
			params.Reference = &ref
		}

		p, err := m.paymentService.Record(ctx, m.scope, params)
		if err != nil {
			return paymentResultMsg{err: err}
		}

		updated, err := m.invoiceService.Get(ctx, m.scope, inv.ID)
		if err != nil {
			return paymentResultMsg{err: err}
		}

		return paymentResultMsg{payment: p, invoice: updated}
	}
}
