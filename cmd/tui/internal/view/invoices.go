package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/pagination"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
)

// RecordPaymentMsg asks the console to open the payment form for an invoice.
type RecordPaymentMsg struct {
	Number string
}

type InvoicesModel struct {
	CommonModel
	invoiceService *invoice.Service
	paymentService *payment.Service
	scope          access.Scope

	table    table.Model
	invoices []*invoice.Invoice

	// Index into invoice.Statuses; -1 shows every status.
	statusIdx int

	detail   *invoice.Invoice
	payments []*payment.Payment

	loading bool
	err     error
	status  string
}

func NewInvoicesModel(invSvc *invoice.Service, paySvc *payment.Service, scope access.Scope) InvoicesModel {
	return InvoicesModel{
		invoiceService: invSvc,
		paymentService: paySvc,
		scope:          scope,
		statusIdx:      -1,
		loading:        true,
		table: newTable([]table.Column{
			{Title: "Number", Width: 14},
			{Title: "Status", Width: 10},
			{Title: "Issued", Width: 12},
			{Title: "Due", Width: 12},
			{Title: "Total", Width: 12},
			{Title: "Paid", Width: 12},
			{Title: "Balance", Width: 12},
		}),
	}
}

func (m InvoicesModel) Title() string { return "Invoices" }
func (m InvoicesModel) ShortHelp() string {
	if m.detail != nil {
		return "Esc: close | p: record payment"
	}
	return "Esc: back | Enter: details | p: record payment | s: status filter | r: refresh"
}

func (m InvoicesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		m.err = msg.err
		m.invoices = msg.invoices
		m.refreshTable()

		return m, nil

	case loadDetailMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading invoice: %v", msg.err)
			return m, nil
		}

		m.detail = msg.invoice
		m.payments = msg.payments

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			if m.detail != nil {
				m.detail = nil
				m.payments = nil
				m.table.Focus()

				return m, nil
			}

			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusIdx++
			if m.statusIdx >= len(invoice.Statuses) {
				m.statusIdx = -1
			}

			m.loading = true

			return m, m.loadCmd()
		case "enter":
			if inv := m.selected(); inv != nil {
				m.detail = inv
				m.status = ""
				m.table.Blur()

				return m, m.loadDetailCmd(inv.ID)
			}

			return m, nil
		case "p":
			if inv := m.selected(); inv != nil {
				return m, func() tea.Msg { return RecordPaymentMsg{Number: inv.Number} }
			}

			return m, nil
		}
	}

	if m.detail != nil {
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoicesModel) selected() *invoice.Invoice {
	if m.detail != nil {
		return m.detail
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invoices) {
		return nil
	}

	return m.invoices[idx]
}

func (m InvoicesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	filter := "All"
	if m.statusIdx >= 0 {
		filter = string(invoice.Statuses[m.statusIdx])
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(fmt.Sprintf("Filter: [s] Status: %s", activeStyle(filter))),
		boxed(m.table),
	)

	if m.detail != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(56).
			Render(m.viewDetail())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m InvoicesModel) viewDetail() string {
	inv := m.detail

	var b strings.Builder

	fmt.Fprintf(&b, "Invoice %s [%s]\n\n", inv.Number, inv.Status)
	fmt.Fprintf(&b, "Issued %s, due %s\n\n", FormatDate(inv.IssuedDate), FormatDate(inv.DueDate))

	for _, item := range inv.Items {
		fmt.Fprintf(&b, "  %s x %s  %s\n", item.Quantity.String(), item.Description, FormatMoney(item.Amount))
	}

	fmt.Fprintf(&b, "\nSubtotal %s  Tax %s  Discount %s\n", FormatMoney(inv.Subtotal), FormatMoney(inv.Tax), FormatMoney(inv.Discount))
	fmt.Fprintf(&b, "Total %s  Paid %s  Due %s\n\nPayments:\n", FormatMoney(inv.Total), FormatMoney(inv.AmountPaid), FormatMoney(inv.BalanceDue()))

	if len(m.payments) == 0 {
		b.WriteString("  none\n")
	}

	for _, p := range m.payments {
		fmt.Fprintf(&b, "  %s  %s  %s\n", FormatDate(p.Date), FormatMoney(p.Amount), p.Method)
	}

	return b.String()
}

func (m *InvoicesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.invoices))
	for _, inv := range m.invoices {
		rows = append(rows, table.Row{
			inv.Number,
			string(inv.Status),
			FormatDate(inv.IssuedDate),
			FormatDate(inv.DueDate),
			FormatMoney(inv.Total),
			FormatMoney(inv.AmountPaid),
			FormatMoney(inv.BalanceDue()),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadInvoicesMsg struct {
	invoices []*invoice.Invoice
	err      error
}

func (m InvoicesModel) loadCmd() tea.Cmd {
	filter := invoice.ListFilter{Page: pagination.Page{Limit: pagination.MaxLimit}}
	if m.statusIdx >= 0 {
		filter.Status = new(invoice.Statuses[m.statusIdx])
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invoices, err := m.invoiceService.List(ctx, m.scope, filter)

		return loadInvoicesMsg{invoices: invoices, err: err}
	}
}

type loadDetailMsg struct {
	invoice  *invoice.Invoice
	payments []*payment.Payment
	err      error
}

// loadDetailCmd reloads the invoice with its items alongside its payments.
func (m InvoicesModel) loadDetailCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := m.invoiceService.Get(ctx, m.scope, id)
		if err != nil {
			return loadDetailMsg{err: err}
		}

		payments, err := m.paymentService.List(ctx, m.scope, payment.ListFilter{InvoiceID: &id, Page: pagination.Page{Limit: pagination.MaxLimit}})

		return loadDetailMsg{invoice: inv, payments: payments, err: err}
	}
}
