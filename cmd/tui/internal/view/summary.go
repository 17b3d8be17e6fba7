package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/report"
)

type SummaryModel struct {
	CommonModel
	reportService *report.Service
	scope         access.Scope

	summary *report.Summary
	loading bool
	err     error
}

func NewSummaryModel(svc *report.Service, scope access.Scope) SummaryModel {
	return SummaryModel{reportService: svc, scope: scope, loading: true}
}

func (m SummaryModel) Title() string     { return "Summary" }
func (m SummaryModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m SummaryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSummaryMsg:
		m.loading = false
		m.summary = msg.summary
		m.err = msg.err

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m SummaryModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.loading {
		return style.Render("Loading summary...")
	}

	if m.err != nil {
		return style.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	s := m.summary

	var b strings.Builder

	fmt.Fprintf(&b, "Invoices:    %d\n", s.InvoiceCount)
	fmt.Fprintf(&b, "Invoiced:    %s\n", FormatMoney(s.TotalInvoiced))
	fmt.Fprintf(&b, "Received:    %s\n", FormatMoney(s.TotalPaid))
	fmt.Fprintf(&b, "Outstanding: %s\n", activeStyle(FormatMoney(s.Outstanding)))
	fmt.Fprintf(&b, "Overdue:     %d\n\nBy status:\n", s.OverdueCount)

	for _, st := range invoice.Statuses {
		fmt.Fprintf(&b, "  %-10s %d\n", st, s.Counts[st])
	}

	return style.Render(b.String())
}

type loadSummaryMsg struct {
	summary *report.Summary
	err     error
}

func (m SummaryModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		summary, err := m.reportService.Summary(ctx, m.scope)

		return loadSummaryMsg{summary: summary, err: err}
	}
}
