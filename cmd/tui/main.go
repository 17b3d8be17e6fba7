package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invoiceai/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/client"
	clientStore "github.com/MrJamesThe3rd/invoiceai/internal/client/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/config"
	"github.com/MrJamesThe3rd/invoiceai/internal/database"
	"github.com/MrJamesThe3rd/invoiceai/internal/export"
	"github.com/MrJamesThe3rd/invoiceai/internal/importer"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoiceai/internal/invoice/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
	paymentStore "github.com/MrJamesThe3rd/invoiceai/internal/payment/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/report"
	reportStore "github.com/MrJamesThe3rd/invoiceai/internal/report/store"
	"github.com/MrJamesThe3rd/invoiceai/internal/user"
	userStore "github.com/MrJamesThe3rd/invoiceai/internal/user/store"
)

type model struct {
	clientService  *client.Service
	invoiceService *invoice.Service
	paymentService *payment.Service
	reportService  *report.Service
	importService  *importer.Service
	exportService  *export.Service

	operator *user.User
	scope    access.Scope

	currentView View

	clientsView  view.ClientsModel
	invoicesView view.InvoicesModel
	paymentView  view.PaymentModel
	importView   view.ImportModel
	exportView   view.ExportModel
	summaryView  view.SummaryModel
}

type View int

const (
	ViewMenu     View = 0
	ViewClients  View = 1
	ViewInvoices View = 2
	ViewPayment  View = 3
	ViewImport   View = 4
	ViewExport   View = 5
	ViewSummary  View = 6
)

func initialModel() (model, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadDatabase()
	if err != nil {
		return model{}, fmt.Errorf("loading config: %w", err)
	}

	if cfg.TUI.UserEmail == "" {
		return model{}, errors.New("TUI_USER_EMAIL is required")
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return model{}, fmt.Errorf("connecting to database: %w", err)
	}

	userSvc := user.NewService(userStore.New(db))

	ctx, cancel := view.DbCtx()
	defer cancel()

	operator, err := userSvc.FindByEmail(ctx, cfg.TUI.UserEmail)
	if err != nil {
		return model{}, fmt.Errorf("looking up %s: %w", cfg.TUI.UserEmail, err)
	}

	if !operator.IsActive {
		return model{}, fmt.Errorf("user %s is inactive", operator.Email)
	}

	clientSvc := client.NewService(clientStore.New(db))
	invoiceSvc := invoice.NewService(invoiceStore.New(db), clientSvc)
	paymentSvc := payment.NewService(paymentStore.New(db), invoiceSvc, logNotifier{})

	return model{
		clientService:  clientSvc,
		invoiceService: invoiceSvc,
		paymentService: paymentSvc,
		reportService:  report.NewService(reportStore.New(db)),
		importService:  importer.NewService(invoiceSvc, paymentSvc),
		exportService:  export.NewService(invoiceSvc, clientSvc, paymentSvc),
		operator:       operator,
		scope:          access.Owner(operator.ID),
		currentView:    ViewMenu,
	}, nil
}

// logNotifier records status changes made from the console; there are no
// websocket subscribers in this process.
type logNotifier struct{}

func (logNotifier) InvoiceStatusChanged(_ context.Context, c payment.StatusChange) {
	slog.Debug("invoice status changed", "invoice", c.Number, "from", c.From, "to", c.To)
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewClients
				m.clientsView = view.NewClientsModel(m.clientService, m.scope)

				return m, m.clientsView.Init()
			case "2":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.invoiceService, m.paymentService, m.scope)

				return m, m.invoicesView.Init()
			case "3":
				return m.openPayment("")
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importService, m.scope)

				return m, m.importView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.scope)

				return m, m.exportView.Init()
			case "6":
				m.currentView = ViewSummary
				m.summaryView = view.NewSummaryModel(m.reportService, m.scope)

				return m, m.summaryView.Init()
			}
		}
	case view.RecordPaymentMsg:
		return m.openPayment(msg.Number)
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewClients:
		var newModel tea.Model
		newModel, cmd = m.clientsView.Update(msg)
		m.clientsView = newModel.(view.ClientsModel)
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	case ViewPayment:
		var newModel tea.Model
		newModel, cmd = m.paymentView.Update(msg)
		m.paymentView = newModel.(view.PaymentModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	case ViewSummary:
		var newModel tea.Model
		newModel, cmd = m.summaryView.Update(msg)
		m.summaryView = newModel.(view.SummaryModel)
	}

	return m, cmd
}

func (m model) openPayment(number string) (tea.Model, tea.Cmd) {
	m.currentView = ViewPayment
	m.paymentView = view.NewPaymentModel(m.invoiceService, m.paymentService, m.scope, number)

	return m, m.paymentView.Init()
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"InvoiceAI Console (" + m.operator.Email + ")\n\n" +
				"1. Clients\n" +
				"2. Invoices\n" +
				"3. Record Payment\n" +
				"4. Import Payments\n" +
				"5. Export Invoices\n" +
				"6. Summary\n\n" +
				"q. Quit",
		)
	case ViewClients:
		return m.clientsView.View()
	case ViewInvoices:
		return m.invoicesView.View()
	case ViewPayment:
		return m.paymentView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	case ViewSummary:
		return m.summaryView.View()
	}

	return "Unknown View"
}

func main() {
	m, err := initialModel()
	if err != nil {
		slog.Error("failed to start console", "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
