package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/client"
)

type clientsState int

const (
	clientsStateBrowse clientsState = iota
	clientsStateSearch
)

type ClientsModel struct {
	CommonModel
	clientService *client.Service
	scope         access.Scope

	state   clientsState
	table   table.Model
	clients []*client.Client
	form    *huh.Form

	search  *string // bound to the search form across model copies
	loading bool
	err     error
}

func NewClientsModel(svc *client.Service, scope access.Scope) ClientsModel {
	return ClientsModel{
		clientService: svc,
		scope:         scope,
		search:        new(string),
		loading:       true,
		table: newTable([]table.Column{
			{Title: "Name", Width: 25},
			{Title: "Email", Width: 30},
			{Title: "Company", Width: 20},
			{Title: "Phone", Width: 15},
		}),
	}
}

func (m ClientsModel) Title() string { return "Clients" }
func (m ClientsModel) ShortHelp() string {
	if m.state == clientsStateSearch {
		return "Enter: search | Esc: cancel"
	}
	return "Esc: back | /: search | r: refresh"
}

func (m ClientsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadClientsMsg:
		m.loading = false
		m.err = msg.err
		m.clients = msg.clients
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == clientsStateSearch {
		return m.updateSearch(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "/":
			m.form = huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Key("search").
						Title("Search name or email").
						Value(m.search),
				),
			).WithWidth(45).WithShowHelp(false)
			m.state = clientsStateSearch
			m.table.Blur()

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ClientsModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = clientsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = clientsStateBrowse
	m.form = nil
	m.loading = true
	m.table.Focus()

	return m, m.loadCmd()
}

func (m ClientsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading clients...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	search := "none"
	if s := strings.TrimSpace(*m.search); s != "" {
		search = s
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(fmt.Sprintf("Search: %s | %d clients", activeStyle(search), len(m.clients))),
		boxed(m.table),
	)

	if m.state == clientsStateSearch && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ClientsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.clients))
	for _, c := range m.clients {
		rows = append(rows, table.Row{c.Name, c.Email, deref(c.Company), deref(c.Phone)})
	}

	m.table.SetRows(rows)
}

type loadClientsMsg struct {
	clients []*client.Client
	err     error
}

func (m ClientsModel) loadCmd() tea.Cmd {
	filter := client.ListFilter{}
	if s := strings.TrimSpace(*m.search); s != "" {
		filter.Search = &s
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		clients, err := m.clientService.List(ctx, m.scope, filter)

		return loadClientsMsg{clients: clients, err: err}
	}
}
