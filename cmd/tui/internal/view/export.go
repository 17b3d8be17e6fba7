package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/export"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
)

type exportState int

const (
	exportStatePath exportState = iota
	exportStateExporting
	exportStateResult
)

type ExportModel struct {
	CommonModel
	exportService *export.Service
	scope         access.Scope

	state   exportState
	err     error
	form    *huh.Form
	path    *string
	spinner spinner.Model
	written string
}

func NewExportModel(svc *export.Service, scope access.Scope) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	path := "./exports"

	return ExportModel{
		exportService: svc,
		scope:         scope,
		path:          &path,
		form:          buildPathForm(&path),
		spinner:       s,
	}
}

func (m ExportModel) Title() string { return "Export Invoices" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}
	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case exportStatePath:
		return m.updatePath(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(*m.path))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.written = result.file

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func buildPathForm(path *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports").
				Value(path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Exporting invoices...", m.spinner.View()),
		)

	case exportStateResult:
		if m.err != nil {
			return lipgloss.NewStyle().Padding(1).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
		}

		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				lipgloss.NewStyle().Bold(true).Render(okStyle("Export Complete!")),
				"",
				"Written to "+m.written,
			),
		)
	}

	return ""
}

type exportResultMsg struct {
	file string
	err  error
}

const exportTimeout = 2 * time.Minute

// runExportCmd writes the CSV summary and one PDF per invoice into a zip
// under dir.
func (m ExportModel) runExportCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportResultMsg{err: err}
		}

		name := filepath.Join(dir, fmt.Sprintf("invoices_%s.zip", time.Now().Format("20060102")))

		f, err := os.Create(name)
		if err != nil {
			return exportResultMsg{err: err}
		}

		err = m.exportService.WriteBundle(ctx, f, m.scope, invoice.ListFilter{})
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}

		if err != nil {
			_ = os.Remove(name)
			return exportResultMsg{err: err}
		}

		return exportResultMsg{file: name}
	}
}
