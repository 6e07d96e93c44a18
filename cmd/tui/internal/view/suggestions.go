package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/receipts/internal/confirm"
	"github.com/MrJamesThe3rd/receipts/internal/engine"
	"github.com/MrJamesThe3rd/receipts/internal/matching"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

type suggestionsState int

const (
	suggestionsStateBrowse suggestionsState = iota
	suggestionsStateConfirm
	suggestionsStateCommitting
)

const (
	actionLinkOnly   = "link"
	actionLinkUpdate = "update"
	actionCancel     = "cancel"
)

// confirmBinding holds the form values. It lives on the heap so the form
// keeps writing to it across model copies.
type confirmBinding struct {
	action string
	fields []matching.Field
}

type SuggestionsModel struct {
	CommonModel
	engine *engine.Engine

	receipt     receipt.UnifiedReceipt
	suggestions []matching.Suggestion
	table       table.Model

	state    suggestionsState
	selected confirm.SelectedMatch
	form     *huh.Form
	binding  *confirmBinding

	loading bool
	err     error
	status  string
}

func NewSuggestionsModel(e *engine.Engine, r receipt.UnifiedReceipt) SuggestionsModel {
	t := newTable([]table.Column{
		{Title: "Conf", Width: 6},
		{Title: "Tier", Width: 7},
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 10},
		{Title: "Description", Width: 36},
	})

	return SuggestionsModel{
		engine:  e,
		receipt: r,
		table:   t,
		loading: true,
	}
}

func (m SuggestionsModel) Title() string { return "Match Suggestions" }
func (m SuggestionsModel) ShortHelp() string {
	if m.state == suggestionsStateConfirm {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: confirm match"
}

func (m SuggestionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SuggestionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case suggestionsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.suggestions = msg.suggestions
		m.refreshTable()

		return m, nil

	case committedMsg:
		m.state = suggestionsStateBrowse
		m.table.Focus()

		if msg.err != nil {
			m.status = describeCommitError(msg.err)
			return m, nil
		}

		return m, Back

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 16)
		return m, nil
	}

	switch m.state {
	case suggestionsStateBrowse:
		return m.updateBrowse(msg)
	case suggestionsStateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m SuggestionsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.loading {
		switch keyMsg.String() {
		case "esc":
			_ = m.engine.CloseConfirmation()
			return m, Back
		case "enter":
			return m.openConfirm()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m SuggestionsModel) openConfirm() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.suggestions) {
		return m, nil
	}

	sel, err := m.engine.OpenConfirmation(m.receipt, m.suggestions[idx])
	if err != nil {
		m.status = fmt.Sprintf("Cannot open match: %v", err)
		return m, nil
	}

	m.selected = sel
	m.binding = &confirmBinding{action: actionLinkOnly}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("action").
				Title("Confirm match").
				Options(
					huh.NewOption("Link only", actionLinkOnly),
					huh.NewOption("Link and update ledger", actionLinkUpdate),
					huh.NewOption("Cancel", actionCancel),
				).
				Value(&m.binding.action),
		),
	}

	if len(sel.Differences) > 0 {
		opts := make([]huh.Option[matching.Field], 0, len(sel.Differences))
		for _, d := range sel.Differences {
			label := fmt.Sprintf("%s: %s -> %s", d.Field, orDash(d.LedgerValue), orDash(d.ReceiptValue))
			opts = append(opts, huh.NewOption(label, d.Field))
		}

		binding := m.binding
		groups = append(groups, huh.NewGroup(
			huh.NewMultiSelect[matching.Field]().
				Key("fields").
				Title("Copy from receipt").
				Options(opts...).
				Value(&m.binding.fields).
				Validate(func(fs []matching.Field) error {
					if len(fs) == 0 {
						return errors.New("pick at least one field")
					}

					return nil
				}),
		).WithHideFunc(func() bool { return binding.action != actionLinkUpdate }))
	}

	m.form = huh.NewForm(groups...).WithWidth(60).WithShowHelp(false)
	m.state = suggestionsStateConfirm
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func (m SuggestionsModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		_ = m.engine.CloseConfirmation()
		m.state = suggestionsStateBrowse
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

	switch m.binding.action {
	case actionCancel:
		_ = m.engine.CloseConfirmation()
		m.state = suggestionsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	case actionLinkUpdate:
		m.state = suggestionsStateCommitting
		return m, m.commitCmd(m.binding.fields)
	default:
		m.state = suggestionsStateCommitting
		return m, m.commitCmd(nil)
	}
}

func (m SuggestionsModel) View() string {
	r := m.receipt
	header := fmt.Sprintf("%s  %s  %s  (%s, %s)",
		activeStyle(r.Merchant), FormatOptionalAmount(r.Amount), FormatOptionalDate(r.Date), r.Source, r.Status)

	if x := r.Extraction; x != nil {
		header += fmt.Sprintf("\nOCR confidence: merchant %s, total %s, date %s", x.Merchant, x.Total, x.Date)
	}

	var body string

	switch {
	case m.loading:
		body = "Finding matches..."
	case m.err != nil:
		body = errorStyle(fmt.Sprintf("Error: %v", m.err))
	case len(m.suggestions) == 0:
		body = "No ledger entries look like this receipt."
	default:
		body = framed(m.table.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		body,
	)

	switch m.state {
	case suggestionsStateConfirm:
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(64).
			Render(m.selectionSummary() + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	case suggestionsStateCommitting:
		content += "\n\nSaving..."
	}

	if m.status != "" {
		content = errorStyle(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m SuggestionsModel) selectionSummary() string {
	s := m.selected.Suggestion
	b := s.Breakdown

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%s)\n", s.Entry.Description, FormatPercent(s.Confidence))
	fmt.Fprintf(&sb, "amount %s  date %s  merchant %s\n",
		FormatPercent(b.Amount), FormatPercent(b.Date), FormatPercent(b.Merchant))

	if len(m.selected.Differences) == 0 {
		sb.WriteString("\nReceipt and ledger agree on every field.")
	}

	return sb.String()
}

func (m *SuggestionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.suggestions))
	for _, s := range m.suggestions {
		rows = append(rows, table.Row{
			FormatPercent(s.Confidence),
			string(s.Tier),
			FormatDate(s.Entry.Date),
			FormatAmount(s.Entry.Amount),
			s.Entry.Description,
		})
	}

	m.table.SetRows(rows)
}

func describeCommitError(err error) string {
	var commitErr *confirm.CommitError
	if errors.As(err, &commitErr) {
		return fmt.Sprintf("Match not saved (%s failed): %v. Press Enter to retry.", commitErr.Stage, commitErr.Err)
	}

	return fmt.Sprintf("Match not saved: %v", err)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

type suggestionsLoadedMsg struct {
	suggestions []matching.Suggestion
	err         error
}

func (m SuggestionsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := RequestCtx()
		defer cancel()

		ss, err := m.engine.SuggestionsForReceipt(ctx, m.receipt)

		return suggestionsLoadedMsg{suggestions: ss, err: err}
	}
}

type committedMsg struct {
	err error
}

func (m SuggestionsModel) commitCmd(fields []matching.Field) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := RequestCtx()
		defer cancel()

		var err error
		if len(fields) == 0 {
			_, err = m.engine.ConfirmLinkOnly(ctx)
		} else {
			_, err = m.engine.ConfirmLinkAndUpdate(ctx, fields)
		}

		return committedMsg{err: err}
	}
}
