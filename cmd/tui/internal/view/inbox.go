package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/receipts/internal/engine"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

type inboxFilter int

const (
	inboxPending inboxFilter = iota
	inboxAll
	inboxDigital
	inboxScanned
)

var inboxFilterLabels = []string{"Pending", "All", "Digital", "Scanned"}

type InboxModel struct {
	CommonModel
	engine *engine.Engine

	table     table.Model
	receipts  []receipt.UnifiedReceipt
	filter    inboxFilter
	timeframe Timeframe

	inbox   *receipt.Inbox
	loading bool
	status  string
}

func NewInboxModel(e *engine.Engine) InboxModel {
	t := newTable([]table.Column{
		{Title: "Date", Width: 12},
		{Title: "Source", Width: 8},
		{Title: "Status", Width: 11},
		{Title: "Amount", Width: 10},
		{Title: "Merchant", Width: 32},
		{Title: "Match", Width: 6},
	})

	m := InboxModel{
		engine: e,
		table:  t,
		inbox:  e.Inbox(),
	}
	m.refreshTable()

	return m
}

func (m InboxModel) Title() string { return "Receipt Inbox" }
func (m InboxModel) ShortHelp() string {
	return "Esc: back | Enter: suggestions | f: filter | d: date | r: refresh"
}

func (m InboxModel) Init() tea.Cmd {
	return nil
}

func (m InboxModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshedMsg:
		m.loading = false
		m.inbox = msg.inbox
		m.status = ""

		if err := msg.inbox.Err(); err != nil {
			m.status = fmt.Sprintf("Some sources failed: %v", err)
		}

		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.refreshCmd()
		case "f":
			m.filter = (m.filter + 1) % inboxFilter(len(inboxFilterLabels))
			m.refreshTable()

			return m, nil
		case "d":
			m.timeframe = m.timeframe.Next()
			m.refreshTable()

			return m, nil
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.receipts) {
				return m, nil
			}

			r := m.receipts[idx]

			return m, func() tea.Msg { return InspectMsg{Receipt: r} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InboxModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Refreshing receipts...")
	}

	header := fmt.Sprintf(
		"Filter: [f] %s | [d] Date: %s | %d receipts",
		activeStyle(inboxFilterLabels[m.filter]),
		activeStyle(m.timeframe.String()),
		len(m.receipts),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		framed(m.table.View()),
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	)

	if m.status != "" {
		content = errorStyle(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *InboxModel) refreshTable() {
	var rs []receipt.UnifiedReceipt

	switch m.filter {
	case inboxPending:
		rs = m.inbox.Pending()
	case inboxDigital:
		rs = m.inbox.BySource(receipt.SourceDigital)
	case inboxScanned:
		rs = m.inbox.BySource(receipt.SourceScanned)
	default:
		rs = m.inbox.All()
	}

	now := time.Now()

	m.receipts = nil
	for _, r := range rs {
		if m.timeframe == TimeframeAll || r.Date != nil && m.timeframe.Contains(*r.Date, now) {
			m.receipts = append(m.receipts, r)
		}
	}

	rows := make([]table.Row, 0, len(m.receipts))
	for _, r := range m.receipts {
		rows = append(rows, table.Row{
			FormatOptionalDate(r.Date),
			string(r.Source),
			string(r.Status),
			FormatOptionalAmount(r.Amount),
			r.Merchant,
			FormatConfidence(r.MatchConfidence),
		})
	}

	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

type refreshedMsg struct {
	inbox *receipt.Inbox
}

func (m InboxModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := RequestCtx()
		defer cancel()

		return refreshedMsg{inbox: m.engine.Refresh(ctx)}
	}
}
