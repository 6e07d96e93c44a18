package view

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"

	"github.com/MrJamesThe3rd/receipts/internal/engine"
	"github.com/MrJamesThe3rd/receipts/internal/queue"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

type queueState int

const (
	queueStateBrowse queueState = iota
	queueStateUpload
	queueStateBusy
)

type uploadBinding struct {
	path string
}

// QueueModel uploads receipt images and shows uploads waiting for the scan
// pipeline to come back.
type QueueModel struct {
	CommonModel
	engine *engine.Engine

	state   queueState
	table   table.Model
	items   []*queue.Item
	form    *huh.Form
	binding *uploadBinding

	status string
	err    error
}

func NewQueueModel(e *engine.Engine) QueueModel {
	t := newTable([]table.Column{
		{Title: "Queued", Width: 17},
		{Title: "File", Width: 30},
		{Title: "State", Width: 11},
		{Title: "Tries", Width: 6},
		{Title: "Last error", Width: 30},
	})

	return QueueModel{engine: e, table: t}
}

func (m QueueModel) Title() string { return "Uploads" }
func (m QueueModel) ShortHelp() string {
	if m.state == queueStateUpload {
		return "Enter: upload | Esc: cancel"
	}

	return "Esc: back | u: upload | o: toggle online | s: sync now | r: reload"
}

func (m QueueModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m QueueModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case queueLoadedMsg:
		m.err = msg.err
		m.items = msg.items
		m.refreshTable()

		return m, nil

	case queueActionMsg:
		m.state = queueStateBrowse
		m.status = msg.status
		m.err = msg.err
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case queueStateBrowse:
		return m.updateBrowse(msg)
	case queueStateUpload:
		return m.updateUpload(msg)
	}

	return m, nil
}

func (m QueueModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "u":
			m.binding = &uploadBinding{}
			m.form = huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Key("path").
						Title("Receipt image or PDF").
						Placeholder("~/Downloads/receipt.jpg").
						Value(&m.binding.path).
						Validate(func(s string) error {
							_, err := os.Stat(expandHome(strings.TrimSpace(s)))
							return err
						}),
				),
			).WithWidth(60).WithShowHelp(false)
			m.state = queueStateUpload
			m.table.Blur()

			return m, m.form.Init()
		case "o":
			m.state = queueStateBusy
			return m, m.setOnlineCmd(!m.engine.Online())
		case "s":
			m.state = queueStateBusy
			return m, m.drainCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m QueueModel) updateUpload(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = queueStateBrowse
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

	m.state = queueStateBusy

	return m, m.uploadCmd(expandHome(strings.TrimSpace(m.binding.path)))
}

func (m QueueModel) View() string {
	online := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("online")
	if !m.engine.Online() {
		online = errorStyle("offline")
	}

	header := fmt.Sprintf("Scan pipeline: %s | %d waiting", online, len(m.items))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		framed(m.table.View()),
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	)

	switch m.state {
	case queueStateUpload:
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(64).
			Render("Upload Receipt\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	case queueStateBusy:
		content += "\n\nWorking..."
	}

	if m.err != nil {
		content = errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n" + content
	} else if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *QueueModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.items))
	for _, it := range m.items {
		lastErr := ""
		if it.LastError != nil {
			lastErr = *it.LastError
		}

		rows = append(rows, table.Row{
			it.EnqueuedAt.Local().Format("2006-01-02 15:04"),
			it.File.Name,
			string(it.State),
			fmt.Sprint(it.Attempts),
			lastErr,
		})
	}

	m.table.SetRows(rows)
}

func expandHome(p string) string {
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}

	return p
}

type queueLoadedMsg struct {
	items []*queue.Item
	err   error
}

func (m QueueModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := RequestCtx()
		defer cancel()

		items, err := m.engine.QueuedItems(ctx)

		return queueLoadedMsg{items: items, err: err}
	}
}

type queueActionMsg struct {
	status string
	err    error
}

func (m QueueModel) uploadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return queueActionMsg{err: err}
		}

		ctx, cancel := RequestCtx()
		defer cancel()

		res, err := m.engine.Upload(ctx, receipt.Upload{
			Name:        filepath.Base(path),
			ContentType: mimetype.Detect(data).String(),
			Data:        data,
		})
		if err != nil {
			return queueActionMsg{err: err}
		}

		if res.Queued != nil {
			return queueActionMsg{status: "Scan pipeline unavailable, upload queued"}
		}

		return queueActionMsg{status: "Uploaded, scan " + res.Receipt.ID + " is processing"}
	}
}

func (m QueueModel) setOnlineCmd(online bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := RequestCtx()
		defer cancel()

		res, err := m.engine.SetOnline(ctx, online)
		if err != nil {
			return queueActionMsg{err: err}
		}

		if res == nil {
			return queueActionMsg{status: "Working offline"}
		}

		return queueActionMsg{status: drainSummary(*res)}
	}
}

func (m QueueModel) drainCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := RequestCtx()
		defer cancel()

		res, err := m.engine.DrainQueue(ctx)

		return queueActionMsg{status: drainSummary(res), err: err}
	}
}

func drainSummary(res queue.DrainResult) string {
	if res.Skipped {
		return "A sync is already running"
	}

	return fmt.Sprintf("Synced %d, %d still waiting", len(res.Submitted), res.Remaining)
}
