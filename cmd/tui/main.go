package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/receipts/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/receipts/internal/app"
	"github.com/MrJamesThe3rd/receipts/internal/config"
	"github.com/MrJamesThe3rd/receipts/internal/engine"
)

type model struct {
	engine *engine.Engine

	currentView View

	inboxView       view.InboxModel
	suggestionsView view.SuggestionsModel
	queueView       view.QueueModel
}

type View int

const (
	ViewMenu        View = 0
	ViewInbox       View = 1
	ViewSuggestions View = 2
	ViewQueue       View = 3
)

func initialModel(e *engine.Engine) model {
	return model{
		engine:      e,
		currentView: ViewMenu,
		inboxView:   view.NewInboxModel(e),
		queueView:   view.NewQueueModel(e),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewInbox
				m.inboxView = view.NewInboxModel(m.engine)

				return m, m.inboxView.Init()
			case "2":
				m.currentView = ViewQueue
				m.queueView = view.NewQueueModel(m.engine)

				return m, m.queueView.Init()
			}
		}
	case view.InspectMsg:
		m.currentView = ViewSuggestions
		m.suggestionsView = view.NewSuggestionsModel(m.engine, msg.Receipt)

		return m, m.suggestionsView.Init()
	case view.BackMsg:
		if m.currentView == ViewSuggestions {
			m.currentView = ViewInbox
			m.inboxView = view.NewInboxModel(m.engine)

			return m, nil
		}

		m.currentView = ViewMenu

		return m, nil
	}

	switch m.currentView {
	case ViewInbox:
		var newModel tea.Model
		newModel, cmd = m.inboxView.Update(msg)
		m.inboxView = newModel.(view.InboxModel)
	case ViewSuggestions:
		var newModel tea.Model
		newModel, cmd = m.suggestionsView.Update(msg)
		m.suggestionsView = newModel.(view.SuggestionsModel)
	case ViewQueue:
		var newModel tea.Model
		newModel, cmd = m.queueView.Update(msg)
		m.queueView = newModel.(view.QueueModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		pending := len(m.engine.PendingReceipts())

		connectivity := "online"
		if !m.engine.Online() {
			connectivity = "offline"
		}

		return lipgloss.NewStyle().Padding(2).Render(
			"Receipts TUI\n\n" +
				fmt.Sprintf("1. Receipt Inbox (%d pending)\n", pending) +
				fmt.Sprintf("2. Uploads (%s)\n\n", connectivity) +
				"q. Quit",
		)
	case ViewInbox:
		return m.inboxView.View()
	case ViewSuggestions:
		return m.suggestionsView.View()
	case ViewQueue:
		return m.queueView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file next to the queue.
	logPath := filepath.Join(os.TempDir(), "receipts-tui.log")
	if cfg.Queue.Path != "" {
		logPath = filepath.Join(filepath.Dir(cfg.Queue.Path), "receipts-tui.log")
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	eng, cleanup, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to start engine", "error", err)
		fmt.Fprintln(os.Stderr, "failed to start:", err)
		os.Exit(1)
	}
	defer cleanup()

	p := tea.NewProgram(initialModel(eng), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
