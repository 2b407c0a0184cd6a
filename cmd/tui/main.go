package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pennywise/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/pennywise/internal/app"
	"github.com/MrJamesThe3rd/pennywise/internal/config"
)

type model struct {
	session view.Session
	appName string

	currentView View

	accountsView     view.AccountsModel
	transactionsView view.TransactionsModel
	importView       view.ImportModel
}

type View int

const (
	ViewMenu View = iota
	ViewAccounts
	ViewTransactions
	ViewImport
)

func initialModel(cfg *config.Config, s view.Session) model {
	return model{
		session:          s,
		appName:          cfg.App.Name,
		currentView:      ViewMenu,
		accountsView:     view.NewAccountsModel(s),
		transactionsView: view.NewTransactionsModel(s),
		importView:       view.NewImportModel(s),
	}
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
				m.currentView = ViewAccounts
				m.accountsView = view.NewAccountsModel(m.session)

				return m, m.accountsView.Init()
			case "2":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.session)

				return m, m.transactionsView.Init()
			case "3":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.session)

				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewAccounts:
		var newModel tea.Model
		newModel, cmd = m.accountsView.Update(msg)
		m.accountsView = newModel.(view.AccountsModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Accounts\n" +
				"2. Transactions\n" +
				"3. Import Statement\n\n" +
				"q. Quit",
		)
	case ViewAccounts:
		return m.accountsView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	owner, err := uuid.Parse(cfg.Owner.ID)
	if err != nil {
		return fmt.Errorf("OWNER_ID must be a uuid: %w", err)
	}

	svc, closeFn, err := app.Open(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	s := view.Session{
		Owner:        owner,
		Accounts:     svc.Accounts,
		Transactions: svc.Transactions,
		Importer:     svc.Importer,
	}

	_, err = tea.NewProgram(initialModel(cfg, s), tea.WithAltScreen()).Run()

	return err
}

func main() {
	if err := run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
