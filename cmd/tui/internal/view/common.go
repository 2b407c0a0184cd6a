package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type CommonModel struct {
	Width  int
	Height int
}

// Session is the owner every screen acts as, plus the services it acts through.
type Session struct {
	Owner        uuid.UUID
	Accounts     *account.Service
	Transactions *transaction.Service
	Importer     *importer.Service
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
