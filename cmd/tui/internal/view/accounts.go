package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

type accountsState int

const (
	accountsStateBrowse accountsState = iota
	accountsStateCreate
	accountsStateEdit
	accountsStateDelete
)

var accountTypes = []account.Type{
	account.TypeBank,
	account.TypeEWallet,
	account.TypeCash,
	account.TypeCreditCard,
	account.TypeInvestment,
}

type AccountsModel struct {
	CommonModel
	session Session

	state    accountsState
	table    table.Model
	accounts []*account.Account
	totals   []account.Total
	form     *huh.Form

	loading bool
	err     error
	status  string

	in *accountInput
}

// accountInput holds the form bindings. It lives behind a pointer because the
// model is copied on every update while huh keeps writing to the bound fields.
type accountInput struct {
	name     string
	typ      account.Type
	currency string
	balance  string
	desc     string
	active   bool
	confirm  bool
}

func NewAccountsModel(s Session) AccountsModel {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Type", Width: 12},
		{Title: "Balance", Width: 16},
		{Title: "Currency", Width: 8},
		{Title: "Active", Width: 6},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(st)

	return AccountsModel{
		session: s,
		table:   t,
		loading: true,
	}
}

func (m AccountsModel) Title() string { return "Accounts" }

func (m AccountsModel) ShortHelp() string {
	if m.state != accountsStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | e: edit | d: delete | r: refresh"
}

func (m AccountsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.accounts = msg.accounts
		m.totals = msg.totals
		m.refreshTable()

		return m, nil

	case accountSavedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	if m.state == accountsStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m AccountsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.startCreate()
		case "e":
			return m.startEdit()
		case "d":
			return m.startDelete()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m AccountsModel) selected() *account.Account {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.accounts) {
		return nil
	}

	return m.accounts[idx]
}

func (m AccountsModel) startCreate() (tea.Model, tea.Cmd) {
	m.in = &accountInput{typ: account.TypeBank, currency: "EUR", balance: "0"}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&m.in.name).Validate(required("name")),
			huh.NewSelect[account.Type]().Title("Type").Options(typeOptions()...).Value(&m.in.typ),
			huh.NewInput().Title("Currency").Value(&m.in.currency).Validate(func(s string) error {
				if !money.ValidCurrency(s) {
					return fmt.Errorf("unknown currency")
				}
				return nil
			}),
			huh.NewInput().Title("Opening balance").Value(&m.in.balance).Validate(validAmount),
			huh.NewInput().Title("Description (optional)").Value(&m.in.desc),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = accountsStateCreate
	m.table.Blur()

	return m, m.form.Init()
}

func (m AccountsModel) startEdit() (tea.Model, tea.Cmd) {
	a := m.selected()
	if a == nil {
		return m, nil
	}

	m.in = &accountInput{name: a.Name, typ: a.Type, desc: a.Description, active: a.Active}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&m.in.name).Validate(required("name")),
			huh.NewSelect[account.Type]().Title("Type").Options(typeOptions()...).Value(&m.in.typ),
			huh.NewInput().Title("Description").Value(&m.in.desc),
			huh.NewConfirm().Title("Active?").Affirmative("Yes").Negative("No").Value(&m.in.active),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = accountsStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m AccountsModel) startDelete() (tea.Model, tea.Cmd) {
	a := m.selected()
	if a == nil {
		return m, nil
	}

	m.in = &accountInput{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", a.Name)).
				Description("Accounts with transactions cannot be deleted.").
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.in.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = accountsStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m AccountsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = accountsStateBrowse
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

	switch m.state {
	case accountsStateCreate:
		return m, m.createCmd()
	case accountsStateEdit:
		return m, m.updateCmd()
	case accountsStateDelete:
		return m, m.deleteCmd()
	}

	return m, nil
}

func (m AccountsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(m.totalsLine()),
		tableView,
	)

	if m.state != accountsStateBrowse && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m AccountsModel) totalsLine() string {
	if len(m.totals) == 0 {
		return "Net worth: -"
	}

	parts := make([]string, len(m.totals))
	for i, t := range m.totals {
		parts[i] = activeStyle(money.Format(t.Balance, t.Currency))
	}

	return "Net worth: " + strings.Join(parts, "  ")
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *AccountsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.accounts))
	for _, a := range m.accounts {
		active := "yes"
		if !a.Active {
			active = "no"
		}

		rows = append(rows, table.Row{
			a.Name,
			string(a.Type),
			FormatBalance(a),
			a.Currency,
			active,
		})
	}

	m.table.SetRows(rows)
}

func typeOptions() []huh.Option[account.Type] {
	opts := make([]huh.Option[account.Type], len(accountTypes))
	for i, t := range accountTypes {
		opts[i] = huh.NewOption(string(t), t)
	}

	return opts
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func validAmount(s string) error {
	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("not a number")
	}
	return nil
}

// Messages

type loadAccountsMsg struct {
	accounts []*account.Account
	totals   []account.Total
	err      error
}

func (m AccountsModel) loadCmd() tea.Cmd {
	s := m.session

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := s.Accounts.List(ctx, s.Owner)
		if err != nil {
			return loadAccountsMsg{err: err}
		}

		totals, err := s.Accounts.Totals(ctx, s.Owner)

		return loadAccountsMsg{accounts: accounts, totals: totals, err: err}
	}
}

type accountSavedMsg struct {
	status string
	err    error
}

func (m AccountsModel) createCmd() tea.Cmd {
	s := m.session
	params := account.CreateParams{
		Name:        m.in.name,
		Type:        m.in.typ,
		Currency:    m.in.currency,
		Description: m.in.desc,
		Active:      true,
	}
	balance := m.in.balance

	return func() tea.Msg {
		amount, err := money.Parse(balance)
		if err != nil {
			return accountSavedMsg{err: err}
		}

		params.Balance = amount

		ctx, cancel := DbCtx()
		defer cancel()

		a, err := s.Accounts.Create(ctx, s.Owner, params)
		if err != nil {
			return accountSavedMsg{err: err}
		}

		return accountSavedMsg{status: fmt.Sprintf("Created %s.", a.Name)}
	}
}

func (m AccountsModel) updateCmd() tea.Cmd {
	a := m.selected()
	if a == nil {
		return nil
	}

	s := m.session
	params := account.UpdateParams{
		Name:        new(m.in.name),
		Type:        new(m.in.typ),
		Description: new(m.in.desc),
		Active:      new(m.in.active),
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := s.Accounts.Update(ctx, s.Owner, a.ID, params); err != nil {
			return accountSavedMsg{err: err}
		}

		return accountSavedMsg{status: "Saved."}
	}
}

func (m AccountsModel) deleteCmd() tea.Cmd {
	a := m.selected()
	if a == nil || !m.in.confirm {
		return func() tea.Msg { return accountSavedMsg{} }
	}

	s := m.session

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := s.Accounts.Delete(ctx, s.Owner, a.ID); err != nil {
			return accountSavedMsg{err: err}
		}

		return accountSavedMsg{status: fmt.Sprintf("Deleted %s.", a.Name)}
	}
}
