package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type txState int

const (
	txStateTimeframe txState = iota
	txStateList
	txStateForm
)

type txFormMode int

const (
	txFormCreate txFormMode = iota
	txFormEdit
	txFormDelete
)

var txTypes = []transaction.Type{
	transaction.TypeExpense,
	transaction.TypeIncome,
	transaction.TypeTransfer,
}

// txItem wraps a transaction to implement list.Item.
type txItem struct {
	tx    *transaction.Transaction
	names map[uuid.UUID]string
}

func (i txItem) Title() string {
	kind := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("[%s]", i.tx.Type))

	return fmt.Sprintf("%s  %10s  %s  %s", FormatDate(i.tx.Date), FormatAmount(i.tx.Amount), kind, i.tx.Description)
}

func (i txItem) Description() string {
	from := i.names[i.tx.AccountID]
	if i.tx.ToAccountID == nil {
		return from
	}

	return fmt.Sprintf("%s -> %s", from, i.names[*i.tx.ToAccountID])
}

func (i txItem) FilterValue() string {
	return i.tx.Description
}

// txInput holds the form bindings behind a pointer so huh writes survive model copies.
type txInput struct {
	typ     transaction.Type
	amount  string
	desc    string
	date    string
	account uuid.UUID
	to      uuid.UUID
	confirm bool
}

type TransactionsModel struct {
	CommonModel
	session Session

	state           txState
	mode            txFormMode
	timeframePicker TimeframePicker
	dateRange       DateRange
	list            list.Model
	form            *huh.Form
	in              *txInput

	txs      []*transaction.Transaction
	accounts []*account.Account
	selected *transaction.Transaction

	loading bool
	status  string
}

func NewTransactionsModel(s Session) TransactionsModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = "Transactions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return TransactionsModel{
		session:         s,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
		list:            l,
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateList:
		return "Esc: back | n: new | e: edit | d: delete | /: filter"
	case txStateForm:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m TransactionsModel) Init() tea.Cmd {
	return nil
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.dateRange = msg.Range
		m.loading = true
		m.state = txStateList

		return m, m.loadTxsCmd()

	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.txs = msg.txs
		m.accounts = msg.accounts
		m.refreshListItems()

		if len(msg.txs) == 0 {
			m.status = fmt.Sprintf("No transactions for %s.", m.dateRange)
		}

		return m, nil

	case saveTxResultMsg:
		m.state = txStateList
		m.form = nil
		m.status = msg.status

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		return m.updateTimeframe(msg)
	case txStateList:
		return m.updateList(msg)
	case txStateForm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			m.state = txStateTimeframe
			m.status = ""

			return m, nil
		case "n":
			return m.startForm(txFormCreate)
		case "e":
			return m.startForm(txFormEdit)
		case "d":
			return m.startForm(txFormDelete)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m TransactionsModel) startForm(mode txFormMode) (tea.Model, tea.Cmd) {
	if len(m.accounts) == 0 {
		m.status = "Create an account first."
		return m, nil
	}

	m.mode = mode
	m.selected = nil
	m.in = &txInput{
		typ:     transaction.TypeExpense,
		date:    FormatDate(time.Now()),
		account: m.accounts[0].ID,
	}

	if mode != txFormCreate {
		item, ok := m.list.SelectedItem().(txItem)
		if !ok {
			return m, nil
		}

		m.selected = item.tx
		m.in.typ = item.tx.Type
		m.in.amount = FormatAmount(item.tx.Amount)
		m.in.desc = item.tx.Description
		m.in.date = FormatDate(item.tx.Date)
		m.in.account = item.tx.AccountID

		if item.tx.ToAccountID != nil {
			m.in.to = *item.tx.ToAccountID
		}
	}

	if mode == txFormDelete {
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Delete this transaction?").
					Description("Its effect on account balances is reversed.").
					Affirmative("Delete").
					Negative("Keep").
					Value(&m.in.confirm),
			),
		).WithWidth(50).WithShowHelp(false)
	} else {
		m.form = m.editForm()
	}

	m.state = txStateForm

	return m, m.form.Init()
}

func (m TransactionsModel) editForm() *huh.Form {
	typeOpts := make([]huh.Option[transaction.Type], len(txTypes))
	for i, t := range txTypes {
		typeOpts[i] = huh.NewOption(string(t), t)
	}

	accountOpts := make([]huh.Option[uuid.UUID], 0, len(m.accounts))
	for _, a := range m.accounts {
		accountOpts = append(accountOpts, huh.NewOption(fmt.Sprintf("%s (%s)", a.Name, FormatBalance(a)), a.ID))
	}

	toOpts := append([]huh.Option[uuid.UUID]{huh.NewOption("(none)", uuid.Nil)}, accountOpts...)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Type]().Title("Type").Options(typeOpts...).Value(&m.in.typ),
			huh.NewSelect[uuid.UUID]().Title("Account").Options(accountOpts...).Value(&m.in.account),
			huh.NewSelect[uuid.UUID]().Title("To account (transfers)").Options(toOpts...).Value(&m.in.to),
			huh.NewInput().Title("Amount").Value(&m.in.amount).Validate(validAmount),
			huh.NewInput().Title("Description").Value(&m.in.desc).Validate(required("description")),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&m.in.date).Validate(func(s string) error {
				if _, err := time.Parse(time.DateOnly, s); err != nil {
					return fmt.Errorf("use YYYY-MM-DD")
				}
				return nil
			}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m TransactionsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateList
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveTxCmd()
}

func (m TransactionsModel) View() string {
	switch m.state {
	case txStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case txStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
		}

		statusLine := ""
		if m.status != "" {
			statusLine = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case txStateForm:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.txInfoView() + "\n" + m.form.View())
	}

	return ""
}

func (m TransactionsModel) txInfoView() string {
	if m.selected == nil {
		return "New transaction"
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(fmt.Sprintf(
			"Date: %s  |  Type: %s  |  Amount: %s\n%s",
			FormatDate(m.selected.Date),
			m.selected.Type,
			FormatAmount(m.selected.Amount),
			m.selected.Description,
		))
}

func (m *TransactionsModel) refreshListItems() {
	names := accountNames(m.accounts)

	items := make([]list.Item, len(m.txs))
	for i, tx := range m.txs {
		items[i] = txItem{tx: tx, names: names}
	}

	m.list.SetItems(items)
}

// Messages

type loadTxsMsg struct {
	txs      []*transaction.Transaction
	accounts []*account.Account
	err      error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	s := m.session
	r := m.dateRange

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var filter transaction.ListFilter
		r.Apply(&filter)

		txs, err := s.Transactions.List(ctx, s.Owner, filter)
		if err != nil {
			return loadTxsMsg{err: err}
		}

		accounts, err := s.Accounts.List(ctx, s.Owner)

		return loadTxsMsg{txs: txs, accounts: accounts, err: err}
	}
}

type saveTxResultMsg struct {
	status string
	err    error
}

func (m TransactionsModel) saveTxCmd() tea.Cmd {
	s := m.session
	in := *m.in
	mode := m.mode
	selected := m.selected

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if mode == txFormDelete {
			if !in.confirm {
				return saveTxResultMsg{}
			}

			if err := s.Transactions.Delete(ctx, s.Owner, selected.ID); err != nil {
				return saveTxResultMsg{err: err}
			}

			return saveTxResultMsg{status: "Deleted."}
		}

		amount, err := money.Parse(in.amount)
		if err != nil {
			return saveTxResultMsg{err: err}
		}

		date, err := time.Parse(time.DateOnly, in.date)
		if err != nil {
			return saveTxResultMsg{err: err}
		}

		var to *uuid.UUID
		if in.to != uuid.Nil {
			to = &in.to
		}

		var res *transaction.Result

		if mode == txFormCreate {
			res, err = s.Transactions.Create(ctx, s.Owner, transaction.CreateParams{
				Type:        in.typ,
				Amount:      amount,
				Description: strings.TrimSpace(in.desc),
				Date:        date,
				AccountID:   in.account,
				ToAccountID: to,
			})
		} else {
			res, err = s.Transactions.Update(ctx, s.Owner, selected.ID, transaction.UpdateParams{
				Type:        &in.typ,
				Amount:      &amount,
				Description: new(strings.TrimSpace(in.desc)),
				Date:        &date,
				AccountID:   &in.account,
				ToAccountID: to,
			})
		}

		if err != nil {
			return saveTxResultMsg{err: err}
		}

		return saveTxResultMsg{status: "Saved. " + balancesLine(res.Accounts)}
	}
}

func balancesLine(accounts []*account.Account) string {
	parts := make([]string, len(accounts))
	for i, a := range accounts {
		parts[i] = fmt.Sprintf("%s: %s", a.Name, FormatBalance(a))
	}

	return strings.Join(parts, "  ")
}

// txItemDelegate renders items in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 2 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s\n", lipgloss.NewStyle().Faint(true).Render(i.Description()))
}
