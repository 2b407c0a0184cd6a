package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importStep int

const (
	importStepLoading importStep = iota
	importStepTarget
	importStepFile
	importStepRunning
	importStepReview
	importStepDone
)

type ImportModel struct {
	CommonModel
	session Session

	step     importStep
	accounts []*account.Account
	form     *huh.Form
	picker   filepicker.Model
	review   table.Model

	target *importTarget
	batch  *importBatch

	status string
	err    error
}

// importTarget holds the form bindings for the bank and account choice.
type importTarget struct {
	bank      importer.Bank
	accountID uuid.UUID
}

// importBatch is a parsed statement split into rows that can be booked directly and
// rows that look like transactions already on the account.
type importBatch struct {
	fresh     []transaction.CreateParams
	conflicts []transaction.Conflict
	keep      []bool
}

func (b *importBatch) toggle(i int) {
	if i >= 0 && i < len(b.keep) {
		b.keep[i] = !b.keep[i]
	}
}

func (b *importBatch) keepAll(v bool) {
	for i := range b.keep {
		b.keep[i] = v
	}
}

// params is every fresh row plus the conflicting rows the user chose to keep.
func (b *importBatch) params() []transaction.CreateParams {
	out := append([]transaction.CreateParams(nil), b.fresh...)

	for i, c := range b.conflicts {
		if b.keep[i] {
			out = append(out, c.Incoming)
		}
	}

	return out
}

func NewImportModel(s Session) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.AllowedTypes = []string{".csv", ".CSV", ".txt"}
	fp.SetHeight(15)

	return ImportModel{
		session: s,
		picker:  fp,
		target:  &importTarget{},
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	if m.step == importStepReview {
		return "Space: keep/skip | a: keep all | n: skip all | Enter: book | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.loadAccountsCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		return m.back()
	}

	switch msg := msg.(type) {
	case importAccountsMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		m.accounts = msg.accounts
		if len(m.accounts) == 0 {
			m.step = importStepDone
			m.status = "No accounts yet. Create one first."

			return m, nil
		}

		return m.startTarget()

	case importParsedMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		if len(msg.result.Conflicts) == 0 {
			m.step = importStepDone
			m.status = importedStatus(len(msg.result.Imported), msg.result.Accounts)

			return m, nil
		}

		m.batch = &importBatch{
			fresh:     msg.result.New,
			conflicts: msg.result.Conflicts,
			keep:      make([]bool, len(msg.result.Conflicts)),
		}
		m.step = importStepReview
		m.review = newReviewTable()
		m.refreshReview()

		return m, nil

	case importBookedMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		m.step = importStepDone
		m.status = importedStatus(msg.count, msg.accounts)

		return m, nil
	}

	switch m.step {
	case importStepTarget:
		return m.updateTarget(msg)
	case importStepFile:
		return m.updateFile(msg)
	case importStepReview:
		return m.updateReview(msg)
	}

	return m, nil
}

func (m ImportModel) back() (tea.Model, tea.Cmd) {
	switch m.step {
	case importStepFile, importStepReview:
		m.batch = nil
		return m.startTarget()
	case importStepDone:
		if m.err != nil || len(m.accounts) == 0 {
			return m, Back
		}

		m.err = nil
		m.status = ""

		return m.startTarget()
	}

	return m, Back
}

func (m ImportModel) fail(err error) ImportModel {
	m.step = importStepDone
	m.err = err
	m.status = fmt.Sprintf("Error: %v", err)

	return m
}

func (m ImportModel) startTarget() (tea.Model, tea.Cmd) {
	m.step = importStepTarget

	banks := m.session.Importer.Banks()
	bankOpts := make([]huh.Option[importer.Bank], len(banks))
	for i, b := range banks {
		bankOpts[i] = huh.NewOption(string(b), b)
	}

	accountOpts := make([]huh.Option[uuid.UUID], len(m.accounts))
	for i, a := range m.accounts {
		accountOpts[i] = huh.NewOption(fmt.Sprintf("%s  %s", a.Name, FormatBalance(a)), a.ID)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[importer.Bank]().Title("Statement layout").Options(bankOpts...).Value(&m.target.bank),
			huh.NewSelect[uuid.UUID]().Title("Book into").Options(accountOpts...).Value(&m.target.accountID),
		),
	)

	return m, m.form.Init()
}

func (m ImportModel) updateTarget(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.step = importStepFile

	return m, m.picker.Init()
}

func (m ImportModel) updateFile(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.step = importStepRunning
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case " ":
			m.batch.toggle(m.review.Cursor())
			m.refreshReview()

			return m, nil
		case "a", "n":
			m.batch.keepAll(key.String() == "a")
			m.refreshReview()

			return m, nil
		case "enter":
			m.step = importStepRunning
			m.status = "Booking transactions..."

			return m, m.bookCmd()
		}
	}

	var cmd tea.Cmd
	m.review, cmd = m.review.Update(msg)

	return m, cmd
}

func newReviewTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Keep", Width: 4},
			{Title: "Date", Width: 10},
			{Title: "Amount", Width: 12},
			{Title: "Type", Width: 8},
			{Title: "Incoming", Width: 28},
			{Title: "Already booked", Width: 28},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	t.SetStyles(st)

	return t
}

func (m *ImportModel) refreshReview() {
	rows := make([]table.Row, len(m.batch.conflicts))

	for i, c := range m.batch.conflicts {
		mark := " "
		if m.batch.keep[i] {
			mark = "x"
		}

		rows[i] = table.Row{
			"[" + mark + "]",
			FormatDate(c.Incoming.Date),
			FormatAmount(c.Incoming.Amount),
			string(c.Incoming.Type),
			c.Incoming.Description,
			c.Existing.Description,
		}
	}

	m.review.SetRows(rows)
}

func (m ImportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch m.step {
	case importStepLoading:
		return pad.Render("Loading accounts...")
	case importStepTarget:
		return pad.Render(m.form.View())
	case importStepFile:
		return pad.Render(fmt.Sprintf("Pick a %s statement:\n\n%s", m.target.bank, m.picker.View()))
	case importStepRunning:
		return pad.Render(m.status)
	case importStepReview:
		header := fmt.Sprintf("%d new rows will be booked. %d rows match existing transactions:",
			len(m.batch.fresh), len(m.batch.conflicts))

		return pad.Render(header + "\n\n" + m.review.View())
	case importStepDone:
		color := lipgloss.Color("46")
		if m.err != nil {
			color = lipgloss.Color("196")
		}

		return pad.Render(lipgloss.NewStyle().Foreground(color).Render(m.status) + "\n\n(Esc to go back)")
	}

	return ""
}

type importAccountsMsg struct {
	accounts []*account.Account
	err      error
}

type importParsedMsg struct {
	result *transaction.ImportResult
	err    error
}

type importBookedMsg struct {
	count    int
	accounts []*account.Account
	err      error
}

func importedStatus(count int, accounts []*account.Account) string {
	if len(accounts) == 0 {
		return fmt.Sprintf("Imported %d transactions.", count)
	}

	return fmt.Sprintf("Imported %d transactions. %s", count, balancesLine(accounts))
}

func (m ImportModel) loadAccountsCmd() tea.Cmd {
	s := m.session

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := s.Accounts.List(ctx, s.Owner)

		return importAccountsMsg{accounts: accounts, err: err}
	}
}

// parseCmd reads the statement and books it unless some rows collide with existing ones.
func (m ImportModel) parseCmd(path string) tea.Cmd {
	s := m.session
	bank := m.target.bank
	accountID := m.target.accountID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importParsedMsg{err: err}
		}
		defer f.Close()

		params, err := s.Importer.Import(bank, f)
		if err != nil {
			return importParsedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := s.Transactions.ImportBatch(ctx, s.Owner, accountID, params)

		return importParsedMsg{result: result, err: err}
	}
}

func (m ImportModel) bookCmd() tea.Cmd {
	s := m.session
	accountID := m.target.accountID
	params := m.batch.params()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := s.Transactions.CreateBatch(ctx, s.Owner, accountID, params)
		if err != nil {
			return importBookedMsg{err: err}
		}

		return importBookedMsg{count: len(result.Imported), accounts: result.Accounts}
	}
}
