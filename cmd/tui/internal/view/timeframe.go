package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeLast90Days
	TimeframeThisYear
	TimeframeAll
	TimeframeCustom
)

var timeframeLabels = map[Timeframe]string{
	TimeframeThisMonth:  "This Month",
	TimeframeLastMonth:  "Last Month",
	TimeframeLast90Days: "Last 90 Days",
	TimeframeThisYear:   "This Year",
	TimeframeAll:        "All Time",
	TimeframeCustom:     "Custom Range",
}

func (t Timeframe) String() string {
	if s, ok := timeframeLabels[t]; ok {
		return s
	}

	return "Unknown"
}

// DateRange bounds a listing by transaction date, both ends inclusive.
// A nil bound is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (r DateRange) Apply(f *transaction.ListFilter) {
	f.StartDate = r.Start
	f.EndDate = r.End
}

func (r DateRange) String() string {
	if r.Start == nil && r.End == nil {
		return "all time"
	}

	var b strings.Builder

	if r.Start != nil {
		b.WriteString(FormatDate(*r.Start))
	}

	b.WriteString(" .. ")

	if r.End != nil {
		b.WriteString(FormatDate(*r.End))
	}

	return b.String()
}

// Transaction dates are stored as calendar days at UTC midnight.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func rangeFor(tf Timeframe, now time.Time) DateRange {
	today := day(now)

	var start, end time.Time

	switch tf {
	case TimeframeThisMonth:
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = today
	case TimeframeLastMonth:
		start = time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
	case TimeframeLast90Days:
		start = today.AddDate(0, 0, -89)
		end = today
	case TimeframeThisYear:
		start = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end = today
	default:
		return DateRange{}
	}

	return DateRange{Start: &start, End: &end}
}

// TimeframeSelectedMsg is emitted once the user has picked a valid range.
type TimeframeSelectedMsg struct {
	Range DateRange
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker selects the date range a transaction listing covers.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker(initial Timeframe) TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   initial,
		startInput: si,
		endInput:   ei,
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(keyMsg)
		case timeframeStateCustom:
			if next, cmd, handled := m.updateCustom(keyMsg); handled {
				return next, cmd
			}
		}
	}

	if m.state != timeframeStateCustom {
		return m, nil
	}

	var cmds []tea.Cmd

	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		r := rangeFor(m.selected, time.Now())

		return m, func() tea.Msg { return TimeframeSelectedMsg{Range: r} }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		r, err := parseCustomRange(m.startInput.Value(), m.endInput.Value())
		if err != nil {
			m.err = err
			return m, nil, true
		}

		m.err = nil

		return m, func() tea.Msg { return TimeframeSelectedMsg{Range: r} }, true

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

// parseCustomRange accepts either bound empty, leaving that side open.
func parseCustomRange(startStr, endStr string) (DateRange, error) {
	var r DateRange

	if s := strings.TrimSpace(startStr); s != "" {
		start, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return r, fmt.Errorf("invalid start date (YYYY-MM-DD)")
		}

		r.Start = &start
	}

	if s := strings.TrimSpace(endStr); s != "" {
		end, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return r, fmt.Errorf("invalid end date (YYYY-MM-DD)")
		}

		r.End = &end
	}

	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return r, fmt.Errorf("end date is before start date")
	}

	return r, nil
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range (leave blank for open):\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	var b strings.Builder

	b.WriteString("Select Timeframe:\n\n")

	for tf := TimeframeThisMonth; tf <= TimeframeCustom; tf++ {
		cursor := " "
		if m.selected == tf {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, tf)
	}

	b.WriteString("\n(Enter to select, Esc to back)")

	return b.String() + errStr
}

// IsSelecting reports whether the picker is on the preset list rather than custom input.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}
