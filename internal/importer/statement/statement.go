// Package statement turns bank CSV exports into transaction params.
//
// A Format describes one family of exports (delimiter, date layout, number style) and the
// column Profiles it comes in. The parser finds the header row by matching profiles, so
// preamble lines before the table and footer lines after it are ignored.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/pennywise/internal/encoding"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

var ErrUnknownLayout = errors.New("no matching statement layout")

// AmountMode determines how amounts are extracted from a row.
type AmountMode int

const (
	// AmountSingle means one signed column (e.g. "Montante" with value "-10,00").
	AmountSingle AmountMode = iota
	// AmountSplit means separate debit and credit columns.
	AmountSplit
)

// Profile describes the column layout of one export variant.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode AmountMode
	AmountCol  string // AmountSingle
	DebitCol   string // AmountSplit
	CreditCol  string // AmountSplit
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case AmountSingle:
		cols = append(cols, p.AmountCol)
	case AmountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// Format describes a bank's export dialect. Profiles are tried in order, so the more
// specific ones go first.
type Format struct {
	Name        string
	Comma       rune
	DateLayout  string
	ParseAmount func(string) (decimal.Decimal, error)
	Profiles    []Profile
}

type Parser struct {
	format Format
}

func NewParser(f Format) *Parser {
	return &Parser{format: f}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, _, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = p.format.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := p.detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("%s: %w", p.format.Name, ErrUnknownLayout)
	}

	return p.parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

type colIndex map[string]int

func (p *Parser) detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range p.format.Profiles {
			if matches(&p.format.Profiles[i], cols) {
				return &p.format.Profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matches(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a parseable date or a non-zero amount.
// headerRowNum is the 0-based index of the header in the file, used in error messages.
func (p *Parser) parseRows(profile *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]transaction.CreateParams, error) {
	dateIdx := cols[profile.DateCol]
	descIdx := cols[profile.DescCol]

	var txs []transaction.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2

		date, ok := p.parseDate(row, dateIdx)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, txType, ok := p.parseAmount(profile, cols, row)
		if !ok {
			continue
		}

		txs = append(txs, transaction.CreateParams{
			Type:        txType,
			Amount:      amount,
			Description: desc,
			Date:        date,
		})
	}

	return txs, nil
}

func (p *Parser) parseDate(row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(p.format.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func (p *Parser) parseAmount(profile *Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Type, bool) {
	switch profile.AmountMode {
	case AmountSingle:
		d, ok := p.cellAmount(row, cols[profile.AmountCol])
		if !ok {
			return decimal.Zero, "", false
		}

		if d.IsNegative() {
			return d.Neg(), transaction.TypeExpense, true
		}

		return d, transaction.TypeIncome, true
	case AmountSplit:
		if d, ok := p.cellAmount(row, cols[profile.DebitCol]); ok {
			return d.Abs(), transaction.TypeExpense, true
		}

		if d, ok := p.cellAmount(row, cols[profile.CreditCol]); ok {
			return d.Abs(), transaction.TypeIncome, true
		}
	}

	return decimal.Zero, "", false
}

// cellAmount reports false for empty, unparseable and zero cells.
func (p *Parser) cellAmount(row []string, idx int) (decimal.Decimal, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := p.format.ParseAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
